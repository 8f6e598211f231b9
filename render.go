package attach

import (
	"fmt"
	"strings"
)

const (
	// maxRenderWidth caps each rendered line, prefix and suffix included.
	maxRenderWidth = 80
	renderPrefix   = "    "
	renderSuffix   = ",\n"
	placeholder    = "..."
)

// String renders the namespace one entry per line as `key: value`, truncating
// lines that would overflow the width budget.
func (ns *Namespace) String() string {
	var b strings.Builder
	b.WriteString("Namespace({\n")
	budget := maxRenderWidth - len(renderPrefix) - len(renderSuffix)
	for _, entry := range ns.Entries() {
		line := fmt.Sprintf("%s: %v", entry.Key, entry.Value)
		b.WriteString(renderPrefix)
		b.WriteString(shorten(line, budget, placeholder))
		b.WriteString(renderSuffix)
	}
	b.WriteString("})")
	return b.String()
}

// shorten collapses whitespace in text and, when it exceeds width, drops whole
// words from the end and appends marker so the result fits.
func shorten(text string, width int, marker string) string {
	words := strings.Fields(text)
	collapsed := strings.Join(words, " ")
	if len(collapsed) <= width {
		return collapsed
	}

	var kept []string
	used := 0
	for _, word := range words {
		next := used + len(word)
		if len(kept) > 0 {
			next++ // joining space
		}
		if next+len(marker) > width {
			break
		}
		kept = append(kept, word)
		used = next
	}
	if len(kept) == 0 {
		if len(marker) > width {
			return marker[:width]
		}
		return marker
	}
	// The marker replaces dropped words directly, with no joining space.
	return strings.Join(kept, " ") + marker
}
