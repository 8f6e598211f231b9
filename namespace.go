package attach

import (
	"fmt"
	"unicode"

	"github.com/google/uuid"
)

// Entry pairs a namespace key with its value.
type Entry struct {
	Key   string
	Value any
}

// Namespace is an ordered key→value mapping suitable for overlaying onto a
// scope. Keys keep their insertion position; re-setting an existing key keeps
// its slot. A Namespace is long-lived: callers construct it once and open many
// overlay sessions against it.
//
// Namespace is not safe for concurrent use.
type Namespace struct {
	order  []string
	values map[string]any
}

// NewNamespace constructs a namespace from the supplied entries in order.
// Later duplicates overwrite earlier values while keeping the first position.
func NewNamespace(entries ...Entry) *Namespace {
	ns := &Namespace{values: make(map[string]any, len(entries))}
	for _, entry := range entries {
		ns.Set(entry.Key, entry.Value)
	}
	return ns
}

// Get returns the value bound to key and whether the key is present.
func (ns *Namespace) Get(key string) (any, bool) {
	if ns == nil || ns.values == nil {
		return nil, false
	}
	value, ok := ns.values[key]
	return value, ok
}

// Set binds value under key, appending the key when it is new.
func (ns *Namespace) Set(key string, value any) {
	if ns.values == nil {
		ns.values = map[string]any{}
	}
	if _, exists := ns.values[key]; !exists {
		ns.order = append(ns.order, key)
	}
	ns.values[key] = value
}

// Delete removes key from the namespace, reporting whether it was present.
func (ns *Namespace) Delete(key string) bool {
	if ns == nil || ns.values == nil {
		return false
	}
	if _, exists := ns.values[key]; !exists {
		return false
	}
	delete(ns.values, key)
	for i, existing := range ns.order {
		if existing == key {
			ns.order = append(ns.order[:i], ns.order[i+1:]...)
			break
		}
	}
	return true
}

// Has reports whether key is bound.
func (ns *Namespace) Has(key string) bool {
	_, ok := ns.Get(key)
	return ok
}

// Len returns the number of entries.
func (ns *Namespace) Len() int {
	if ns == nil {
		return 0
	}
	return len(ns.order)
}

// Keys returns the keys in insertion order as a defensive copy.
func (ns *Namespace) Keys() []string {
	if ns == nil || len(ns.order) == 0 {
		return nil
	}
	out := make([]string, len(ns.order))
	copy(out, ns.order)
	return out
}

// Entries returns the entries in insertion order.
func (ns *Namespace) Entries() []Entry {
	if ns == nil || len(ns.order) == 0 {
		return nil
	}
	out := make([]Entry, len(ns.order))
	for i, key := range ns.order {
		out[i] = Entry{Key: key, Value: ns.values[key]}
	}
	return out
}

// Attr returns the value bound to key, failing with ErrNameNotFound when the
// key is absent. It is the attribute-style read over the item accessors.
func (ns *Namespace) Attr(key string) (any, error) {
	value, ok := ns.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNameNotFound, key)
	}
	return value, nil
}

// SetAttr behaves exactly as Set; it exists so attribute-style call sites read
// symmetrically with Attr and DelAttr.
func (ns *Namespace) SetAttr(key string, value any) {
	ns.Set(key, value)
}

// DelAttr removes key, failing with ErrNameNotFound when it is absent.
func (ns *Namespace) DelAttr(key string) error {
	if !ns.Delete(key) {
		return fmt.Errorf("%w: %q", ErrNameNotFound, key)
	}
	return nil
}

// State is an opaque capture of a namespace sufficient to reconstruct it.
type State struct {
	// SnapshotID identifies the capture for auditing.
	SnapshotID string
	Entries    []Entry
}

// Snapshot captures the namespace's current entries. Values are deep-copied so
// the capture stays intact if live values are mutated afterwards.
func (ns *Namespace) Snapshot() State {
	state := State{SnapshotID: uuid.NewString()}
	if ns == nil || len(ns.order) == 0 {
		return state
	}
	state.Entries = make([]Entry, len(ns.order))
	for i, key := range ns.order {
		state.Entries[i] = Entry{Key: key, Value: Clone(ns.values[key])}
	}
	return state
}

// Restore discards the namespace's entries and repopulates it from state.
func (ns *Namespace) Restore(state State) {
	ns.order = ns.order[:0]
	ns.values = make(map[string]any, len(state.Entries))
	for _, entry := range state.Entries {
		ns.Set(entry.Key, Clone(entry.Value))
	}
}

// CloneNamespace builds an independent copy of ns via snapshot/restore.
func (ns *Namespace) CloneNamespace() *Namespace {
	out := NewNamespace()
	out.Restore(ns.Snapshot())
	return out
}

// ValidIdentifier reports whether name can serve as a binding name in a scope:
// a letter or underscore followed by letters, digits, or underscores.
func ValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
