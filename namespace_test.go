package attach

import (
	"errors"
	"testing"
)

func TestNamespaceOrderAndItemOps(t *testing.T) {
	ns := NewNamespace(
		Entry{Key: "b", Value: 2},
		Entry{Key: "a", Value: 1},
		Entry{Key: "c", Value: 3},
	)

	wantOrder := []string{"b", "a", "c"}
	for i, key := range ns.Keys() {
		if key != wantOrder[i] {
			t.Fatalf("expected key %d to be %q, got %q", i, wantOrder[i], key)
		}
	}

	// Re-setting keeps the original slot.
	ns.Set("a", 10)
	if keys := ns.Keys(); keys[1] != "a" {
		t.Fatalf("expected a to keep position 1, got %v", keys)
	}
	if value, _ := ns.Get("a"); value != 10 {
		t.Fatalf("expected updated value 10, got %v", value)
	}

	if !ns.Delete("b") {
		t.Fatalf("expected delete of b to report true")
	}
	if ns.Delete("b") {
		t.Fatalf("expected second delete of b to report false")
	}
	if got := ns.Keys(); len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("unexpected keys after delete: %v", got)
	}
	if ns.Len() != 2 {
		t.Fatalf("expected len 2, got %d", ns.Len())
	}

	entries := ns.Entries()
	if len(entries) != 2 || entries[0].Key != "a" || entries[0].Value != 10 {
		t.Fatalf("unexpected entries: %v", entries)
	}
}

func TestNamespaceAttributeAccess(t *testing.T) {
	ns := NewNamespace(Entry{Key: "foo", Value: "bar"})

	value, err := ns.Attr("foo")
	if err != nil || value != "bar" {
		t.Fatalf("expected bar, got %v (%v)", value, err)
	}

	if _, err := ns.Attr("missing"); !errors.Is(err, ErrNameNotFound) {
		t.Fatalf("expected name not found, got %v", err)
	}

	ns.SetAttr("biz", 1)
	if !ns.Has("biz") {
		t.Fatalf("expected biz set via attribute write")
	}

	if err := ns.DelAttr("biz"); err != nil {
		t.Fatalf("del attr: %v", err)
	}
	if err := ns.DelAttr("biz"); !errors.Is(err, ErrNameNotFound) {
		t.Fatalf("expected name not found on double delete, got %v", err)
	}
}

func TestNamespaceSnapshotRestore(t *testing.T) {
	labels := map[string]string{"env": "prod"}
	ns := NewNamespace(
		Entry{Key: "labels", Value: labels},
		Entry{Key: "count", Value: 5},
	)

	state := ns.Snapshot()
	if state.SnapshotID == "" {
		t.Fatalf("expected snapshot id")
	}

	// Mutating the live value must not leak into the capture.
	labels["env"] = "qa"
	ns.Set("count", 6)
	ns.Delete("labels")

	ns.Restore(state)
	value, _ := ns.Get("labels")
	restored, ok := value.(map[string]string)
	if !ok || restored["env"] != "prod" {
		t.Fatalf("expected restored labels env=prod, got %v", value)
	}
	if count, _ := ns.Get("count"); count != 5 {
		t.Fatalf("expected restored count 5, got %v", count)
	}
	if keys := ns.Keys(); keys[0] != "labels" || keys[1] != "count" {
		t.Fatalf("expected order preserved through restore, got %v", keys)
	}
}

func TestCloneNamespaceDetaches(t *testing.T) {
	ns := NewNamespace(Entry{Key: "labels", Value: map[string]string{"env": "prod"}})
	clone := ns.CloneNamespace()

	value, _ := clone.Get("labels")
	value.(map[string]string)["env"] = "qa"

	original, _ := ns.Get("labels")
	if original.(map[string]string)["env"] != "prod" {
		t.Fatalf("expected clone mutation isolated, got %v", original)
	}
}

func TestValidIdentifier(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"foo", true},
		{"_biz", true},
		{"f00", true},
		{"Straße", true},
		{"", false},
		{"1foo", false},
		{"not valid", false},
		{"da-sh", false},
	}
	for _, tc := range cases {
		if got := ValidIdentifier(tc.name); got != tc.want {
			t.Fatalf("ValidIdentifier(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
