package attach

import (
	"errors"
	"testing"

	"github.com/goliatone/go-attach/pkg/activity"
)

func TestSessionEmitsLifecycleEvents(t *testing.T) {
	capture := &activity.CaptureHook{}
	emitter := activity.NewEmitter(activity.Hooks{capture}, activity.Config{Enabled: true})

	scope := NewMapScope()
	ns := NewNamespace(Entry{Key: "bar", Value: 1})

	err := With(scope, ns, func(s Scope) error {
		s.Set("biz", 2)
		return nil
	}, WithActivityEmitter(emitter), WithActorID("8c0e5c2e-4d3e-4f09-9c41-78f0f1f2a9aa"), WithScopeName("repl"))
	if err != nil {
		t.Fatalf("with: %v", err)
	}

	if len(capture.Events) != 2 {
		t.Fatalf("expected attach and detach events, got %d", len(capture.Events))
	}
	begin, end := capture.Events[0], capture.Events[1]
	if begin.Verb != activity.VerbAttach || end.Verb != activity.VerbDetach {
		t.Fatalf("unexpected verbs: %q %q", begin.Verb, end.Verb)
	}
	if begin.ObjectType != "namespace" || begin.ObjectID == "" {
		t.Fatalf("unexpected object fields: %+v", begin)
	}
	if begin.Channel != "attach" {
		t.Fatalf("expected default channel, got %q", begin.Channel)
	}
	if end.Metadata["scope_name"] != "repl" {
		t.Fatalf("expected scope metadata, got %+v", end.Metadata)
	}
	persisted, ok := end.Metadata["persisted"].([]string)
	if !ok || len(persisted) != 2 || persisted[0] != "bar" || persisted[1] != "biz" {
		t.Fatalf("expected bar and biz persisted, got %v", end.Metadata["persisted"])
	}
}

func TestSessionEmitsReconcileFailure(t *testing.T) {
	capture := &activity.CaptureHook{}
	emitter := activity.NewEmitter(activity.Hooks{capture}, activity.Config{Enabled: true})

	scope := MapScopeOf(map[string]any{"foo": "global_foo"})
	ns := NewNamespace()

	err := With(scope, ns, func(s Scope) error {
		s.Set("foo", "new_foo")
		return nil
	}, WithActivityEmitter(emitter))
	if !errors.Is(err, ErrImmutableGlobal) {
		t.Fatalf("expected immutable global error, got %v", err)
	}

	if len(capture.Events) != 2 {
		t.Fatalf("expected attach and failure events, got %d", len(capture.Events))
	}
	failed := capture.Events[1]
	if failed.Verb != activity.VerbReconcileFailed {
		t.Fatalf("expected reconcile failure verb, got %q", failed.Verb)
	}
	if failed.Metadata["failed_key"] != "foo" {
		t.Fatalf("expected failed_key foo, got %+v", failed.Metadata)
	}
}

func TestSessionSkipsEmissionWhenDisabled(t *testing.T) {
	capture := &activity.CaptureHook{}
	emitter := activity.NewEmitter(activity.Hooks{capture}, activity.Config{Enabled: false})

	scope := NewMapScope()
	ns := NewNamespace()
	if err := With(scope, ns, func(Scope) error { return nil }, WithActivityEmitter(emitter)); err != nil {
		t.Fatalf("with: %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events, got %d", len(capture.Events))
	}
}
