package activity

import (
	"context"
	"testing"
)

func TestEmitterAppliesDefaultChannel(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true})

	err := emitter.Emit(context.Background(), Event{
		Verb:       VerbAttach,
		ObjectType: "namespace",
		ObjectID:   "1",
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(capture.Events) != 1 || capture.Events[0].Channel != "attach" {
		t.Fatalf("expected default channel applied, got %+v", capture.Events)
	}
}

func TestEmitterKeepsExplicitChannel(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "audit"})

	err := emitter.Emit(context.Background(), Event{
		Verb:       VerbDetach,
		ObjectType: "namespace",
		ObjectID:   "1",
		Channel:    "custom",
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if capture.Events[0].Channel != "custom" {
		t.Fatalf("expected explicit channel kept, got %q", capture.Events[0].Channel)
	}
}

func TestEmitterDisabled(t *testing.T) {
	capture := &CaptureHook{}

	var nilEmitter *Emitter
	if nilEmitter.Enabled() {
		t.Fatalf("nil emitter must report disabled")
	}

	emitter := NewEmitter(Hooks{capture}, Config{Enabled: false})
	if emitter.Enabled() {
		t.Fatalf("disabled emitter must report disabled")
	}
	if err := emitter.Emit(context.Background(), Event{Verb: VerbAttach, ObjectType: "namespace", ObjectID: "1"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no delivery, got %d", len(capture.Events))
	}

	empty := NewEmitter(nil, Config{Enabled: true})
	if empty.Enabled() {
		t.Fatalf("emitter without hooks must report disabled")
	}
}
