package activity

import (
	"strings"
	"time"
)

// SessionEventInput describes the common fields for overlay session events.
type SessionEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Channel    string
	ScopeName  string
	BackupID   string
	Injected   []string
	Persisted  []string
	Dropped    []string
	Deleted    []string
	FailedKey  string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildAttachEvent constructs a normalized event for a session begin.
func BuildAttachEvent(input SessionEventInput) Event {
	return buildSessionEvent(VerbAttach, input)
}

// BuildDetachEvent constructs a normalized event for a reconciled session end.
func BuildDetachEvent(input SessionEventInput) Event {
	return buildSessionEvent(VerbDetach, input)
}

// BuildReconcileFailedEvent constructs a normalized event for a session end
// that tripped the immutability check.
func BuildReconcileFailedEvent(input SessionEventInput) Event {
	return buildSessionEvent(VerbReconcileFailed, input)
}

func buildSessionEvent(verb string, input SessionEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.ScopeName != "" {
		metadata = ensureMetadata(metadata)
		metadata["scope_name"] = input.ScopeName
	}
	if input.BackupID != "" {
		metadata = ensureMetadata(metadata)
		metadata["backup_id"] = input.BackupID
	}
	if len(input.Injected) > 0 {
		metadata = ensureMetadata(metadata)
		metadata["injected"] = append([]string{}, input.Injected...)
	}
	if len(input.Persisted) > 0 {
		metadata = ensureMetadata(metadata)
		metadata["persisted"] = append([]string{}, input.Persisted...)
	}
	if len(input.Dropped) > 0 {
		metadata = ensureMetadata(metadata)
		metadata["dropped"] = append([]string{}, input.Dropped...)
	}
	if len(input.Deleted) > 0 {
		metadata = ensureMetadata(metadata)
		metadata["deleted"] = append([]string{}, input.Deleted...)
	}
	if input.FailedKey != "" {
		metadata = ensureMetadata(metadata)
		metadata["failed_key"] = input.FailedKey
	}

	objectID := strings.TrimSpace(input.BackupID)
	if objectID == "" {
		objectID = "namespace"
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: "namespace",
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
