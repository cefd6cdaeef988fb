package activity

import (
	"strings"
	"time"
)

const (
	// VerbNormalized is emitted after a normalizer run.
	VerbNormalized = "fixtures.normalized"
	// VerbUnresolved is emitted for a reference left as a marker.
	VerbUnresolved = "fixtures.unresolved"
)

// ResolutionInput carries the fields shared by resolution events.
type ResolutionInput struct {
	SessionID  string
	Kind       string
	Reference  string
	Entries    int
	Enabled    bool
	Unresolved int
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildNormalizedEvent describes a finished normalizer run.
func BuildNormalizedEvent(input ResolutionInput) Event {
	metadata := ensureMetadata(cloneMap(input.Metadata))
	metadata["entries"] = input.Entries
	metadata["enabled"] = input.Enabled
	metadata["unresolved"] = input.Unresolved
	return buildResolutionEvent(VerbNormalized, input, metadata)
}

// BuildUnresolvedEvent describes one reference that stayed unresolved.
func BuildUnresolvedEvent(input ResolutionInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.Reference != "" {
		metadata = ensureMetadata(metadata)
		metadata["reference"] = input.Reference
	}
	return buildResolutionEvent(VerbUnresolved, input, metadata)
}

func buildResolutionEvent(verb string, input ResolutionInput, metadata map[string]any) Event {
	objectType := strings.TrimSpace(input.Kind)
	if objectType == "" {
		objectType = "data"
	}
	objectID := strings.TrimSpace(input.SessionID)
	if objectID == "" {
		objectID = objectType
	}
	return Event{
		Verb:       verb,
		ObjectType: objectType,
		ObjectID:   objectID,
		Reference:  strings.TrimSpace(input.Reference),
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
