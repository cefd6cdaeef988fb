package fixtures

import (
	"sort"
	"time"

	"github.com/goliatone/go-fixtures/layering"
	"github.com/goliatone/go-fixtures/pkg/activity"
)

type entryStatus int

const (
	entryPending entryStatus = iota
	entryActive
	entryDone
)

// ProcessTemplates builds the normalized template store from the raw store,
// expanding template references between entries. It does nothing while the
// template state is processed, leaving the normalized store as it stands.
func (r *Resolver) ProcessTemplates() {
	if r.templateState.Processed {
		return
	}
	start := time.Now()

	n := &templateNormalizer{
		raw:    r.rawTemplates,
		out:    make(Store, len(r.rawTemplates)),
		status: make(map[string]entryStatus, len(r.rawTemplates)),
	}
	for _, name := range sortedNames(r.rawTemplates) {
		n.entry(name)
	}

	r.templates = n.out
	r.templateState = ProcessingState{
		Enabled:   len(r.rawTemplates) > 0,
		Processed: true,
	}

	for _, ref := range n.unresolved {
		r.reportUnresolved(StageTemplates, nodeTemplateRef, ref)
	}
	r.logger.LogResolution(ResolutionEvent{
		Stage:    StageTemplates,
		Kind:     string(KindTemplates),
		Found:    true,
		Entries:  len(n.out),
		Duration: time.Since(start),
	})
	r.emit(activity.BuildNormalizedEvent(activity.ResolutionInput{
		SessionID:  r.sessionID,
		Kind:       string(KindTemplates),
		Entries:    len(n.out),
		Enabled:    r.templateState.Enabled,
		Unresolved: len(n.unresolved),
	}))
}

// templateNormalizer resolves entries lazily so an entry may reference one
// that sorts after it.
type templateNormalizer struct {
	raw        Store
	out        Store
	status     map[string]entryStatus
	unresolved []string
}

func (n *templateNormalizer) entry(name string) (any, bool) {
	switch n.status[name] {
	case entryDone:
		return n.out[name], true
	case entryActive:
		return nil, false
	}
	raw, ok := n.raw[name]
	if !ok {
		return nil, false
	}
	n.status[name] = entryActive
	value := n.walk(raw)
	n.out[name] = value
	n.status[name] = entryDone
	return value, true
}

func (n *templateNormalizer) walk(value any) any {
	current := classify(value)
	switch current.kind {
	case nodeTemplateRef:
		target, ok := n.entry(current.ref)
		if !ok {
			n.unresolved = append(n.unresolved, current.ref)
			return layering.Clone(value)
		}
		var overrides any
		if current.hasOverrides {
			overrides = n.walk(current.overrides)
		}
		return layering.Override(layering.Clone(target), overrides, current.hasOverrides)
	case nodeObject:
		out := make(map[string]any, len(current.object))
		for key, child := range current.object {
			out[key] = n.walk(child)
		}
		return out
	case nodeArray:
		out := make([]any, len(current.array))
		for i, child := range current.array {
			out[i] = n.walk(child)
		}
		return out
	default:
		return layering.Clone(value)
	}
}

func sortedNames(store Store) []string {
	names := make([]string, 0, len(store))
	for name := range store {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
