package fixtures

import (
	"time"

	"github.com/goliatone/go-fixtures/layering"
	"github.com/goliatone/go-fixtures/pkg/activity"
)

// ProcessMaps builds the normalized map store from the raw store, replacing
// every map reference string with the value its path resolves to. It does
// nothing while the map state is processed.
func (r *Resolver) ProcessMaps() {
	if r.mapState.Processed {
		return
	}
	start := time.Now()

	n := &mapNormalizer{
		resolver: r,
		raw:      r.rawMaps,
		out:      make(Store, len(r.rawMaps)),
		status:   make(map[string]entryStatus, len(r.rawMaps)),
		active:   map[string]bool{},
		missed:   map[string]bool{},
	}
	for _, name := range sortedNames(r.rawMaps) {
		n.entry(name)
	}

	r.maps = n.out
	r.mapState = ProcessingState{
		Enabled:   len(r.rawMaps) > 0,
		Processed: true,
	}

	for _, ref := range n.unresolved {
		r.reportUnresolved(StageMaps, nodeMapRef, ref)
	}
	r.logger.LogResolution(ResolutionEvent{
		Stage:    StageMaps,
		Kind:     string(KindMaps),
		Found:    true,
		Entries:  len(n.out),
		Duration: time.Since(start),
	})
	r.emit(activity.BuildNormalizedEvent(activity.ResolutionInput{
		SessionID:  r.sessionID,
		Kind:       string(KindMaps),
		Entries:    len(n.out),
		Enabled:    r.mapState.Enabled,
		Unresolved: len(n.unresolved),
	}))
}

// mapNormalizer is the FieldSource paths are evaluated against while the
// normalized store is being built. Entries resolve on first access.
type mapNormalizer struct {
	resolver   *Resolver
	raw        Store
	out        Store
	status     map[string]entryStatus
	active     map[string]bool
	missed     map[string]bool
	unresolved []string
}

// Field serves finished entries from the output store. An entry still being
// resolved is served raw; lookup walks whatever it returns.
func (n *mapNormalizer) Field(name string) (any, bool) {
	if n.status[name] == entryActive {
		value, ok := n.raw[name]
		return value, ok
	}
	return n.entry(name)
}

func (n *mapNormalizer) entry(name string) (any, bool) {
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

func (n *mapNormalizer) walk(value any) any {
	current := classify(value)
	switch current.kind {
	case nodeMapRef:
		resolved, ok := n.lookup(current.ref)
		if !ok {
			n.miss(current.ref)
			return value
		}
		return resolved
	case nodeObject, nodeTemplateRef:
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

// miss records ref once. Entries that chain through a finished entry walk its
// leftover markers again and must not report them twice.
func (n *mapNormalizer) miss(ref string) {
	if n.missed[ref] {
		return
	}
	n.missed[ref] = true
	n.unresolved = append(n.unresolved, ref)
}

// lookup resolves a map path and returns a fresh, fully walked copy of the
// result. A path already being resolved further up is treated as not found.
func (n *mapNormalizer) lookup(raw string) (any, bool) {
	if n.active[raw] {
		return nil, false
	}
	path, err := n.resolver.compilePath(raw)
	if err != nil {
		n.resolver.logger.LogResolution(ResolutionEvent{Stage: StageMaps, Kind: nodeMapRef.String(), Reference: raw, Err: err})
		return nil, false
	}

	n.active[raw] = true
	defer delete(n.active, raw)

	value, ok, err := path.evaluate(n, n.lookup, nil)
	if err != nil {
		n.resolver.logger.LogResolution(ResolutionEvent{Stage: StageMaps, Kind: nodeMapRef.String(), Reference: raw, Found: ok, Err: err})
	}
	if !ok {
		return nil, false
	}
	return n.walk(value), true
}
