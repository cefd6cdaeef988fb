package fixtures

import (
	"github.com/goliatone/go-fixtures/layering"
)

// ProcessData returns a resolved copy of value using the normalized stores.
//
// Map reference strings become copies of the values they point to, data
// function strings become the function result, and template reference
// objects become copies of the named template with their overrides applied.
// References that cannot be resolved stay in place as markers. The output
// never shares mutable structure with value or with either store.
func (r *Resolver) ProcessData(value any) any {
	w := dataWalker{
		resolver:  r,
		templates: map[string]bool{},
		paths:     map[string]bool{},
	}
	return w.walk(value)
}

type dataWalker struct {
	resolver *Resolver
	// templates being expanded on the current branch.
	templates map[string]bool
	// map paths being resolved on the current branch.
	paths map[string]bool
}

func (w *dataWalker) walk(value any) any {
	current := classify(value)
	switch current.kind {
	case nodeMapRef:
		resolved, ok := w.resolver.lookupNormalizedMap(current.ref, w.paths)
		if !ok {
			w.resolver.reportUnresolved(StageData, nodeMapRef, current.ref)
			return value
		}
		return layering.Clone(resolved)
	case nodeFunctionRef:
		return w.call(current.ref, value)
	case nodeTemplateRef:
		return w.expand(current, value)
	case nodeObject:
		out := make(map[string]any, len(current.object))
		for key, child := range current.object {
			out[key] = w.walk(child)
		}
		return out
	case nodeArray:
		out := make([]any, len(current.array))
		for i, child := range current.array {
			out[i] = w.walk(child)
		}
		return out
	default:
		return layering.Clone(value)
	}
}

func (w *dataWalker) expand(current node, original any) any {
	target, ok := w.resolver.templates[current.ref]
	if !ok || w.templates[current.ref] {
		w.resolver.reportUnresolved(StageData, nodeTemplateRef, current.ref)
		return layering.Clone(original)
	}

	w.templates[current.ref] = true
	base := w.walk(target)
	delete(w.templates, current.ref)

	var overrides any
	if current.hasOverrides {
		overrides = w.walk(current.overrides)
	}
	return layering.Override(base, overrides, current.hasOverrides)
}

func (w *dataWalker) call(ref string, original any) any {
	name, args := splitFunctionRef(ref)
	if !w.resolver.functions.Has(name) {
		w.resolver.reportUnresolved(StageData, nodeFunctionRef, ref)
		return original
	}
	out, err := w.resolver.functions.Call(name, args...)
	if err != nil {
		w.resolver.logger.LogResolution(ResolutionEvent{Stage: StageData, Kind: nodeFunctionRef.String(), Reference: ref, Err: err})
		return original
	}
	return layering.Clone(out)
}
