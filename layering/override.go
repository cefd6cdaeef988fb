package layering

// Override lays overrides on top of a resolved value for one usage site.
//
// When present is false, or overrides is nil, resolved is returned unchanged.
// When both values are keyed (map[string]any) the result is a shallow copy of
// resolved with every override field written as-is, explicit nil values
// included. Nested structures are replaced, never merged. Any other
// combination lets the override value replace resolved entirely.
//
// Override does not clone; callers own both inputs and hand over copies when
// aliasing matters.
func Override(resolved, overrides any, present bool) any {
	if !present || overrides == nil {
		return resolved
	}
	patch, ok := overrides.(map[string]any)
	if !ok {
		return overrides
	}
	base, ok := resolved.(map[string]any)
	if !ok {
		return overrides
	}

	merged := make(map[string]any, len(base)+len(patch))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range patch {
		merged[key] = value
	}
	return merged
}
