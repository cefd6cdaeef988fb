package fixtures

import (
	"sort"
	"strconv"
	"strings"
)

// Reference is a marker left in a tree after resolution.
type Reference struct {
	// Location is the dotted/indexed position of the marker, "" for the root.
	Location string `json:"location"`
	// Kind is "template", "map" or "function".
	Kind   string `json:"kind"`
	Target string `json:"target"`
}

// Unresolved lists the markers remaining in value, sorted by location. Markers
// nested inside an unresolved template's overrides are listed too.
func Unresolved(value any) []Reference {
	refs := collectReferences(value, "")
	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].Location < refs[j].Location
	})
	return refs
}

func collectReferences(value any, location string) []Reference {
	current := classify(value)
	switch current.kind {
	case nodeMapRef, nodeFunctionRef:
		return []Reference{{Location: location, Kind: current.kind.String(), Target: current.ref}}
	case nodeTemplateRef:
		refs := []Reference{{Location: location, Kind: current.kind.String(), Target: current.ref}}
		if current.hasOverrides {
			refs = append(refs, collectReferences(current.overrides, joinPath(location, OverridesKey))...)
		}
		return refs
	case nodeObject:
		var refs []Reference
		for key, child := range current.object {
			refs = append(refs, collectReferences(child, joinPath(location, key))...)
		}
		return refs
	case nodeArray:
		var refs []Reference
		for i, child := range current.array {
			refs = append(refs, collectReferences(child, location+"["+strconv.Itoa(i)+"]")...)
		}
		return refs
	default:
		return nil
	}
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}
