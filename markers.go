package fixtures

import "strings"

const (
	// TemplateKey marks an object as a reference to a named template.
	TemplateKey = "@DATA:TEMPLATE@"
	// OverridesKey carries the per-usage overrides next to TemplateKey.
	OverridesKey = "@OVERRIDES@"
	// MapPrefix starts a map reference string: "@DATA:MAP::" + path + "@".
	MapPrefix = "@DATA:MAP::"
	// FunctionPrefix starts a data function string: "@DATA:FUN::" + name + "@".
	FunctionPrefix = "@DATA:FUN::"

	markerSuffix = "@"
)

type nodeKind int

const (
	nodeScalar nodeKind = iota
	nodeMapRef
	nodeFunctionRef
	nodeTemplateRef
	nodeObject
	nodeArray
)

func (k nodeKind) String() string {
	switch k {
	case nodeMapRef:
		return "map"
	case nodeFunctionRef:
		return "function"
	case nodeTemplateRef:
		return "template"
	case nodeObject:
		return "object"
	case nodeArray:
		return "array"
	default:
		return "scalar"
	}
}

// node is the classified view of a tree value. Exactly one group of fields is
// meaningful for a given kind.
type node struct {
	kind nodeKind

	// nodeMapRef: path; nodeFunctionRef: function call; nodeTemplateRef: name.
	ref string

	// nodeTemplateRef only.
	overrides    any
	hasOverrides bool

	object map[string]any
	array  []any
}

// classify decides how the walkers treat value. Map and function references
// must match the whole string; template references need a string name.
func classify(value any) node {
	switch typed := value.(type) {
	case string:
		if ref, ok := unwrapMarker(typed, MapPrefix); ok {
			return node{kind: nodeMapRef, ref: ref}
		}
		if ref, ok := unwrapMarker(typed, FunctionPrefix); ok {
			return node{kind: nodeFunctionRef, ref: ref}
		}
		return node{kind: nodeScalar}
	case map[string]any:
		if typed == nil {
			return node{kind: nodeScalar}
		}
		if name, ok := typed[TemplateKey].(string); ok {
			overrides, hasOverrides := typed[OverridesKey]
			return node{
				kind:         nodeTemplateRef,
				ref:          name,
				overrides:    overrides,
				hasOverrides: hasOverrides,
				object:       typed,
			}
		}
		return node{kind: nodeObject, object: typed}
	case []any:
		if typed == nil {
			return node{kind: nodeScalar}
		}
		return node{kind: nodeArray, array: typed}
	default:
		return node{kind: nodeScalar}
	}
}

func unwrapMarker(value, prefix string) (string, bool) {
	if len(value) <= len(prefix)+len(markerSuffix) {
		return "", false
	}
	if !strings.HasPrefix(value, prefix) || !strings.HasSuffix(value, markerSuffix) {
		return "", false
	}
	return value[len(prefix) : len(value)-len(markerSuffix)], true
}

// MapRef builds the marker string for path.
func MapRef(path string) string {
	return MapPrefix + path + markerSuffix
}

// TemplateRef builds a template reference object. Pass no overrides to omit
// the OverridesKey field.
func TemplateRef(name string, overrides ...any) map[string]any {
	ref := map[string]any{TemplateKey: name}
	if len(overrides) > 0 {
		ref[OverridesKey] = overrides[0]
	}
	return ref
}

// FunctionRef builds the marker string for a data function call.
func FunctionRef(name string, args ...string) string {
	if len(args) == 0 {
		return FunctionPrefix + name + markerSuffix
	}
	return FunctionPrefix + name + ":" + strings.Join(args, ",") + markerSuffix
}
