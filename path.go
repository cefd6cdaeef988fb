package fixtures

import (
	"strconv"
	"strings"
)

// FieldSource is a keyed value that can serve as the root of a path lookup
// without being a plain map, such as a Store or a store under normalization.
type FieldSource interface {
	Field(name string) (any, bool)
}

// Dereferencer resolves the path of a map reference met while walking a path.
// It reports false when the reference cannot be resolved.
type Dereferencer func(path string) (any, bool)

type stepKind int

const (
	stepField stepKind = iota
	stepIndex
	stepFilter
)

type pathStep struct {
	kind stepKind
	text string

	name    string
	index   int
	key     string
	literal string
	match   CompiledMatch
}

// Path is a compiled path query:
//
//	path    := segment ('.' segment)*
//	segment := identifier ('[' index_or_filter ']')?
//	index_or_filter := integer | identifier '=' literal
//
// Compiled paths are immutable and safe to share.
type Path struct {
	raw   string
	steps []pathStep
}

// String returns the source text of the path.
func (p *Path) String() string {
	if p == nil {
		return ""
	}
	return p.raw
}

// CompilePath parses raw into a Path. Filters are compiled with matcher, or
// with the default expr matcher when matcher is nil.
func CompilePath(raw string, matcher Matcher) (*Path, error) {
	if matcher == nil {
		matcher = NewExprMatcher()
	}
	if raw == "" {
		return nil, newPathError(raw, "", "path must not be empty")
	}

	var steps []pathStep
	i := 0
	for {
		start := i
		for i < len(raw) && raw[i] != '.' && raw[i] != '[' {
			if raw[i] == ']' {
				return nil, newPathError(raw, raw[start:i+1], "unexpected ']'")
			}
			i++
		}
		name := raw[start:i]
		if name == "" {
			return nil, newPathError(raw, "", "empty segment")
		}
		steps = append(steps, pathStep{kind: stepField, text: name, name: name})

		if i < len(raw) && raw[i] == '[' {
			end := strings.IndexByte(raw[i:], ']')
			if end < 0 {
				return nil, newPathError(raw, raw[start:], "unterminated '['")
			}
			segment := raw[start : i+end+1]
			step, err := compileBracket(raw, segment, raw[i+1:i+end], matcher)
			if err != nil {
				return nil, err
			}
			steps = append(steps, step)
			i += end + 1
		}

		if i == len(raw) {
			break
		}
		if raw[i] != '.' {
			return nil, newPathError(raw, raw[start:], "expected '.' after ']'")
		}
		i++
		if i == len(raw) {
			return nil, newPathError(raw, "", "trailing '.'")
		}
	}

	return &Path{raw: raw, steps: steps}, nil
}

func compileBracket(raw, segment, inner string, matcher Matcher) (pathStep, error) {
	if inner == "" {
		return pathStep{}, newPathError(raw, segment, "empty brackets")
	}
	text := "[" + inner + "]"
	if eq := strings.IndexByte(inner, '='); eq >= 0 {
		key, literal := inner[:eq], inner[eq+1:]
		if key == "" {
			return pathStep{}, newPathError(raw, segment, "filter key must not be empty")
		}
		match, err := matcher.Compile(key, literal)
		if err != nil {
			return pathStep{}, &PathError{Path: raw, Segment: segment, Err: err}
		}
		if match == nil {
			return pathStep{}, &PathError{Path: raw, Segment: segment, Err: ErrNoMatcher}
		}
		return pathStep{kind: stepFilter, text: text, key: key, literal: literal, match: match}, nil
	}
	index, err := strconv.Atoi(inner)
	if err != nil || index < 0 {
		return pathStep{}, newPathError(raw, segment, "index must be a non-negative integer")
	}
	return pathStep{kind: stepIndex, text: text, index: index}, nil
}

// Lookup evaluates the path against root. Map references met along the way,
// including the final value, are resolved through deref when it is not nil.
// The boolean is false when any step finds nothing; a present nil value is
// reported as (nil, true).
func (p *Path) Lookup(root any, deref Dereferencer) (any, bool) {
	value, ok, _ := p.evaluate(root, deref, nil)
	return value, ok
}

// StepTrace records one evaluated step.
type StepTrace struct {
	Segment string `json:"segment"`
	Found   bool   `json:"found"`
	Value   any    `json:"value,omitempty"`
}

// evaluate walks the steps. The error is the first matcher failure; it never
// turns a lookup into a failure by itself.
func (p *Path) evaluate(root any, deref Dereferencer, trace *[]StepTrace) (any, bool, error) {
	var firstErr error
	current := root
	for _, step := range p.steps {
		next, ok, err := step.apply(current, deref)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if ok {
			next = follow(next, deref)
		}
		if trace != nil {
			entry := StepTrace{Segment: step.text, Found: ok}
			if ok {
				entry.Value = next
			}
			*trace = append(*trace, entry)
		}
		if !ok {
			return nil, false, firstErr
		}
		current = next
	}
	return current, true, firstErr
}

func (s pathStep) apply(current any, deref Dereferencer) (any, bool, error) {
	switch s.kind {
	case stepField:
		switch typed := current.(type) {
		case map[string]any:
			value, ok := typed[s.name]
			return value, ok, nil
		case FieldSource:
			value, ok := typed.Field(s.name)
			return value, ok, nil
		default:
			return nil, false, nil
		}
	case stepIndex:
		items, ok := current.([]any)
		if !ok || s.index >= len(items) {
			return nil, false, nil
		}
		return items[s.index], true, nil
	case stepFilter:
		items, ok := current.([]any)
		if !ok {
			return nil, false, nil
		}
		var firstErr error
		for _, item := range items {
			element := follow(item, deref)
			fields, ok := element.(map[string]any)
			if !ok {
				continue
			}
			field, ok := fields[s.key]
			if !ok {
				continue
			}
			matched, err := s.match.Match(follow(field, deref))
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			if matched {
				return element, true, firstErr
			}
		}
		return nil, false, firstErr
	default:
		return nil, false, nil
	}
}

// follow replaces a map reference string with the value it points to. A
// reference deref cannot resolve is kept as-is.
func follow(value any, deref Dereferencer) any {
	if deref == nil {
		return value
	}
	text, ok := value.(string)
	if !ok {
		return value
	}
	ref, ok := unwrapMarker(text, MapPrefix)
	if !ok {
		return value
	}
	resolved, ok := deref(ref)
	if !ok {
		return value
	}
	return resolved
}
