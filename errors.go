package fixtures

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidPath reports a path string that does not follow the path grammar.
	ErrInvalidPath = errors.New("fixtures: invalid path")
	// ErrNoMatcher reports a filter segment compiled without a usable matcher.
	ErrNoMatcher = errors.New("fixtures: matcher not configured")
	// ErrUnresolved reports markers left in a tree that was expected to be
	// fully resolved.
	ErrUnresolved = errors.New("fixtures: unresolved references")
)

// PathError captures where a path failed to compile.
type PathError struct {
	Path    string
	Segment string
	Err     error
}

func (e *PathError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Segment == "" {
		return fmt.Sprintf("fixtures: path %q: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("fixtures: path %q segment %q: %v", e.Path, e.Segment, e.Err)
}

func (e *PathError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newPathError(path, segment, reason string) error {
	return &PathError{
		Path:    path,
		Segment: segment,
		Err:     fmt.Errorf("%w: %s", ErrInvalidPath, reason),
	}
}

// MatchError captures matcher metadata alongside the originating error.
type MatchError struct {
	Engine  string
	Key     string
	Literal string
	Err     error
}

func (e *MatchError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("fixtures: %s matcher %s: %v", e.Engine, describeFilter(e.Key, e.Literal), e.Err)
}

func (e *MatchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeFilter(key, literal string) string {
	if key == "" {
		return "filter=<empty>"
	}
	return fmt.Sprintf("filter=%q", key+"="+literal)
}

func wrapMatchError(engine, key, literal string, err error) error {
	if err == nil {
		return nil
	}

	var matchErr *MatchError
	if errors.As(err, &matchErr) {
		if matchErr.Engine == "" {
			matchErr.Engine = engine
		}
		if matchErr.Key == "" {
			matchErr.Key = key
			matchErr.Literal = literal
		}
		return matchErr
	}

	if strings.HasPrefix(err.Error(), "fixtures:") {
		return err
	}
	return &MatchError{
		Engine:  engine,
		Key:     key,
		Literal: literal,
		Err:     err,
	}
}

// UnresolvedError lists the markers found by CheckResolved.
type UnresolvedError struct {
	References []Reference
}

func (e *UnresolvedError) Error() string {
	if e == nil {
		return "<nil>"
	}
	parts := make([]string, 0, len(e.References))
	for _, ref := range e.References {
		location := ref.Location
		if location == "" {
			location = "<root>"
		}
		parts = append(parts, fmt.Sprintf("%s %q at %s", ref.Kind, ref.Target, location))
	}
	return fmt.Sprintf("%v: %s", ErrUnresolved, strings.Join(parts, ", "))
}

func (e *UnresolvedError) Unwrap() error {
	return ErrUnresolved
}

// CheckResolved returns an *UnresolvedError when value still holds markers.
func CheckResolved(value any) error {
	refs := Unresolved(value)
	if len(refs) == 0 {
		return nil
	}
	return &UnresolvedError{References: refs}
}
