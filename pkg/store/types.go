package store

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrReadOnly is returned by stores that cannot persist definitions.
	ErrReadOnly = errors.New("store: read only")
	// ErrUnknownKind reports a kind other than KindTemplates or KindMaps.
	ErrUnknownKind = errors.New("store: unknown kind")
)

// Kind selects a definition family.
type Kind string

const (
	KindTemplates Kind = "templates"
	KindMaps      Kind = "maps"
)

// Validate reports whether k is a known kind.
func (k Kind) Validate() error {
	switch k {
	case KindTemplates, KindMaps:
		return nil
	default:
		return fmt.Errorf("%w %q", ErrUnknownKind, string(k))
	}
}

// Store loads and saves raw definitions by kind.
type Store interface {
	Load(ctx context.Context, kind Kind) (map[string]any, error)
	Save(ctx context.Context, kind Kind, name string, value any) error
	Clear(ctx context.Context, kind Kind) error
}

// Target receives loaded definitions. *fixtures.Resolver implements it.
type Target interface {
	AddTemplates(definitions map[string]any)
	AddMaps(definitions map[string]any)
}

// Populate loads both kinds from src and adds them to target.
func Populate(ctx context.Context, src Store, target Target) error {
	if src == nil {
		return fmt.Errorf("store: source is required")
	}
	if target == nil {
		return fmt.Errorf("store: target is required")
	}

	templates, err := src.Load(ctx, KindTemplates)
	if err != nil {
		return fmt.Errorf("store: load %s: %w", KindTemplates, err)
	}
	maps, err := src.Load(ctx, KindMaps)
	if err != nil {
		return fmt.Errorf("store: load %s: %w", KindMaps, err)
	}

	target.AddTemplates(templates)
	target.AddMaps(maps)
	return nil
}
