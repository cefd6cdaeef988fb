package fixtures

import (
	"github.com/goliatone/go-fixtures/pkg/activity"
)

// Store maps definition names to arbitrary tree values. Values are JSON-shaped:
// map[string]any, []any and scalars.
type Store map[string]any

// Field implements FieldSource so a store can act as the root of a path
// lookup.
func (s Store) Field(name string) (any, bool) {
	value, ok := s[name]
	return value, ok
}

// Len returns the number of entries in the store.
func (s Store) Len() int {
	return len(s)
}

// ProcessingState tracks one normalizer cycle for a store kind.
type ProcessingState struct {
	// Enabled reports whether the raw store held entries when the last run
	// executed.
	Enabled bool
	// Processed reports whether the normalizer ran since the last reset.
	Processed bool
}

// Kind names a store kind. It doubles as the activity object type.
type Kind string

const (
	KindTemplates Kind = "templates"
	KindMaps      Kind = "maps"
)

// Option configures a Resolver.
type Option func(*resolverConfig)

type resolverConfig struct {
	logger        ResolverLogger
	matcher       Matcher
	pathCache     PathCache
	programCache  ProgramCache
	functions     *FunctionRegistry
	extraFuncs    map[string]Function
	activityHooks activity.Hooks
	channel       string
	sessionID     string
}

func applyOptions(opts []Option) resolverConfig {
	cfg := resolverConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithMatcher selects the engine that evaluates `key=value` filter segments.
// Defaults to the expr-backed matcher.
func WithMatcher(matcher Matcher) Option {
	return func(cfg *resolverConfig) {
		cfg.matcher = matcher
	}
}

// WithPathCache stores compiled paths in cache instead of the resolver's
// private cache. Sharing one cache across resolvers is safe: entries are
// keyed by matcher engine, and custom matchers by their identity.
func WithPathCache(cache PathCache) Option {
	return func(cfg *resolverConfig) {
		cfg.pathCache = cache
	}
}

// WithProgramCache hands a program cache to the default matcher.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *resolverConfig) {
		cfg.programCache = cache
	}
}

// WithSessionID sets the identifier reported on activity events. A random UUID
// is used when empty.
func WithSessionID(id string) Option {
	return func(cfg *resolverConfig) {
		cfg.sessionID = id
	}
}
