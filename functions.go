package fixtures

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Function produces the value substituted for a data function marker. Args are
// the comma separated values written after the function name.
type Function func(args ...string) (any, error)

// FunctionRegistry stores data functions keyed by case-insensitive name.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// Register stores fn under name guarding against duplicates.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("fixtures: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("fixtures: function name must not be empty")
	}
	if strings.ContainsAny(name, ":@") {
		return fmt.Errorf("fixtures: function name %q must not contain ':' or '@'", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("fixtures: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]Function, len(r.functions)),
	}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Has reports whether name is registered.
func (r *FunctionRegistry) Has(name string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.functions[strings.ToLower(name)]
	return ok
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...string) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("fixtures: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("fixtures: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithFunctionRegistry replaces the resolver's registry with a copy of
// registry. Built-in functions are added for names the registry leaves free.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *resolverConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithDataFunction registers fn under name for the resolver.
func WithDataFunction(name string, fn Function) Option {
	return func(cfg *resolverConfig) {
		if cfg.extraFuncs == nil {
			cfg.extraFuncs = map[string]Function{}
		}
		cfg.extraFuncs[name] = fn
	}
}

// BuiltinFunctions returns the functions every resolver starts with.
func BuiltinFunctions() map[string]Function {
	return map[string]Function{
		"uuid": func(...string) (any, error) {
			return uuid.NewString(), nil
		},
		"timestamp": func(args ...string) (any, error) {
			offset, err := parseOffset(args)
			if err != nil {
				return nil, err
			}
			return time.Now().Add(offset).UnixMilli(), nil
		},
		"now": func(args ...string) (any, error) {
			offset, err := parseOffset(args)
			if err != nil {
				return nil, err
			}
			return time.Now().Add(offset).UTC().Format(time.RFC3339), nil
		},
	}
}

// parseOffset reads an optional Go duration argument such as "-24h".
func parseOffset(args []string) (time.Duration, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return 0, nil
	}
	offset, err := time.ParseDuration(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("fixtures: invalid offset %q: %w", args[0], err)
	}
	return offset, nil
}

// splitFunctionRef splits "name" or "name:arg1,arg2".
func splitFunctionRef(ref string) (string, []string) {
	name, rawArgs, ok := strings.Cut(ref, ":")
	if !ok || rawArgs == "" {
		return name, nil
	}
	return name, strings.Split(rawArgs, ",")
}

func buildFunctionRegistry(cfg resolverConfig) *FunctionRegistry {
	registry := cfg.functions
	if registry == nil {
		registry = NewFunctionRegistry()
	}
	names := make([]string, 0, len(cfg.extraFuncs))
	for name := range cfg.extraFuncs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_ = registry.Register(name, cfg.extraFuncs[name])
	}
	for name, fn := range BuiltinFunctions() {
		if !registry.Has(name) {
			_ = registry.Register(name, fn)
		}
	}
	return registry
}
