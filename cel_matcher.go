package fixtures

import (
	"fmt"
	"sync"

	celgo "github.com/google/cel-go/cel"
)

// CELMatcherOption configures the CEL matcher.
type CELMatcherOption func(*celMatcher)

// CELWithProgramCache wires a ProgramCache into the CEL matcher.
func CELWithProgramCache(cache ProgramCache) CELMatcherOption {
	return func(m *celMatcher) {
		m.cache = cache
	}
}

type celMatcher struct {
	cache ProgramCache

	once    sync.Once
	program celgo.Program
	err     error
}

// NewCELMatcher constructs a Matcher backed by cel-go.
func NewCELMatcher(opts ...CELMatcherOption) Matcher {
	m := &celMatcher{}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

func (m *celMatcher) Compile(key, literal string) (CompiledMatch, error) {
	if key == "" {
		return nil, wrapMatchError("cel", key, literal, fmt.Errorf("filter key must not be empty"))
	}
	program, err := m.loadOrCompile()
	if err != nil {
		return nil, wrapMatchError("cel", key, literal, err)
	}
	return &celCompiledMatch{program: program, key: key, literal: literal}, nil
}

func (m *celMatcher) loadOrCompile() (celgo.Program, error) {
	m.once.Do(func() {
		cacheKey := "cel:" + matchSource
		if m.cache != nil {
			if cached, ok := m.cache.Get(cacheKey); ok {
				if program, ok := cached.(celgo.Program); ok {
					m.program = program
					return
				}
			}
		}
		env, err := celgo.NewEnv(
			celgo.Variable("value", celgo.DynType),
			celgo.Variable("literal", celgo.DynType),
		)
		if err != nil {
			m.err = err
			return
		}
		ast, issues := env.Compile(matchSource)
		if issues != nil && issues.Err() != nil {
			m.err = issues.Err()
			return
		}
		program, err := env.Program(ast)
		if err != nil {
			m.err = err
			return
		}
		if m.cache != nil {
			m.cache.Set(cacheKey, program)
		}
		m.program = program
	})
	return m.program, m.err
}

type celCompiledMatch struct {
	program celgo.Program
	key     string
	literal string
}

func (c *celCompiledMatch) Match(value any) (bool, error) {
	left, right, ok := looseOperands(value, c.literal)
	if !ok {
		return false, nil
	}
	out, _, err := c.program.Eval(map[string]any{
		"value":   left,
		"literal": right,
	})
	if err != nil {
		return false, wrapMatchError("cel", c.key, c.literal, err)
	}
	matched, _ := out.Value().(bool)
	return matched, nil
}
