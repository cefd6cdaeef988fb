package fixtures

import (
	"fmt"
	"sync"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

const matchSource = "value == literal"

// matchEnv carries the operands prepared by looseOperands.
type matchEnv struct {
	Value   any `expr:"value"`
	Literal any `expr:"literal"`
}

// ExprMatcherOption configures an expr matcher instance.
type ExprMatcherOption func(*exprMatcher)

// ExprWithProgramCache wires a ProgramCache into the expr matcher.
func ExprWithProgramCache(cache ProgramCache) ExprMatcherOption {
	return func(m *exprMatcher) {
		m.cache = cache
	}
}

// exprMatcher evaluates filters with github.com/expr-lang/expr.
type exprMatcher struct {
	cache ProgramCache

	once    sync.Once
	program *exprvm.Program
	err     error
}

// NewExprMatcher constructs the default Matcher.
func NewExprMatcher(opts ...ExprMatcherOption) Matcher {
	m := &exprMatcher{}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

func (m *exprMatcher) Compile(key, literal string) (CompiledMatch, error) {
	if key == "" {
		return nil, wrapMatchError("expr", key, literal, fmt.Errorf("filter key must not be empty"))
	}
	program, err := m.loadOrCompile()
	if err != nil {
		return nil, wrapMatchError("expr", key, literal, err)
	}
	return &exprCompiledMatch{program: program, key: key, literal: literal}, nil
}

func (m *exprMatcher) loadOrCompile() (*exprvm.Program, error) {
	m.once.Do(func() {
		cacheKey := "expr:" + matchSource
		if m.cache != nil {
			if cached, ok := m.cache.Get(cacheKey); ok {
				if program, ok := cached.(*exprvm.Program); ok {
					m.program = program
					return
				}
			}
		}
		program, err := exprlang.Compile(matchSource,
			exprlang.Env(matchEnv{}),
			exprlang.AsBool(),
		)
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

type exprCompiledMatch struct {
	program *exprvm.Program
	key     string
	literal string
}

func (c *exprCompiledMatch) Match(value any) (bool, error) {
	left, right, ok := looseOperands(value, c.literal)
	if !ok {
		return false, nil
	}
	out, err := exprlang.Run(c.program, matchEnv{Value: left, Literal: right})
	if err != nil {
		return false, wrapMatchError("expr", c.key, c.literal, err)
	}
	matched, _ := out.(bool)
	return matched, nil
}
