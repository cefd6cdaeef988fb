//go:build js_eval

package fixtures

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"
)

// jsMatcher evaluates filters with goja.
type jsMatcher struct {
	cache ProgramCache

	once    sync.Once
	program *goja.Program
	err     error
}

// NewJSMatcher constructs a Matcher backed by goja.
func NewJSMatcher(opts ...JSMatcherOption) Matcher {
	cfg := applyJSMatcherOptions(opts)
	return &jsMatcher{cache: cfg.cache}
}

func (m *jsMatcher) Compile(key, literal string) (CompiledMatch, error) {
	if key == "" {
		return nil, wrapMatchError("js", key, literal, fmt.Errorf("filter key must not be empty"))
	}
	program, err := m.loadOrCompile()
	if err != nil {
		return nil, wrapMatchError("js", key, literal, err)
	}
	return &jsCompiledMatch{program: program, key: key, literal: literal}, nil
}

func (m *jsMatcher) loadOrCompile() (*goja.Program, error) {
	m.once.Do(func() {
		cacheKey := "js:" + matchSource
		if m.cache != nil {
			if cached, ok := m.cache.Get(cacheKey); ok {
				if program, ok := cached.(*goja.Program); ok {
					m.program = program
					return
				}
			}
		}
		program, err := goja.Compile("", fmt.Sprintf("(function(){ return (%s); })()", matchSource), false)
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

type jsCompiledMatch struct {
	program *goja.Program
	key     string
	literal string
}

func (c *jsCompiledMatch) Match(value any) (bool, error) {
	left, right, ok := looseOperands(value, c.literal)
	if !ok {
		return false, nil
	}
	vm := goja.New()
	if err := vm.Set("value", left); err != nil {
		return false, wrapMatchError("js", c.key, c.literal, err)
	}
	if err := vm.Set("literal", right); err != nil {
		return false, wrapMatchError("js", c.key, c.literal, err)
	}
	out, err := vm.RunProgram(c.program)
	if err != nil {
		return false, wrapMatchError("js", c.key, c.literal, err)
	}
	return out.ToBoolean(), nil
}

func jsMatcherAvailable() bool {
	return true
}
