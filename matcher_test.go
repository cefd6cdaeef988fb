package fixtures

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestLooseOperands(t *testing.T) {
	cases := []struct {
		value   any
		literal string
		left    any
		right   any
		ok      bool
	}{
		{value: "Home", literal: "Home", left: "Home", right: "Home", ok: true},
		{value: "1", literal: "1.0", left: "1", right: "1.0", ok: true},
		{value: true, literal: "true", left: true, right: true, ok: true},
		{value: true, literal: "false", left: true, right: false, ok: true},
		{value: true, literal: "1", ok: false},
		{value: float64(1), literal: "1.0", left: float64(1), right: float64(1), ok: true},
		{value: 7, literal: "07", left: float64(7), right: float64(7), ok: true},
		{value: int64(-3), literal: "-3e0", left: float64(-3), right: float64(-3), ok: true},
		{value: uint8(9), literal: "9", left: float64(9), right: float64(9), ok: true},
		{value: float32(0.5), literal: "0.5", left: float64(0.5), right: float64(0.5), ok: true},
		{value: json.Number("1.50"), literal: "1.5", left: 1.5, right: 1.5, ok: true},
		{value: float64(0), literal: "", ok: false},
		{value: float64(1), literal: "one", ok: false},
		{value: float64(1), literal: "NaN", ok: false},
		{value: nil, literal: "null", ok: false},
		{value: map[string]any{}, literal: "x", ok: false},
		{value: []any{"Home"}, literal: "Home", ok: false},
	}

	for _, tc := range cases {
		left, right, ok := looseOperands(tc.value, tc.literal)
		if ok != tc.ok || left != tc.left || right != tc.right {
			t.Fatalf("looseOperands(%#v, %q) = %#v, %#v, %t; want %#v, %#v, %t",
				tc.value, tc.literal, left, right, ok, tc.left, tc.right, tc.ok)
		}
	}
}

func TestMatchersCompareLoosely(t *testing.T) {
	cases := []struct {
		literal string
		value   any
		want    bool
	}{
		{literal: "Home", value: "Home", want: true},
		{literal: "Home", value: "home", want: false},
		{literal: "1", value: float64(1), want: true},
		{literal: "1.0", value: float64(1), want: true},
		{literal: "01", value: float64(1), want: true},
		{literal: "1e0", value: 1, want: true},
		{literal: "2", value: float64(1), want: false},
		{literal: "one", value: float64(1), want: false},
		{literal: "1.0", value: "1", want: false},
		{literal: "1", value: json.Number("1.00"), want: true},
		{literal: "1", value: "1", want: true},
		{literal: "2.5", value: 2.5, want: true},
		{literal: "true", value: true, want: true},
		{literal: "false", value: true, want: false},
		{literal: "false", value: false, want: true},
		{literal: "1", value: true, want: false},
		{literal: "", value: "", want: true},
		{literal: "null", value: nil, want: false},
		{literal: "x", value: map[string]any{"x": 1}, want: false},
	}

	for _, factory := range matcherFactories {
		t.Run(factory.name, func(t *testing.T) {
			matcher := factory.new(nil)
			if matcher == nil {
				t.Skipf("%s matcher not compiled in", factory.name)
			}
			for _, tc := range cases {
				match, err := matcher.Compile("key", tc.literal)
				if err != nil {
					t.Fatalf("compile %q: %v", tc.literal, err)
				}
				got, err := match.Match(tc.value)
				if err != nil {
					t.Fatalf("match %q against %#v: %v", tc.literal, tc.value, err)
				}
				if got != tc.want {
					t.Fatalf("match %q against %#v: want %t, got %t", tc.literal, tc.value, tc.want, got)
				}
			}
		})
	}
}

func TestMatchersRejectEmptyKey(t *testing.T) {
	for _, factory := range matcherFactories {
		t.Run(factory.name, func(t *testing.T) {
			matcher := factory.new(nil)
			if matcher == nil {
				t.Skipf("%s matcher not compiled in", factory.name)
			}
			_, err := matcher.Compile("", "x")
			if err == nil {
				t.Fatalf("expected error for empty key")
			}
			matchErr, ok := err.(*MatchError)
			if !ok {
				t.Fatalf("expected MatchError, got %T", err)
			}
			if matchErr.Engine != factory.name {
				t.Fatalf("expected engine %q, got %q", factory.name, matchErr.Engine)
			}
		})
	}
}

func TestMatchersShareProgramCache(t *testing.T) {
	for _, factory := range matcherFactories {
		t.Run(factory.name, func(t *testing.T) {
			cache := NewMemoryCache()
			first := factory.new(cache)
			if first == nil {
				t.Skipf("%s matcher not compiled in", factory.name)
			}
			if _, err := first.Compile("Type", "Home"); err != nil {
				t.Fatalf("compile: %v", err)
			}
			if cache.Len() != 1 {
				t.Fatalf("expected one cached program, got %d", cache.Len())
			}
			if _, ok := cache.Get(factory.name + ":" + matchSource); !ok {
				t.Fatalf("expected program cached under engine key")
			}

			second := factory.new(cache)
			match, err := second.Compile("Type", "Work")
			if err != nil {
				t.Fatalf("compile from cache: %v", err)
			}
			if ok, _ := match.Match("Work"); !ok {
				t.Fatalf("cached program should evaluate")
			}
			if cache.Len() != 1 {
				t.Fatalf("expected cache reuse, got %d entries", cache.Len())
			}
		})
	}
}

func TestMatcherEngineName(t *testing.T) {
	if got := matcherEngineName(NewExprMatcher()); got != "expr" {
		t.Fatalf("expected expr, got %q", got)
	}
	if got := matcherEngineName(NewCELMatcher()); got != "cel" {
		t.Fatalf("expected cel, got %q", got)
	}
	if jsMatcherAvailable() {
		if got := matcherEngineName(NewJSMatcher()); got != "js" {
			t.Fatalf("expected js, got %q", got)
		}
	}
	if got := matcherEngineName(failingMatcher{}); got != "custom" {
		t.Fatalf("expected custom, got %q", got)
	}
	if got := matcherEngineName(nil); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
}

func TestResolverCachesPathsPerEngine(t *testing.T) {
	cache := NewMemoryCache()
	maps := map[string]any{"Items": []any{map[string]any{"id": "a"}}}

	exprResolver := New(WithPathCache(cache.Paths()))
	exprResolver.AddMaps(maps)
	exprResolver.ProcessMaps()
	if _, ok := exprResolver.LookupMap("Items[id=a]"); !ok {
		t.Fatalf("expr lookup failed")
	}

	celResolver := New(WithPathCache(cache.Paths()), WithMatcher(NewCELMatcher()))
	celResolver.AddMaps(maps)
	celResolver.ProcessMaps()
	if _, ok := celResolver.LookupMap("Items[id=a]"); !ok {
		t.Fatalf("cel lookup failed")
	}

	if _, ok := cache.Paths().Get("expr\x00Items[id=a]"); !ok {
		t.Fatalf("expected expr path cached")
	}
	if _, ok := cache.Paths().Get("cel\x00Items[id=a]"); !ok {
		t.Fatalf("expected cel path cached")
	}
	if cache.Len() != 2 {
		t.Fatalf("expected two cached paths, got %d", cache.Len())
	}
}

func TestMatchersCompileConcurrently(t *testing.T) {
	for _, factory := range matcherFactories {
		t.Run(factory.name, func(t *testing.T) {
			cache := NewMemoryCache()
			matcher := factory.new(cache)
			if matcher == nil {
				t.Skipf("%s matcher not compiled in", factory.name)
			}

			var wg sync.WaitGroup
			errs := make(chan error, 8)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					match, err := matcher.Compile("id", "1")
					if err != nil {
						errs <- err
						return
					}
					if ok, err := match.Match(float64(1)); err != nil || !ok {
						errs <- fmt.Errorf("match = %t, %v", ok, err)
					}
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				t.Fatalf("concurrent compile: %v", err)
			}
			if cache.Len() != 1 {
				t.Fatalf("expected one cached program, got %d", cache.Len())
			}
		})
	}
}

type constMatcher struct {
	result bool
}

func (m *constMatcher) Compile(string, string) (CompiledMatch, error) {
	return constMatch(m.result), nil
}

type constMatch bool

func (c constMatch) Match(any) (bool, error) {
	return bool(c), nil
}

func TestPathCacheScopesCustomMatchers(t *testing.T) {
	cache := NewMemoryCache()
	maps := map[string]any{"Items": []any{map[string]any{"id": "a"}}}

	always := New(WithPathCache(cache.Paths()), WithMatcher(&constMatcher{result: true}))
	always.AddMaps(maps)
	always.ProcessMaps()
	if _, ok := always.LookupMap("Items[id=a]"); !ok {
		t.Fatalf("expected match from first custom matcher")
	}

	never := New(WithPathCache(cache.Paths()), WithMatcher(&constMatcher{result: false}))
	never.AddMaps(maps)
	never.ProcessMaps()
	if value, ok := never.LookupMap("Items[id=a]"); ok {
		t.Fatalf("second custom matcher reused a foreign compiled path, got %#v", value)
	}
	if cache.Len() != 2 {
		t.Fatalf("expected one cached path per matcher, got %d", cache.Len())
	}
}

func TestPathCacheScope(t *testing.T) {
	if got := pathCacheScope(NewExprMatcher()); got != "expr" {
		t.Fatalf("expected expr scope, got %q", got)
	}
	if got := pathCacheScope(NewCELMatcher()); got != "cel" {
		t.Fatalf("expected cel scope, got %q", got)
	}

	custom := &constMatcher{}
	if pathCacheScope(custom) != pathCacheScope(custom) {
		t.Fatalf("expected a stable scope for one custom matcher")
	}
	if pathCacheScope(custom) == pathCacheScope(&constMatcher{}) {
		t.Fatalf("expected distinct scopes for distinct custom matchers")
	}
	if !strings.HasPrefix(pathCacheScope(failingMatcher{}), "custom:") {
		t.Fatalf("expected custom prefix for value matcher")
	}
	if pathCacheScope(failingMatcher{}) == pathCacheScope(failingMatcher{}) {
		t.Fatalf("expected value matchers to get private scopes")
	}
}
