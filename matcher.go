package fixtures

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Matcher compiles the `key=literal` filter of a path segment.
type Matcher interface {
	Compile(key, literal string) (CompiledMatch, error)
}

// CompiledMatch decides whether an array element's field value equals the
// compiled literal.
type CompiledMatch interface {
	Match(value any) (bool, error)
}

// looseOperands converts a field value and a filter literal into the operands
// handed to an engine's `value == literal` program. The literal takes the
// field's type: numeric fields compare against the literal read as a number,
// so "1.0", "01" and "1e0" all match 1, and boolean fields compare against
// "true" or "false". ok is false when the pair can never be equal: nil and
// container fields, or literals that do not read as the field's type.
func looseOperands(value any, literal string) (left, right any, ok bool) {
	switch typed := value.(type) {
	case string:
		return typed, literal, true
	case bool:
		switch literal {
		case "true":
			return typed, true, true
		case "false":
			return typed, false, true
		}
		return nil, nil, false
	case json.Number:
		number, err := typed.Float64()
		if err != nil {
			return nil, nil, false
		}
		return numericOperands(number, literal)
	}

	number, isNumber := toFloat(value)
	if !isNumber {
		return nil, nil, false
	}
	return numericOperands(number, literal)
}

func numericOperands(number float64, literal string) (any, any, bool) {
	trimmed := strings.TrimSpace(literal)
	if trimmed == "" {
		return nil, nil, false
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(parsed) {
		return nil, nil, false
	}
	return number, parsed, true
}

func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int8:
		return float64(typed), true
	case int16:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case uint8:
		return float64(typed), true
	case uint16:
		return float64(typed), true
	case uint32:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	default:
		return 0, false
	}
}

func matcherEngineName(m Matcher) string {
	if m == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", m) {
	case "*fixtures.exprMatcher":
		return "expr"
	case "*fixtures.celMatcher":
		return "cel"
	case "*fixtures.jsMatcher":
		return "js"
	default:
		return "custom"
	}
}

// pathCacheScope prefixes compiled path keys. Built-in engines compile the
// same filter the same way and share a scope. A custom matcher is scoped to
// its own identity; matchers without one get a scope private to the resolver.
func pathCacheScope(m Matcher) string {
	name := matcherEngineName(m)
	if name != "custom" {
		return name
	}
	value := reflect.ValueOf(m)
	switch value.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return fmt.Sprintf("custom:%T@%x", m, value.Pointer())
	default:
		return fmt.Sprintf("custom:%T#%s", m, uuid.NewString())
	}
}
