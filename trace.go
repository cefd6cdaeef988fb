package fixtures

import (
	"encoding/json"

	"github.com/goliatone/go-fixtures/layering"
)

// Trace records how a map path was evaluated against the normalized map
// store, one entry per step. Found and Value describe the final outcome.
type Trace struct {
	Path  string      `json:"path"`
	Steps []StepTrace `json:"steps"`
	Found bool        `json:"found"`
	Value any         `json:"value,omitempty"`
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

// LookupMapWithTrace behaves like LookupMap and also returns the per-step
// trace. Unlike LookupMap it reports malformed paths as errors.
func (r *Resolver) LookupMapWithTrace(path string) (any, Trace, error) {
	trace := Trace{Path: path}
	compiled, err := r.compilePath(path)
	if err != nil {
		return nil, trace, err
	}

	active := map[string]bool{path: true}
	value, ok, _ := compiled.evaluate(r.maps, func(ref string) (any, bool) {
		return r.lookupNormalizedMap(ref, active)
	}, &trace.Steps)
	for i := range trace.Steps {
		trace.Steps[i].Value = layering.Clone(trace.Steps[i].Value)
	}
	if !ok {
		return nil, trace, nil
	}
	trace.Found = true
	trace.Value = layering.Clone(value)
	return layering.Clone(value), trace, nil
}
