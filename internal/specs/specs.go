// Package specs describes the shape, type and bounds of environment
// observations and actions. Specs compile to JSON Schema so that encoded
// observations can be checked against them.
package specs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DType is the element type of an array spec.
type DType string

const (
	Float64 DType = "float64"
	Int     DType = "int"
	Bool    DType = "bool"
)

// Array describes one field of an observation or an action.
type Array struct {
	Name  string `json:"name"`
	Shape []int  `json:"shape"`
	DType DType  `json:"dtype"`

	// Bounds apply to every numeric element when Bounded is set.
	Bounded bool    `json:"bounded"`
	Minimum float64 `json:"minimum"`
	Maximum float64 `json:"maximum"`

	// NumValues holds the per-dimension cardinality of discrete specs.
	NumValues []int `json:"num_values,omitempty"`

	// Keys turns the innermost element into an object with these numeric
	// properties, e.g. the six coordinates of a box.
	Keys []string `json:"keys,omitempty"`
}

// BoundedArray returns a numeric array spec with inclusive bounds.
func BoundedArray(name string, shape []int, dtype DType, minimum, maximum float64) Array {
	return Array{Name: name, Shape: shape, DType: dtype, Bounded: true, Minimum: minimum, Maximum: maximum}
}

// BoolArray returns a boolean array spec.
func BoolArray(name string, shape []int) Array {
	return Array{Name: name, Shape: shape, DType: Bool}
}

// DiscreteArray returns the spec of a scalar integer in [0, numValues).
func DiscreteArray(name string, numValues int) Array {
	return Array{
		Name: name, Shape: []int{}, DType: Int,
		Bounded: true, Minimum: 0, Maximum: float64(numValues - 1),
		NumValues: []int{numValues},
	}
}

// MultiDiscreteArray returns the spec of an integer vector whose i-th entry
// lies in [0, numValues[i]).
func MultiDiscreteArray(name string, numValues []int) Array {
	hi := 0
	for _, n := range numValues {
		hi = max(hi, n-1)
	}
	return Array{
		Name: name, Shape: []int{len(numValues)}, DType: Int,
		Bounded: true, Minimum: 0, Maximum: float64(hi),
		NumValues: append([]int(nil), numValues...),
	}
}

// Size returns the number of elements described by the spec.
func (a Array) Size() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// Replace returns a copy of the spec with a new shape.
func (a Array) Replace(shape []int) Array {
	a.Shape = append([]int(nil), shape...)
	return a
}

func (a Array) schema() map[string]any {
	var leaf map[string]any
	switch {
	case len(a.Keys) > 0:
		props := map[string]any{}
		for _, k := range a.Keys {
			props[k] = a.numberSchema()
		}
		leaf = map[string]any{
			"type":                 "object",
			"properties":           props,
			"required":             append([]string(nil), a.Keys...),
			"additionalProperties": false,
		}
	case a.DType == Bool:
		leaf = map[string]any{"type": "boolean"}
	default:
		leaf = a.numberSchema()
	}

	s := leaf
	for i := len(a.Shape) - 1; i >= 0; i-- {
		s = map[string]any{
			"type":     "array",
			"minItems": a.Shape[i],
			"maxItems": a.Shape[i],
			"items":    s,
		}
	}
	return s
}

func (a Array) numberSchema() map[string]any {
	s := map[string]any{"type": "number"}
	if a.DType == Int {
		s["type"] = "integer"
	}
	if a.Bounded {
		s["minimum"] = a.Minimum
		s["maximum"] = a.Maximum
	}
	return s
}

// Composite is a named group of field specs, e.g. an observation.
type Composite struct {
	Name   string  `json:"name"`
	Fields []Array `json:"fields"`
}

// Field looks up a field spec by name.
func (c Composite) Field(name string) (Array, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Array{}, false
}

// JSONSchema returns the JSON Schema document for values of the composite.
func (c Composite) JSONSchema() map[string]any {
	props := map[string]any{}
	required := make([]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		props[f.Name] = f.schema()
		required = append(required, f.Name)
	}
	return map[string]any{
		"$schema":    "https://json-schema.org/draft/2020-12/schema",
		"title":      c.Name,
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// Compile compiles the composite's JSON Schema.
func (c Composite) Compile() (*jsonschema.Schema, error) {
	raw, err := json.Marshal(c.JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal %s schema: %w", c.Name, err)
	}
	url := strings.ToLower(strings.ReplaceAll(c.Name, " ", "_")) + ".schema.json"
	s, err := jsonschema.CompileString(url, string(raw))
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", c.Name, err)
	}
	return s, nil
}

// Validate encodes v as JSON and checks it against the composite.
func (c Composite) Validate(v any) error {
	s, err := c.Compile()
	if err != nil {
		return err
	}
	return ValidateWith(s, v)
}

// ValidateWith checks the JSON encoding of v against a compiled schema.
func ValidateWith(s *jsonschema.Schema, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	return s.Validate(doc)
}
