// Package resultschema derives the JSON Schema of the stored result document
// from domain.Result and validates documents against it before they are persisted.
package resultschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"ownership/internal/domain"
)

const resourceName = "ownership-result.json"

// ErrInvalidResult wraps every validation failure.
var ErrInvalidResult = errors.New("result does not match schema")

// Document returns the reflected schema as JSON.
func Document() ([]byte, error) {
	reflector := invopop.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	s := reflector.Reflect(&domain.Result{})
	s.Title = "Ownership result"
	return json.MarshalIndent(s, "", "  ")
}

type Validator struct {
	schema *jsonschema.Schema
}

// New reflects and compiles the schema once.
func New() (*Validator, error) {
	doc, err := Document()
	if err != nil {
		return nil, fmt.Errorf("reflect schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resourceName, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// MustNew is New for process start-up.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks r exactly as it would be stored.
func (v *Validator) Validate(r domain.Result) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return v.ValidateJSON(b)
}

func (v *Validator) ValidateJSON(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResult, err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResult, err)
	}
	return nil
}
