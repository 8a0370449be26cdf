package jsonschema

import (
	"bytes"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	santhosh "github.com/santhosh-tekuri/jsonschema/v5"
)

const resourceName = "shape.json"

// Marshal renders the document as indented JSON.
func Marshal(s *Schema) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Compile checks that an exported document is a valid JSON Schema and returns
// the compiled form for validating instances with an independent engine.
func Compile(s *Schema) (*santhosh.Schema, error) {
	doc, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := santhosh.NewCompiler()
	compiler.Draft = santhosh.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(resourceName, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := compiler.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return sch, nil
}

// Violations validates v against a compiled schema and flattens the leaf
// causes into messages. A nil slice means v conforms.
func Violations(sch *santhosh.Schema, v any) []string {
	err := sch.Validate(v)
	if err == nil {
		return nil
	}
	var ve *santhosh.ValidationError
	if errors.As(err, &ve) {
		return leafMessages(ve)
	}
	return []string{err.Error()}
}

func leafMessages(ve *santhosh.ValidationError) []string {
	var msgs []string
	for _, cause := range ve.Causes {
		msgs = append(msgs, leafMessages(cause)...)
	}
	if len(ve.Causes) == 0 {
		msgs = append(msgs, ve.InstanceLocation+": "+ve.Message)
	}
	return msgs
}
