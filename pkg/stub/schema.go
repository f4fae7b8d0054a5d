package stub

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/reqdiff/pkg/config"
)

const schemaURL = "reqdiff-stubs.schema.json"

// ErrSchemaViolation is matched by documents that do not fit the stub file
// schema.
var ErrSchemaViolation = errors.New("stub file does not match schema")

// Schema returns the JSON Schema of a stub file: one definition or an array
// of them. Unknown properties are rejected.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{Anonymous: true}
	def := r.Reflect(&Definition{})
	ref := "#/$defs/Definition"
	return &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "reqdiff stub file",
		Description: "A stub definition or an array of stub definitions.",
		OneOf: []*jsonschema.Schema{
			{Ref: ref},
			{Type: "array", Items: &jsonschema.Schema{Ref: ref}},
		},
		Definitions: def.Definitions,
	}
}

var compiledSchema = sync.OnceValues(func() (*validator.Schema, error) {
	doc, err := json.Marshal(Schema())
	if err != nil {
		return nil, err
	}
	c := validator.NewCompiler()
	if err := c.AddResource(schemaURL, bytes.NewReader(doc)); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

// ValidateDocument checks a stub document against Schema. It catches
// misspelled fields that decoding would silently ignore.
func ValidateDocument(data []byte, format config.Format) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compiling stub schema: %w", err)
	}

	if format == config.FormatYAML {
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("%w: %v", config.ErrInvalidYAML, err)
		}
		if data, err = json.Marshal(v); err != nil {
			return fmt.Errorf("%w: %v", config.ErrInvalidYAML, err)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidJSON, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	return nil
}

// ValidateFile reads path and checks it against Schema.
func ValidateFile(path string) error {
	data, err := config.ReadFile(path)
	if err != nil {
		return err
	}
	if err := ValidateDocument(data, config.DetectFormat(path)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
