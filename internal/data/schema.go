package data

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBaseURL = "https://chunkstream.local/schemas/"

func compileSchema(name string) (*jsonschema.Schema, error) {
	src, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	url := schemaBaseURL + name
	if err := c.AddResource(url, bytes.NewReader(src)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return s, nil
}

// validateYAML checks a YAML document against an embedded schema. The document
// goes through encoding/json so numbers reach the validator as float64.
func validateYAML(raw []byte, schemaName string) error {
	s, err := compileSchema(schemaName)
	if err != nil {
		return err
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert to json: %w", err)
	}
	var v any
	if err := json.Unmarshal(js, &v); err != nil {
		return fmt.Errorf("convert to json: %w", err)
	}
	return s.Validate(v)
}

// loadTable reads, validates and decodes one YAML content file.
func loadTable(path, schemaName string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return decodeTable(raw, path, schemaName, out)
}

func decodeTable(raw []byte, name, schemaName string, out any) error {
	if err := validateYAML(raw, schemaName); err != nil {
		return fmt.Errorf("validate %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
