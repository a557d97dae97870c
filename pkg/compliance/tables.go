package compliance

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

//go:embed tables.schema.json
var tablesSchemaJSON []byte

const tablesSchemaURL = "tables.schema.json"

// Tables is the license reference data the engine and detector are built
// from. It is loaded once at startup and treated as read-only.
type Tables struct {
	NetworkCopyleft []string                   `yaml:"network_copyleft"`
	Conflicts       []Conflict                 `yaml:"conflicts"`
	Categories      map[string]LicenseCategory `yaml:"categories"`
}

// DefaultTables returns the embedded reference data.
func DefaultTables() (*Tables, error) {
	return ParseTables(defaultTablesYAML)
}

// LoadTables reads reference data from a YAML file. An empty path returns
// the embedded defaults.
func LoadTables(path string) (*Tables, error) {
	if path == "" {
		return DefaultTables()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read license tables %s: %w", path, err)
	}
	t, err := ParseTables(data)
	if err != nil {
		return nil, fmt.Errorf("license tables %s: %w", path, err)
	}
	return t, nil
}

// ParseTables validates YAML reference data against the tables schema and
// decodes it.
func ParseTables(data []byte) (*Tables, error) {
	if err := validateTables(data); err != nil {
		return nil, err
	}
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode license tables: %w", err)
	}
	return &t, nil
}

func validateTables(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse license tables: %w", err)
	}
	// The schema validator works on JSON values.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert license tables: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("convert license tables: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(tablesSchemaURL, bytes.NewReader(tablesSchemaJSON)); err != nil {
		return fmt.Errorf("load tables schema: %w", err)
	}
	schema, err := compiler.Compile(tablesSchemaURL)
	if err != nil {
		return fmt.Errorf("compile tables schema: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("invalid license tables: %w", err)
	}
	return nil
}

// NewEngine builds an engine over the default decision table using the
// network copyleft set of t.
func (t *Tables) NewEngine() (*Engine, error) {
	return NewEngine(t.NetworkCopyleft)
}

// NewConflictDetector builds a detector over the conflict table of t.
func (t *Tables) NewConflictDetector() *ConflictDetector {
	return NewConflictDetector(t.Conflicts)
}
