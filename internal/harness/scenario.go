package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/qom/internal/backend"
)

// Scenario defines an operand evaluation scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Operands is the directory holding the CUE operand package.
	// Relative paths are resolved against the scenario file location.
	Operands string `yaml:"operands"`

	// Fixture is the YAML fixture of repository nodes.
	// Relative paths are resolved against the scenario file location.
	Fixture string `yaml:"fixture"`

	// Selector is the selector name rows bind fixture nodes to.
	// Defaults to "s".
	Selector string `yaml:"selector,omitempty"`

	// Store names the repository implementation: memory, sqlite or badger.
	// Defaults to memory.
	Store string `yaml:"store,omitempty"`

	// Assertions are checked against the evaluation report.
	// Supported types: result, matches, order
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion checks one fact of the evaluation report.
type Assertion struct {
	// Type specifies the assertion type:
	// - "result": check one operand's result for one row
	// - "matches": check the rows a constraint matched, in row order
	// - "order": check the row order an ordering produced
	Type string `yaml:"type"`

	// Operand names the operand (used by result).
	Operand string `yaml:"operand,omitempty"`

	// Path is the row's node path (used by result).
	Path string `yaml:"path,omitempty"`

	// Kind is the expected result kind: null, scalar or vector (used by result).
	Kind string `yaml:"kind,omitempty"`

	// Values are the expected values in canonical string form (used by result).
	// Omit to check the kind only.
	Values []string `yaml:"values,omitempty"`

	// ValueType is the expected property type of every value (used by result).
	ValueType string `yaml:"value_type,omitempty"`

	// Constraint names the constraint (used by matches).
	Constraint string `yaml:"constraint,omitempty"`

	// Order names the ordering (used by order).
	Order string `yaml:"order,omitempty"`

	// Paths lists the expected row paths (used by matches and order).
	Paths []string `yaml:"paths,omitempty"`
}

// Assertion type constants.
const (
	AssertResult  = "result"
	AssertMatches = "matches"
	AssertOrder   = "order"
)

// DefaultSelector is the selector name used when a scenario sets none.
const DefaultSelector = "s"

// LoadScenario reads and parses a scenario YAML file. Relative operand and
// fixture paths are resolved against the directory holding the file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	scenario.Operands = resolve(base, scenario.Operands)
	scenario.Fixture = resolve(base, scenario.Fixture)
	return scenario, nil
}

// ParseScenario parses scenario YAML without resolving paths.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Selector == "" {
		scenario.Selector = DefaultSelector
	}
	if scenario.Store == "" {
		scenario.Store = string(backend.Memory)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Operands == "" {
		return fmt.Errorf("operands directory is required")
	}
	if s.Fixture == "" {
		return fmt.Errorf("fixture is required")
	}
	if _, err := backend.ParseKind(s.Store); err != nil {
		return err
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertion %d: %w", i, err)
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertResult:
		if a.Operand == "" {
			return fmt.Errorf("result assertion requires operand")
		}
		if a.Path == "" {
			return fmt.Errorf("result assertion requires path")
		}
		switch a.Kind {
		case "null", "scalar", "vector":
		default:
			return fmt.Errorf("result assertion kind must be null, scalar or vector, got %q", a.Kind)
		}
	case AssertMatches:
		if a.Constraint == "" {
			return fmt.Errorf("matches assertion requires constraint")
		}
	case AssertOrder:
		if a.Order == "" {
			return fmt.Errorf("order assertion requires order")
		}
		if len(a.Paths) == 0 {
			return fmt.Errorf("order assertion requires paths")
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
