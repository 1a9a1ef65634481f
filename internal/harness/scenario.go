package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one YAML test case.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Backend is "sqlite" (default) or "badger".
	Backend string `yaml:"backend,omitempty"`

	// Codec is "json" (default) or "zstd".
	Codec string `yaml:"codec,omitempty"`

	// Steps are applied in order, one batch each.
	Steps []Step `yaml:"steps"`

	// Assertions are evaluated after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one batch of raw wire tuples.
type Step struct {
	Datoms []any `yaml:"datoms"`

	// Expect lists the entities the batch must return, in order.
	Expect []ExpectEntity `yaml:"expect,omitempty"`

	// ExpectError is a substring the batch's error must contain.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// ExpectEntity is an expected entity snapshot.
type ExpectEntity struct {
	ID    string         `yaml:"id"`
	Attrs map[string]any `yaml:"attrs"`
}

// Assertion checks the final stored state.
type Assertion struct {
	Type   string         `yaml:"type"`
	Entity string         `yaml:"entity,omitempty"`
	Expect map[string]any `yaml:"expect,omitempty"`
	Count  int            `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState = "final_state"
	AssertAbsent     = "absent"
	AssertRowCount   = "row_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Validate required fields
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	switch s.Backend {
	case "", "sqlite", "badger":
	default:
		return fmt.Errorf("unknown backend %q", s.Backend)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i, step := range s.Steps {
		if step.ExpectError != "" && step.Expect != nil {
			return fmt.Errorf("step %d: expect and expect_error are mutually exclusive", i)
		}
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
	case AssertFinalState:
		if a.Entity == "" {
			return fmt.Errorf("final_state requires entity")
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("final_state requires expect")
		}
	case AssertAbsent:
		if a.Entity == "" {
			return fmt.Errorf("absent requires entity")
		}
	case AssertRowCount:
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
