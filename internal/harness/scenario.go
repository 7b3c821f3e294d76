package harness

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/Moop-Lang/Moop-wasm/internal/compiler"
)

// Scenario defines a conformance scenario: a sequence of source units
// compiled in order against one session, with expectations per unit.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// SessionID is the fixed session id. Defaults to "scenario-<name>".
	SessionID string `yaml:"session_id,omitempty"`

	// Options apply to every unit unless the unit overrides them.
	// Keys not given keep compiler.DefaultOptions values.
	Options compiler.Options `yaml:"options,omitempty"`

	// Units are compiled in order against the same session.
	Units []Unit `yaml:"units"`
}

// Unit is one compile request within a scenario.
type Unit struct {
	Source string `yaml:"source"`

	// Options overrides individual scenario options for this unit only,
	// keyed like the options file (e.g. strict_mode).
	Options map[string]bool `yaml:"options,omitempty"`

	// Expect is checked against the compile result. Nil checks nothing.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect lists the observable outcome of one unit.
// Nil slices are not checked; an empty list must match exactly.
type Expect struct {
	Success *bool `yaml:"success,omitempty"`

	// ErrorCode is the stable code of a failed unit, e.g. "E007".
	ErrorCode string `yaml:"error_code,omitempty"`

	// ErrorLine is the 1-based source line of the failure.
	ErrorLine int `yaml:"error_line,omitempty"`

	// Cells are program listing entries, e.g. "add(5, 3) [R]".
	Cells []string `yaml:"cells,omitempty"`

	// Crossings are membrane entries, e.g. "output @io (cell 1)".
	Crossings []string `yaml:"crossings,omitempty"`

	// Graph is the inheritance snapshot after the unit, "Child <- Parent".
	Graph []string `yaml:"graph,omitempty"`

	Warnings []string `yaml:"warnings,omitempty"`
}

var errorCodePattern = regexp.MustCompile(`^E\d{3}$`)

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

// ParseScenario decodes scenario YAML. Options start from the compiler
// defaults so scenarios only list what they change.
func ParseScenario(data []byte) (*Scenario, error) {
	scenario := Scenario{Options: compiler.DefaultOptions()}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if scenario.SessionID == "" {
		scenario.SessionID = "scenario-" + scenario.Name
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Units) == 0 {
		return fmt.Errorf("units list is required and must be non-empty")
	}

	for i, u := range s.Units {
		if u.Source == "" {
			return fmt.Errorf("units[%d]: source is required", i)
		}
		if _, err := s.UnitOptions(i); err != nil {
			return fmt.Errorf("units[%d]: %w", i, err)
		}
		if u.Expect == nil {
			continue
		}
		if u.Expect.ErrorCode != "" && !errorCodePattern.MatchString(u.Expect.ErrorCode) {
			return fmt.Errorf("units[%d].expect: malformed error_code %q", i, u.Expect.ErrorCode)
		}
		if u.Expect.Success != nil && *u.Expect.Success && u.Expect.ErrorCode != "" {
			return fmt.Errorf("units[%d].expect: error_code given for a successful unit", i)
		}
	}
	return nil
}

// UnitOptions returns the effective options for unit i: the scenario
// options with the unit's overrides applied.
func (s *Scenario) UnitOptions(i int) (compiler.Options, error) {
	opts := s.Options
	patch := s.Units[i].Options
	if len(patch) == 0 {
		return opts, nil
	}
	data, err := yaml.Marshal(patch)
	if err != nil {
		return compiler.Options{}, err
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&opts); err != nil {
		return compiler.Options{}, fmt.Errorf("options: %w", err)
	}
	return opts, nil
}
