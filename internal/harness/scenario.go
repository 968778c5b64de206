package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tscale/internal/leapsec"
	"github.com/roach88/tscale/internal/timeerr"
)

// Scenario defines a conformance test scenario.
// Scenarios run a list of operations against one leap-second table and
// compare each output with the expected text or error code.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Table is an optional leap-second table for this scenario.
	// When absent the runner's table is used.
	Table *leapsec.Document `yaml:"table,omitempty"`

	// Steps are executed in order; each is independent of the others.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace.
	// Supported types: trace_contains, trace_order, trace_count
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one operation with its inputs and expected outcome.
type Step struct {
	// Op is the operation name, e.g. "utc.plus".
	Op string `yaml:"op"`

	// Input is the canonical text of the instant the operation starts from.
	Input string `yaml:"input,omitempty"`

	// Seconds and Nanos are the amount for plus and minus operations.
	Seconds int64 `yaml:"seconds,omitempty"`
	Nanos   int64 `yaml:"nanos,omitempty"`

	// MJD is used by utc.of and utc.with_mjd.
	MJD *int64 `yaml:"mjd,omitempty"`

	// NanoOfDay is used by utc.of and utc.with_nano_of_day.
	NanoOfDay *int64 `yaml:"nano_of_day,omitempty"`

	// Nano is used by tai.with_nano.
	Nano *int `yaml:"nano,omitempty"`

	// Expect is the expected canonical text of the result.
	Expect string `yaml:"expect,omitempty"`

	// ExpectError is the expected error code, e.g. "OVERFLOW".
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion validates the trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": Check an operation appears, optionally with Output
	// - "trace_order": Check operations appear in order
	// - "trace_count": Check an operation appears exactly Count times
	Type string `yaml:"type"`

	// Op is the operation name (used by trace_contains, trace_count).
	Op string `yaml:"op,omitempty"`

	// Output is the expected output text (used by trace_contains).
	Output string `yaml:"output,omitempty"`

	// Count is the expected number of occurrences (used by trace_count).
	Count int `yaml:"count,omitempty"`

	// Ops is the expected operation order (used by trace_order).
	Ops []string `yaml:"ops,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
)

var errorCodes = []timeerr.Code{
	timeerr.CodeParse,
	timeerr.CodeValidation,
	timeerr.CodeOverflow,
	timeerr.CodeNullReference,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expected:" vs "expect:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadDir loads every .yaml and .yml file in dir, sorted by file name.
// Scenario names must be unique within the directory.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var scenarios []*Scenario
	seen := make(map[string]string)
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		scenario, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, ok := seen[scenario.Name]; ok {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", path, scenario.Name, prev)
		}
		seen[scenario.Name] = path
		scenarios = append(scenarios, scenario)
	}

	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", dir)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if s.Table != nil {
		if _, err := s.Table.Table("harness.LoadScenario"); err != nil {
			return fmt.Errorf("table: %w", err)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks that the operation exists and has its inputs.
func validateStep(index int, s *Step) error {
	if s.Op == "" {
		return fmt.Errorf("steps[%d]: op is required", index)
	}
	if _, ok := operations[s.Op]; !ok {
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}

	if s.Op != OpUTCOf && s.Input == "" {
		return fmt.Errorf("steps[%d]: input is required for %s", index, s.Op)
	}
	switch s.Op {
	case OpUTCOf:
		if s.MJD == nil || s.NanoOfDay == nil {
			return fmt.Errorf("steps[%d]: mjd and nano_of_day are required for %s", index, s.Op)
		}
	case OpUTCWithMJD:
		if s.MJD == nil {
			return fmt.Errorf("steps[%d]: mjd is required for %s", index, s.Op)
		}
	case OpUTCWithNanoOfDay:
		if s.NanoOfDay == nil {
			return fmt.Errorf("steps[%d]: nano_of_day is required for %s", index, s.Op)
		}
	case OpTAIWithNano:
		if s.Nano == nil {
			return fmt.Errorf("steps[%d]: nano is required for %s", index, s.Op)
		}
	}

	if s.Expect != "" && s.ExpectError != "" {
		return fmt.Errorf("steps[%d]: expect and expect_error are mutually exclusive", index)
	}
	if s.ExpectError != "" && !slices.Contains(errorCodes, timeerr.Code(s.ExpectError)) {
		return fmt.Errorf("steps[%d]: unknown error code %q", index, s.ExpectError)
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
