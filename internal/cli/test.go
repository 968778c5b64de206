package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tscale/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern on the scenario name)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// String renders the result for text output.
func (r TestResult) String() string {
	if r.Total == 0 {
		return "No scenarios found."
	}
	var b strings.Builder
	for _, s := range r.Scenarios {
		if s.Pass {
			fmt.Fprintf(&b, "✓ %s\n", s.Name)
			continue
		}
		fmt.Fprintf(&b, "✗ %s\n", s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}
	fmt.Fprintf(&b, "\n%d passed, %d failed, %d total", r.Passed, r.Failed, r.Total)
	return b.String()
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run the YAML conformance scenarios in a directory.

Scenarios without their own table use the table selected by --table.
Scenarios run concurrently; results are listed in file name order.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, malformed scenarios, etc.)

Examples:
  tscale test ./testdata/scenarios
  tscale test ./testdata/scenarios --filter "leap_*"
  tscale test ./testdata/scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()

	if opts.Filter != "" {
		if _, err := filepath.Match(opts.Filter, ""); err != nil {
			return f.Fail(ErrCodeUsage, fmt.Errorf("invalid filter pattern: %w", err))
		}
	}

	scenarios, err := harness.LoadDir(scenariosDir)
	if err != nil {
		return f.Fail(ErrCodeNotFound, err)
	}
	scenarios = filterScenarios(scenarios, opts.Filter)
	f.VerboseLog("Running %d scenario(s) from %s", len(scenarios), scenariosDir)

	rules, _, err := opts.rules(ctx)
	if err != nil {
		return f.Fail(ErrCodeConfig, err)
	}

	runner := &harness.Runner{Rules: rules, Logger: opts.Logger}
	results, err := runner.RunAll(ctx, scenarios)
	if err != nil {
		return f.Fail(ErrCodeGeneric, err)
	}

	summary := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(results)),
		Total:     len(results),
	}
	for _, r := range results {
		summary.Scenarios = append(summary.Scenarios, ScenarioResult{
			Name:   r.Scenario,
			Pass:   r.Pass,
			Errors: r.Errors,
		})
		if r.Pass {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}

	if err := f.Success(summary); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	if summary.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", summary.Failed))
	}
	return nil
}

// filterScenarios keeps the scenarios whose name matches pattern.
// The pattern has already been checked by filepath.Match.
func filterScenarios(scenarios []*harness.Scenario, pattern string) []*harness.Scenario {
	if pattern == "" {
		return scenarios
	}
	var kept []*harness.Scenario
	for _, s := range scenarios {
		if ok, _ := filepath.Match(pattern, s.Name); ok {
			kept = append(kept, s)
		}
	}
	return kept
}
