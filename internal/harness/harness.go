package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/tscale/internal/leapsec"
	"github.com/roach88/tscale/internal/timeerr"
)

// Runner executes scenarios.
// The zero value uses the built-in table and discards logs.
type Runner struct {
	// Rules is the table for scenarios that do not carry their own.
	Rules leapsec.Rules

	// Logger receives a debug record per executed step.
	Logger *slog.Logger

	// Parallelism bounds RunAll. Zero means GOMAXPROCS.
	Parallelism int
}

// Run executes a scenario with the default runner.
func Run(scenario *Scenario) (*Result, error) {
	return (&Runner{}).Run(context.Background(), scenario)
}

// RunAll executes scenarios concurrently with the default runner.
func RunAll(ctx context.Context, scenarios []*Scenario) ([]*Result, error) {
	return (&Runner{}).RunAll(ctx, scenarios)
}

// Run executes a scenario and returns the result.
//
// Mismatched outputs and failed assertions are reported in the result.
// An error is returned only when the scenario cannot be executed at all:
// an invalid table or step, or a cancelled context.
func (r *Runner) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	rules, err := r.rulesFor(scenario)
	if err != nil {
		return nil, err
	}
	logger := r.logger().With("scenario", scenario.Name)

	result := NewResult(scenario.Name)
	for i := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		step := &scenario.Steps[i]
		if err := validateStep(i, step); err != nil {
			return nil, err
		}

		out, opErr := operations[step.Op](step, rules)
		event := TraceEvent{Step: i, Op: step.Op, Input: step.Input, Output: out}
		if opErr != nil {
			event.Error = string(timeerr.CodeOf(opErr))
		}
		result.AddTrace(event)
		logger.Debug("step", "index", i, "op", step.Op, "output", out, "error", event.Error)

		checkStep(i, step, out, opErr, result)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// RunAll executes scenarios concurrently and returns their results in
// input order. Instants are values and tables are immutable, so scenarios
// share nothing but the read-only default table.
func (r *Runner) RunAll(ctx context.Context, scenarios []*Scenario) ([]*Result, error) {
	results := make([]*Result, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism())
	for i, scenario := range scenarios {
		i, scenario := i, scenario
		g.Go(func() error {
			result, err := r.Run(ctx, scenario)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", scenario.Name, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) rulesFor(scenario *Scenario) (leapsec.Rules, error) {
	if scenario.Table != nil {
		t, err := scenario.Table.Table("harness.Run")
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		return t, nil
	}
	if r.Rules != nil {
		return r.Rules, nil
	}
	return leapsec.Default(), nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (r *Runner) parallelism() int {
	if r.Parallelism > 0 {
		return r.Parallelism
	}
	return runtime.GOMAXPROCS(0)
}

// checkStep compares a step's outcome with its expectation.
// A step without expect or expect_error must simply succeed.
func checkStep(index int, step *Step, out string, err error, result *Result) {
	switch {
	case step.ExpectError != "":
		if err == nil {
			result.AddError(fmt.Sprintf("step %d (%s): expected error %s, got %q",
				index, step.Op, step.ExpectError, out))
			return
		}
		if got := timeerr.CodeOf(err); string(got) != step.ExpectError {
			result.AddError(fmt.Sprintf("step %d (%s): expected error %s, got %s: %v",
				index, step.Op, step.ExpectError, got, err))
		}
	case err != nil:
		result.AddError(fmt.Sprintf("step %d (%s): unexpected error: %v", index, step.Op, err))
	case step.Expect != "" && out != step.Expect:
		result.AddError(fmt.Sprintf("step %d (%s): expected %q, got %q",
			index, step.Op, step.Expect, out))
	}
}
