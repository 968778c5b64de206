// Package harness runs conformance scenarios against the time-scale
// packages.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: leap_second_1972
//	description: "Counting across the first leap second"
//	table:                      # optional, defaults to the runner's table
//	  base_offset: 10
//	  leap_seconds:
//	    - {mjd: 41498, adjustment: 1}
//	steps:
//	  - op: utc.parse
//	    input: "1972-06-30T23:59:60Z"
//	    expect: "1972-06-30T23:59:60Z"
//	  - op: utc.plus
//	    input: "1972-06-30T23:59:59Z"
//	    seconds: 2
//	    expect: "1972-07-01T00:00:00Z"
//	  - op: tai.parse
//	    input: "12.5s(TAI)"
//	    expect_error: PARSE
//	assertions:
//	  - type: trace_count
//	    op: utc.plus
//	    count: 1
//
// Each step names one operation, its inputs, and either the expected text
// output or the expected error code. Instants are given and compared in
// their canonical text forms.
//
// # Operations
//
//   - tai.parse, tai.plus, tai.minus, tai.with_nano
//   - utc.of, utc.parse, utc.plus, utc.minus, utc.with_mjd, utc.with_nano_of_day
//   - convert.to_utc, convert.to_tai
//
// # Assertion Types
//
//   - trace_contains: an operation appears in the trace, optionally with a given output
//   - trace_order: operations appear in the given order
//   - trace_count: an operation appears exactly N times
//
// # Usage
//
//	scenarios, err := harness.LoadDir("testdata/scenarios")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	results, err := harness.RunAll(ctx, scenarios)
//
// Scenarios share no mutable state, so RunAll executes them concurrently.
package harness
