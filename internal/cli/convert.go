package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/tscale/internal/convert"
	"github.com/roach88/tscale/internal/leapsec"
	"github.com/roach88/tscale/internal/tai"
	"github.com/roach88/tscale/internal/utc"
)

// taiSuffix marks TAI text; everything else is read as UTC.
const taiSuffix = "s(TAI)"

// printer groups digits in large numbers for text output.
var printer = message.NewPrinter(language.English)

// InstantView shows one instant on both scales.
type InstantView struct {
	UTC         string `json:"utc"`
	TAI         string `json:"tai"`
	TAIMinusUTC int64  `json:"tai_minus_utc"`
	LeapSecond  bool   `json:"leap_second"`
	// Standard is the UTC-SLS reading in seconds since 1970-01-01.
	Standard string `json:"standard"`

	standardSeconds int64
	standardNanos   int32
}

// String renders the view for text output.
func (v InstantView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "UTC       %s\n", v.UTC)
	fmt.Fprintf(&b, "TAI       %s\n", v.TAI)
	fmt.Fprintf(&b, "TAI-UTC   %d s\n", v.TAIMinusUTC)
	if v.LeapSecond {
		b.WriteString("leap      yes\n")
	}
	fmt.Fprintf(&b, "UTC-SLS   %s.%09d s since 1970", printer.Sprintf("%d", v.standardSeconds), v.standardNanos)
	return b.String()
}

func newInstantView(u utc.Instant, t tai.Instant, rules leapsec.Rules) (InstantView, error) {
	secs, nanos, err := u.ToStandard(rules)
	if err != nil {
		return InstantView{}, err
	}
	return InstantView{
		UTC:             u.String(),
		TAI:             t.String(),
		TAIMinusUTC:     rules.TAIOffset(u.ModifiedJulianDay()),
		LeapSecond:      u.IsLeapSecond(),
		Standard:        fmt.Sprintf("%d.%09d", secs, nanos),
		standardSeconds: secs,
		standardNanos:   nanos,
	}, nil
}

// parsedInstant is a command-line instant on the scale it was written in.
type parsedInstant struct {
	isTAI bool
	tai   tai.Instant
	utc   utc.Instant
}

func parseInstant(text string, rules leapsec.Rules) (parsedInstant, error) {
	if strings.HasSuffix(text, taiSuffix) {
		t, err := tai.Parse(text)
		if err != nil {
			return parsedInstant{}, err
		}
		return parsedInstant{isTAI: true, tai: t}, nil
	}
	u, err := utc.Parse(text, rules)
	if err != nil {
		return parsedInstant{}, err
	}
	return parsedInstant{utc: u}, nil
}

// view converts p to the other scale and builds its view.
func (p parsedInstant) view(rules leapsec.Rules) (InstantView, error) {
	var err error
	if p.isTAI {
		p.utc, err = convert.ToUTC(p.tai, rules)
	} else {
		p.tai, err = convert.ToTAI(p.utc, rules)
	}
	if err != nil {
		return InstantView{}, err
	}
	return newInstantView(p.utc, p.tai, rules)
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <instant>",
		Short: "Show an instant on both time scales",
		Long: `Show a UTC or TAI instant on both time scales.

Examples:
  tscale convert 2016-12-31T23:59:60Z
  tscale convert 1861920036.000000000s(TAI)
  tscale convert 2017-01-01T00:00:00Z --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			rules, _, err := rootOpts.rules(cmd.Context())
			if err != nil {
				return f.Fail(ErrCodeConfig, err)
			}
			p, err := parseInstant(args[0], rules)
			if err != nil {
				return f.Fail(ErrCodeGeneric, err)
			}
			view, err := p.view(rules)
			if err != nil {
				return f.Fail(ErrCodeGeneric, err)
			}
			return f.Success(view)
		},
	}
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	return newArithmeticCommand(rootOpts, "add", "Add elapsed seconds to an instant", false)
}

// NewSubCommand creates the sub command.
func NewSubCommand(rootOpts *RootOptions) *cobra.Command {
	return newArithmeticCommand(rootOpts, "sub", "Subtract elapsed seconds from an instant", true)
}

func newArithmeticCommand(rootOpts *RootOptions, name, short string, subtract bool) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <instant> <seconds> [nanos]",
		Short: short,
		Long: short + `.

The amount is elapsed SI time, so leap seconds crossed on the way are
counted like any other second. Use -- before negative amounts.

Examples:
  tscale ` + name + ` 2016-12-31T23:59:59Z 2
  tscale ` + name + ` 1861920036.000000000s(TAI) 0 500000000
  tscale ` + name + ` -- 2017-01-01T00:00:00Z -1`,
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			seconds, nanos, err := parseAmount(args[1:])
			if err != nil {
				return f.Fail(ErrCodeUsage, err)
			}
			rules, _, err := rootOpts.rules(cmd.Context())
			if err != nil {
				return f.Fail(ErrCodeConfig, err)
			}
			p, err := parseInstant(args[0], rules)
			if err != nil {
				return f.Fail(ErrCodeGeneric, err)
			}
			if p, err = p.shift(seconds, nanos, subtract, rules); err != nil {
				return f.Fail(ErrCodeGeneric, err)
			}
			view, err := p.view(rules)
			if err != nil {
				return f.Fail(ErrCodeGeneric, err)
			}
			return f.Success(view)
		},
	}
}

// shift moves p on its own scale.
func (p parsedInstant) shift(seconds, nanos int64, subtract bool, rules leapsec.Rules) (parsedInstant, error) {
	var err error
	switch {
	case p.isTAI && subtract:
		p.tai, err = p.tai.Minus(seconds, nanos)
	case p.isTAI:
		p.tai, err = p.tai.Plus(seconds, nanos)
	case subtract:
		p.utc, err = p.utc.Minus(seconds, nanos, rules)
	default:
		p.utc, err = p.utc.Plus(seconds, nanos, rules)
	}
	return p, err
}

func parseAmount(args []string) (seconds, nanos int64, err error) {
	seconds, err = strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid seconds %q: %w", args[0], err)
	}
	if len(args) > 1 {
		nanos, err = strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid nanos %q: %w", args[1], err)
		}
	}
	return seconds, nanos, nil
}
