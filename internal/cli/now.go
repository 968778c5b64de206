package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/tscale/internal/clock"
	"github.com/roach88/tscale/internal/convert"
	"github.com/roach88/tscale/internal/utc"
)

// NowOptions holds flags for the now command.
type NowOptions struct {
	*RootOptions
	NTP bool // correct the local clock against --ntp-server
}

// NewNowCommand creates the now command.
func NewNowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "now",
		Short: "Show the current instant on both time scales",
		Long: `Show the current instant on both time scales.

The local clock is read as UTC-SLS, so during a leap second it runs
slightly slow instead of repeating a second. With --ntp the local clock
is first corrected by the offset measured against --ntp-server.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNow(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.NTP, "ntp", false, "query the NTP server instead of trusting the local clock")

	return cmd
}

func runNow(opts *NowOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()

	rules, _, err := opts.rules(ctx)
	if err != nil {
		return f.Fail(ErrCodeConfig, err)
	}

	var src clock.Source = opts.Clock
	if opts.NTP {
		ntp := clock.NewNTP(opts.Config.NTPServer)
		src = ntp
		defer func() {
			opts.Logger.Debug("ntp offset applied", "server", ntp.Server, "offset", ntp.Offset())
		}()
	}

	now, err := src.Now(ctx)
	if err != nil {
		return f.Fail(ErrCodeGeneric, err)
	}
	u, err := utc.OfTime(now, rules)
	if err != nil {
		return f.Fail(ErrCodeGeneric, err)
	}
	t, err := convert.ToTAI(u, rules)
	if err != nil {
		return f.Fail(ErrCodeGeneric, err)
	}
	view, err := newInstantView(u, t, rules)
	if err != nil {
		return f.Fail(ErrCodeGeneric, err)
	}
	return f.Success(view)
}
