package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tscale/internal/civil"
	"github.com/roach88/tscale/internal/leapsec"
	"github.com/roach88/tscale/internal/store"
	"github.com/roach88/tscale/internal/utc"
)

// TableView describes a leap-second table.
type TableView struct {
	Source      string      `json:"source"`
	BaseOffset  int64       `json:"base_offset"`
	Digest      string      `json:"digest"`
	LeapSeconds []EntryView `json:"leap_seconds"`
}

// EntryView is one leap second and the offset in force after it.
type EntryView struct {
	Date        string `json:"date"`
	MJD         int64  `json:"mjd"`
	TAIMinusUTC int64  `json:"tai_minus_utc_after"`
}

func newTableView(source string, t *leapsec.Table) TableView {
	view := TableView{
		Source:      source,
		BaseOffset:  t.BaseOffset(),
		Digest:      t.Digest(),
		LeapSeconds: make([]EntryView, 0, t.Len()),
	}
	for _, e := range t.Entries() {
		view.LeapSeconds = append(view.LeapSeconds, EntryView{
			Date:        civil.FromMJD(e.MJD).String(),
			MJD:         e.MJD,
			TAIMinusUTC: t.TAIOffset(e.MJD) + int64(e.Adjustment),
		})
	}
	return view
}

// String renders the view for text output.
func (v TableView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "source    %s\n", v.Source)
	fmt.Fprintf(&b, "digest    %s\n", v.Digest)
	fmt.Fprintf(&b, "base      TAI-UTC %d s\n", v.BaseOffset)
	fmt.Fprintf(&b, "entries   %d\n", len(v.LeapSeconds))
	for _, e := range v.LeapSeconds {
		fmt.Fprintf(&b, "  %s 23:59:60  MJD %s  TAI-UTC %d s\n", e.Date, printer.Sprintf("%d", e.MJD), e.TAIMinusUTC)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// ValidateView reports a table file that loaded cleanly.
type ValidateView struct {
	Path    string `json:"path"`
	Valid   bool   `json:"valid"`
	Entries int    `json:"entries"`
	Digest  string `json:"digest"`
}

// String renders the view for text output.
func (v ValidateView) String() string {
	return fmt.Sprintf("✓ %s: %d leap seconds, digest %s", v.Path, v.Entries, v.Digest)
}

// RevisionView is a stored table revision.
type RevisionView store.Revision

// String renders the view for text output.
func (v RevisionView) String() string {
	return fmt.Sprintf("%d  %s  %s  %d leap seconds  imported %s", v.Seq, v.ID, v.Source, v.Entries, v.ImportedAt)
}

// RevisionList is the output of table revisions.
type RevisionList []RevisionView

// String renders the list for text output.
func (l RevisionList) String() string {
	if len(l) == 0 {
		return "No stored tables."
	}
	lines := make([]string, len(l))
	for i, r := range l {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}

// NewTableCommand creates the table command group.
func NewTableCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Inspect, validate and store leap-second tables",
		Long: `Inspect, validate and store leap-second tables.

Table files may be YAML (.yaml, .yml), CUE (.cue) or the IERS
leap-seconds.list format (.list). Imported tables are kept in the
--db database and used when --table store is given.`,
	}

	cmd.AddCommand(newTableShowCommand(rootOpts))
	cmd.AddCommand(newTableValidateCommand(rootOpts))
	cmd.AddCommand(newTableImportCommand(rootOpts))
	cmd.AddCommand(newTableExportCommand(rootOpts))
	cmd.AddCommand(newTableRevisionsCommand(rootOpts))

	return cmd
}

func newTableShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Show the table selected by --table",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			table, source, err := rootOpts.rules(cmd.Context())
			if err != nil {
				return f.Fail(ErrCodeConfig, err)
			}
			return f.Success(newTableView(source, table))
		},
	}
}

func newTableValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "validate <file>",
		Short:         "Check that a table file loads",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			table, err := loadTableFile(args[0])
			if err != nil {
				return f.Fail(ErrCodeNotFound, err)
			}
			f.VerboseLog("Loaded %d leap seconds from %s", table.Len(), args[0])
			return f.Success(ValidateView{
				Path:    args[0],
				Valid:   true,
				Entries: table.Len(),
				Digest:  table.Digest(),
			})
		},
	}
}

func newTableImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Store a table file as a new revision",
		Long: `Store a table file in the --db database as a new revision.

Importing a table identical to a stored one returns the existing revision.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			ctx := cmd.Context()

			table, err := loadTableFile(args[0])
			if err != nil {
				return f.Fail(ErrCodeNotFound, err)
			}

			now, err := rootOpts.Clock.Now(ctx)
			if err != nil {
				return f.Fail(ErrCodeGeneric, err)
			}
			importedAt, err := utc.OfTime(now, table)
			if err != nil {
				return f.Fail(ErrCodeGeneric, err)
			}

			st, err := store.Open(rootOpts.Config.DB)
			if err != nil {
				return f.Fail(ErrCodeStore, err)
			}
			defer st.Close()

			rev, err := st.SaveTable(ctx, table, args[0], importedAt)
			if err != nil {
				return f.Fail(ErrCodeStore, err)
			}
			rootOpts.Logger.Info("table imported", "revision", rev.ID, "seq", rev.Seq, "digest", rev.Digest)
			return f.Success(RevisionView(rev))
		},
	}
}

func newTableExportCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the table selected by --table as YAML",
		Long: `Write the table selected by --table in the YAML table format.

With --format json the table document is wrapped in the usual response.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			table, _, err := rootOpts.rules(cmd.Context())
			if err != nil {
				return f.Fail(ErrCodeConfig, err)
			}

			if output == "" {
				if f.Format == "json" {
					return f.Success(table.Document())
				}
				if err := table.WriteYAML(cmd.OutOrStdout()); err != nil {
					return f.Fail(ErrCodeGeneric, err)
				}
				return nil
			}

			file, err := os.Create(output)
			if err != nil {
				return f.Fail(ErrCodeNotFound, err)
			}
			if err := table.WriteYAML(file); err != nil {
				file.Close()
				return f.Fail(ErrCodeGeneric, err)
			}
			if err := file.Close(); err != nil {
				return f.Fail(ErrCodeGeneric, err)
			}
			return f.Success(ValidateView{Path: output, Valid: true, Entries: table.Len(), Digest: table.Digest()})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")

	return cmd
}

func newTableRevisionsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "revisions",
		Short:         "List tables stored in --db",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			st, err := store.Open(rootOpts.Config.DB)
			if err != nil {
				return f.Fail(ErrCodeStore, err)
			}
			defer st.Close()

			revs, err := st.ListRevisions(cmd.Context())
			if err != nil {
				return f.Fail(ErrCodeStore, err)
			}
			list := make(RevisionList, len(revs))
			for i, r := range revs {
				list[i] = RevisionView(r)
			}
			return f.Success(list)
		},
	}
}

// loadTableFile reads a table file after checking that it exists, so a
// missing file is reported as such rather than as a format error.
func loadTableFile(path string) (*leapsec.Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("table file: %w", err)
	}
	return leapsec.LoadFile(path)
}
