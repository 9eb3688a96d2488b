package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/beadinspect/internal/core"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		files      []string
		resultsDir string
		limit      int
		noReport   bool
	)

	cmd := &cobra.Command{
		Use:   "validate [directory]",
		Short: "Validate the BEAD CSV files in a directory",
		Long: `Validate the BEAD CSV files in a directory.

Each expected format is looked up as "<format>.csv" in the directory. The issue
log is written to <results-dir>/logs and the HTML report to <results-dir>/reports.
Issues found in the data never change the exit status; only run errors do.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.cfg.Inspector
			if len(args) == 1 {
				opts.DataDir = args[0]
			}
			if cmd.Flags().Changed("files") {
				opts.Formats = files
			}
			if cmd.Flags().Changed("results-dir") {
				opts.ResultsDir = resultsDir
			}
			if cmd.Flags().Changed("single-error-log-limit") {
				opts.SingleErrorLogLimit = limit
			}
			if noReport {
				opts.WriteReport = false
			}
			if opts.DataDir == "" {
				return fmt.Errorf("%w: pass a directory or set BEAD_DATA_DIR", core.ErrInvalidDataDir)
			}

			ctx := cmd.Context()
			out, err := openOutputs(ctx, a.cfg, opts.WriteReport)
			if err != nil {
				return err
			}
			defer out.Close()

			run, err := core.NewInspector(out.sinks...).Inspect(ctx, core.Options{
				DataDir:             opts.DataDir,
				Formats:             opts.Formats,
				ResultsDir:          opts.ResultsDir,
				SingleErrorLogLimit: opts.SingleErrorLogLimit,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Number of issues (or types of issues) found: %d\n", len(run.Issues))
			names := make([]string, 0, len(run.Outputs))
			for name := range run.Outputs {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(w, "%s: %s\n", name, run.Outputs[name])
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&files, "files", nil, "Formats to check, without .csv (default: all)")
	cmd.Flags().StringVar(&resultsDir, "results-dir", "", "Directory for logs/ and reports/ (default: the data directory)")
	cmd.Flags().IntVarP(&limit, "single-error-log-limit", "s", core.DefaultSingleErrorLogLimit, "Max issue-causing records to log per issue")
	cmd.Flags().BoolVar(&noReport, "no-report", false, "Skip the HTML report")
	return cmd
}
