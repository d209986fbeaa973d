package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/callrecon/internal/adapters/report"
	app "github.com/okian/callrecon/internal/app"
	"github.com/okian/callrecon/pkg/logger"
)

func newRunCmd(c *cli) *cobra.Command {
	var (
		sourceA, sourceB, out string
		delta                 int
		asJSON                bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile two files and print a summary",
		Long: `Reconcile two call log files synchronously.

Examples:
  # Default tolerance from configuration
  callrecon run --source-a kms.csv --source-b oper.csv

  # Wider tolerance and a workbook with every row
  callrecon run --source-a kms.csv --source-b oper.csv --delta 5 --out report.xlsx`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("delta") {
				delta = c.cfg.Delta
			}

			fa, err := os.Open(sourceA)
			if err != nil {
				return fmt.Errorf("open source a: %w", err)
			}
			defer func() { _ = fa.Close() }()
			fb, err := os.Open(sourceB)
			if err != nil {
				return fmt.Errorf("open source b: %w", err)
			}
			defer func() { _ = fb.Close() }()

			start := time.Now()
			res, err := app.New(c.serviceOptions()...).Execute(ctx, fa, fb, delta)
			if err != nil {
				return err
			}
			c.log.Info(ctx, "reconciliation finished",
				logger.Duration("took", time.Since(start)),
				logger.Int("records_a", res.Summary.RecordsA),
				logger.Int("records_b", res.Summary.RecordsB),
				logger.Int("duplicates_a", res.StatsA.Duplicates),
				logger.Int("duplicates_b", res.StatsB.Duplicates),
				logger.Int("rejected_a", res.StatsA.Rejected),
				logger.Int("rejected_b", res.StatsB.Rejected),
			)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(res.Summary); err != nil {
					return fmt.Errorf("write summary: %w", err)
				}
			} else if err := report.PrintSummary(cmd.OutOrStdout(), res.Summary, c.names()); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}

			if out == "" {
				return nil
			}
			return writeWorkbook(out, func(f *os.File) error {
				return report.WriteWorkbook(f, res.Result, res.Summary, c.names())
			})
		},
	}

	cmd.Flags().StringVarP(&sourceA, "source-a", "a", "", "Call log of source A")
	cmd.Flags().StringVarP(&sourceB, "source-b", "b", "", "Call log of source B")
	cmd.Flags().IntVarP(&delta, "delta", "d", 0, "Tolerance in seconds (default from configuration)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the report workbook to this .xlsx file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	_ = cmd.MarkFlagRequired("source-a")
	_ = cmd.MarkFlagRequired("source-b")
	return cmd
}

// writeWorkbook creates path and lets write fill it.
func writeWorkbook(path string, write func(*os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
