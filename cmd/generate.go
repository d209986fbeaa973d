package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/callrecon/internal/testcalls"
	"github.com/okian/callrecon/pkg/logger"
)

func newGenerateCmd(c *cli) *cobra.Command {
	gen := testcalls.DefaultConfig()
	var (
		outDir string
		start  string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic pair of call logs",
		Long: `Write two call logs in the database export layout. Source B copies
most calls of source A with a small clock drift, drifts some beyond any
sensible tolerance, drops others and adds calls of its own.

Examples:
  callrecon generate --out-dir ./data --calls 50000 --seed 42`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := time.Parse(time.DateOnly, start)
			if err != nil {
				return fmt.Errorf("invalid --start %q: %w", start, err)
			}
			gen.Start = day

			ds := testcalls.Generate(gen)
			pathA, pathB, err := testcalls.WriteFiles(outDir, ds, c.cfg.DelimiterRune())
			if err != nil {
				return err
			}

			c.log.Info(cmd.Context(), "generated call logs",
				logger.String("source_a", pathA),
				logger.Int("rows_a", len(ds.A)),
				logger.String("source_b", pathB),
				logger.Int("rows_b", len(ds.B)),
			)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", pathA, pathB)
			return err
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", ".", "Directory to write the files into")
	cmd.Flags().IntVar(&gen.Calls, "calls", gen.Calls, "Calls in source A")
	cmd.Flags().Uint64Var(&gen.Seed, "seed", gen.Seed, "Random seed")
	cmd.Flags().StringVar(&start, "start", gen.Start.Format(time.DateOnly), "First call date")
	cmd.Flags().IntVar(&gen.Days, "days", gen.Days, "Days the calls are spread over")
	cmd.Flags().IntVar(&gen.Numbers, "numbers", gen.Numbers, "Size of the receiving number pool")
	cmd.Flags().IntVar(&gen.Jitter, "jitter", gen.Jitter, "Max drift in seconds of a faithful copy")
	cmd.Flags().Float64Var(&gen.DriftRate, "drift-rate", gen.DriftRate, "Share of copies drifted beyond the jitter")
	cmd.Flags().Float64Var(&gen.DropRate, "drop-rate", gen.DropRate, "Share of calls missing from source B")
	cmd.Flags().Float64Var(&gen.ExtraRate, "extra-rate", gen.ExtraRate, "Extra source B calls, as a share of --calls")
	cmd.Flags().Float64Var(&gen.DuplicateRate, "duplicate-rate", gen.DuplicateRate, "Share of exact duplicate rows")
	cmd.Flags().Float64Var(&gen.MalformedRate, "malformed-rate", gen.MalformedRate, "Share of rows with an unknown time")
	return cmd
}
