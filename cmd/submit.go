package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/callrecon/internal/adapters/mq/queue"
	"github.com/okian/callrecon/internal/adapters/report"
	app "github.com/okian/callrecon/internal/app"
	"github.com/okian/callrecon/internal/client"
	"github.com/okian/callrecon/pkg/logger"
)

func newSubmitCmd(c *cli) *cobra.Command {
	var (
		url, sourceA, sourceB, out string
		delta                      int
		noWait, verify             bool
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit two files to a running service",
		Long: `Upload two call logs to a running service and wait for the run.

With --verify the files are also reconciled locally and the command fails
when the service reports a different summary.

Examples:
  callrecon submit --url http://localhost:9080 -a kms.csv -b oper.csv --out report.xlsx`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if url == "" {
				url = localURL(c.cfg.Addr)
			}

			a, err := readUpload(sourceA)
			if err != nil {
				return err
			}
			b, err := readUpload(sourceB)
			if err != nil {
				return err
			}

			cl := client.New(url)
			var run client.Run
			if cmd.Flags().Changed("delta") {
				run, err = cl.Submit(ctx, a, b, delta)
			} else {
				run, err = cl.SubmitDefault(ctx, a, b)
			}
			if err != nil {
				return fmt.Errorf("submit: %w", err)
			}
			c.log.Info(ctx, "run submitted", logger.String("run_id", run.ID), logger.Int("delta", run.Delta))
			if noWait {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), run.ID)
				return err
			}

			final, err := cl.Wait(ctx, run.ID)
			if err != nil {
				return err
			}
			if err := report.PrintSummary(cmd.OutOrStdout(), *final.Summary, c.names()); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}

			if verify {
				if err := verifyRun(ctx, c, a, b, final); err != nil {
					return err
				}
				c.log.Info(ctx, "service summary verified", logger.String("run_id", run.ID))
			}

			if out == "" {
				return nil
			}
			return writeWorkbook(out, func(f *os.File) error {
				return cl.Report(ctx, run.ID, f)
			})
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Base URL of the service (default from the configured addr)")
	cmd.Flags().StringVarP(&sourceA, "source-a", "a", "", "Call log of source A")
	cmd.Flags().StringVarP(&sourceB, "source-b", "b", "", "Call log of source B")
	cmd.Flags().IntVarP(&delta, "delta", "d", 0, "Tolerance in seconds (default from the service)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Download the report workbook to this .xlsx file")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Print the run id and return without waiting")
	cmd.Flags().BoolVar(&verify, "verify", false, "Reconcile locally and compare summaries")
	_ = cmd.MarkFlagRequired("source-a")
	_ = cmd.MarkFlagRequired("source-b")
	return cmd
}

func readUpload(path string) (queue.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return queue.Upload{}, fmt.Errorf("read %s: %w", path, err)
	}
	return queue.Upload{Name: path, Data: data}, nil
}

// localURL turns a listen address like ":9080" into a URL on localhost.
func localURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

// verifyRun reconciles the uploads locally and compares the summaries.
func verifyRun(ctx context.Context, c *cli, a, b queue.Upload, run client.Run) error {
	local, err := app.New(c.serviceOptions()...).Execute(ctx, bytes.NewReader(a.Data), bytes.NewReader(b.Data), run.Delta)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if local.Summary != *run.Summary {
		return fmt.Errorf("verify: service summary %+v differs from local %+v", *run.Summary, local.Summary)
	}
	return nil
}
