package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okian/callrecon/internal/adapters/report"
	app "github.com/okian/callrecon/internal/app"
	"github.com/okian/callrecon/internal/config"
	"github.com/okian/callrecon/pkg/logger"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// cli holds state shared by all subcommands once the root pre-run loaded it.
type cli struct {
	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "callrecon",
		Short: "Reconcile two call logs recorded for the same calls",
		Long: `Reconcile two independently recorded logs of the same telephone calls.

Records are joined on call date and receiving number. Within a key, calls
whose time of day and duration both differ by at most delta seconds are
matched one to one; leftovers are reported as out-of-delta pairs or as
present on one side only.

Configuration is read from the optional YAML file named by CALLRECON_CONFIG
and from CALLRECON_* environment variables. A .env file in the working
directory is loaded first.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load(cmd.Context())
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = logger.Sync()
		},
	}

	root.AddCommand(
		newRunCmd(c),
		newServeCmd(c),
		newGenerateCmd(c),
		newSubmitCmd(c),
	)
	return root
}

// load reads .env, the configuration, and initializes logging.
func (c *cli) load(ctx context.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	c.log = logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		c.log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	c.cfg = cfg
	return nil
}

func (c *cli) names() report.Names {
	return report.Names{A: c.cfg.SourceAName, B: c.cfg.SourceBName}
}

// serviceOptions maps the configuration onto the service.
func (c *cli) serviceOptions() []app.Option {
	return []app.Option{
		app.WithLogger(c.log.Named("service")),
		app.WithWorkerCount(c.cfg.WorkerCount),
		app.WithQueueSize(c.cfg.QueueSize),
		app.WithDedupeSize(c.cfg.DedupeSize),
		app.WithDelta(c.cfg.Delta),
		app.WithDelimiter(c.cfg.DelimiterRune()),
		app.WithNames(c.names()),
		app.WithParallelism(c.cfg.Parallelism),
		app.WithFirstCome(c.cfg.FirstCome),
		app.WithRetention(c.cfg.Retention),
	}
}
