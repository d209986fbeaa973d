package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/callrecon/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		convey.Reset(clearConfigEnvVars)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New(ctx))
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CALLRECON_ADDR", ":8080")
			_ = os.Setenv("CALLRECON_DELTA", "5")
			_ = os.Setenv("CALLRECON_DELIMITER", ",")
			_ = os.Setenv("CALLRECON_QUEUE_SIZE", "128")
			_ = os.Setenv("CALLRECON_SOURCE_A_NAME", "billing")
			_ = os.Setenv("CALLRECON_RETENTION", "90m")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Delta, convey.ShouldEqual, 5)
				convey.So(cfg.DelimiterRune(), convey.ShouldEqual, ',')
				convey.So(cfg.QueueSize, convey.ShouldEqual, 128)
				convey.So(cfg.SourceAName, convey.ShouldEqual, "billing")
				convey.So(cfg.SourceBName, convey.ShouldEqual, "oper")
				convey.So(cfg.Retention, convey.ShouldEqual, 90*time.Minute)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			path := createTempConfigFile(t, `
# comments are fine
addr: ":9090"
delta: 10
log_format: json
worker_count: 24
shutdown_timeout: 3s
first_come: true
dedupe_size: 5000
`)
			_ = os.Setenv("CALLRECON_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Delta, convey.ShouldEqual, 10)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 24)
				convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 3*time.Second)
				convey.So(cfg.Delimiter, convey.ShouldEqual, ";")
				convey.So(cfg.FirstCome, convey.ShouldBeTrue)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 5000)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := createTempConfigFile(t, "addr: \":9090\"\nqueue_size: 300\nworker_count: 24\n")
			_ = os.Setenv("CALLRECON_CONFIG", path)
			_ = os.Setenv("CALLRECON_ADDR", ":8080")
			_ = os.Setenv("CALLRECON_WORKER_COUNT", "32")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 300)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv("CALLRECON_CONFIG", createTempConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("CALLRECON_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("CALLRECON_QUEUE_SIZE", "invalid")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a negative delta", func() {
			_ = os.Setenv("CALLRECON_DELTA", "-3")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "delta must not be negative")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("CALLRECON_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, config.EnvPrefix) {
			_ = os.Unsetenv(name)
		}
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "callrecon.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		panic(err)
	}
	return path
}
