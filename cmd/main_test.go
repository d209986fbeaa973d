package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"

	"github.com/okian/callrecon/internal/adapters/report"
	app "github.com/okian/callrecon/internal/app"
	"github.com/okian/callrecon/internal/client"
	"github.com/okian/callrecon/internal/config"
	"github.com/okian/callrecon/internal/domain/reconcile"
	"github.com/okian/callrecon/internal/testcalls"
	"github.com/okian/callrecon/pkg/logger"
)

func clearEnv() {
	for _, kv := range os.Environ() {
		if key, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(key, config.EnvPrefix) {
			_ = os.Unsetenv(key)
		}
	}
}

// execute runs the root command with args and returns its stdout.
func execute(ctx context.Context, args ...string) (string, error) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestCommands(t *testing.T) {
	convey.Convey("Given a generated pair of call logs", t, func() {
		clearEnv()
		_ = os.Setenv("CALLRECON_LOG_LEVEL", "error")
		convey.Reset(clearEnv)

		ctx := context.Background()
		dir := t.TempDir()
		out, err := execute(ctx, "generate", "--out-dir", dir, "--calls", "300", "--seed", "7")
		convey.So(err, convey.ShouldBeNil)

		pathA := filepath.Join(dir, testcalls.FileA)
		pathB := filepath.Join(dir, testcalls.FileB)
		convey.So(out, convey.ShouldContainSubstring, pathA)
		convey.So(out, convey.ShouldContainSubstring, pathB)

		convey.Convey("When they are reconciled with --json", func() {
			xlsx := filepath.Join(dir, "report.xlsx")
			out, err := execute(ctx, "run", "-a", pathA, "-b", pathB, "--json", "--out", xlsx)
			convey.So(err, convey.ShouldBeNil)

			var s report.Summary
			convey.So(json.Unmarshal([]byte(out), &s), convey.ShouldBeNil)

			convey.Convey("Then the summary uses the configured delta", func() {
				convey.So(s.Delta, convey.ShouldEqual, 3)
				convey.So(s.RecordsA, convey.ShouldBeGreaterThan, 0)
				convey.So(s.Matched, convey.ShouldBeGreaterThan, 0)
				convey.So(s.Matched, convey.ShouldBeLessThanOrEqualTo, s.RecordsB)
			})

			convey.Convey("Then the workbook was written", func() {
				f, err := excelize.OpenFile(xlsx)
				convey.So(err, convey.ShouldBeNil)
				defer func() { _ = f.Close() }()
				convey.So(f.GetSheetList(), convey.ShouldContain, report.SheetSummary)
			})
		})

		convey.Convey("When a wider delta is given", func() {
			narrow, err := execute(ctx, "run", "-a", pathA, "-b", pathB, "--json", "-d", "0")
			convey.So(err, convey.ShouldBeNil)
			wide, err := execute(ctx, "run", "-a", pathA, "-b", pathB, "--json", "-d", "5")
			convey.So(err, convey.ShouldBeNil)

			var sn, sw report.Summary
			convey.So(json.Unmarshal([]byte(narrow), &sn), convey.ShouldBeNil)
			convey.So(json.Unmarshal([]byte(wide), &sw), convey.ShouldBeNil)

			convey.Convey("Then no fewer calls match", func() {
				convey.So(sn.Delta, convey.ShouldEqual, 0)
				convey.So(sw.Delta, convey.ShouldEqual, 5)
				convey.So(sw.Matched, convey.ShouldBeGreaterThanOrEqualTo, sn.Matched)
			})
		})

		convey.Convey("When the configured delta is changed through the environment", func() {
			_ = os.Setenv("CALLRECON_DELTA", "6")
			out, err := execute(ctx, "run", "-a", pathA, "-b", pathB, "--json")
			convey.So(err, convey.ShouldBeNil)

			var s report.Summary
			convey.So(json.Unmarshal([]byte(out), &s), convey.ShouldBeNil)

			convey.Convey("Then a run without --delta uses it", func() {
				convey.So(s.Delta, convey.ShouldEqual, 6)
			})
		})

		convey.Convey("When a negative delta is given", func() {
			_, err := execute(ctx, "run", "-a", pathA, "-b", pathB, "--json", "--delta", "-5")

			convey.Convey("Then the run is rejected", func() {
				convey.So(errors.Is(err, reconcile.ErrInvalidDelta), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When they are submitted to a server and verified", func() {
			cfg := config.New(ctx)
			svc := app.New(app.WithWorkerCount(1))
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			srv := httptest.NewServer(newHandler(ctx, svc, cfg))
			defer func() {
				srv.Close()
				_ = svc.Stop(context.Background())
			}()

			out, err := execute(ctx, "submit", "--url", srv.URL, "-a", pathA, "-b", pathB, "--verify")

			convey.Convey("Then the service agrees with a local run", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "kms")
			})

			convey.Convey("And a negative delta is rejected by the server", func() {
				_, err := execute(ctx, "submit", "--url", srv.URL, "-a", pathA, "-b", pathB, "--delta", "-5")
				convey.So(client.IsStatus(err, http.StatusBadRequest), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a source file is missing", func() {
			_, err := execute(ctx, "run", "-a", filepath.Join(dir, "missing.csv"), "-b", pathB)

			convey.Convey("Then the command fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "open source a")
			})
		})
	})
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given the composed handler", t, func() {
		if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
			t.Fatal(err)
		}
		ctx := context.Background()
		svc := app.New(app.WithWorkerCount(1))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(context.Background()) }()
		h := newHandler(ctx, svc, config.New(ctx))

		for _, path := range []string{"/", "/healthz", "/stats", "/api-docs", "/openapi.yaml", "/reconciliations"} {
			req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		}

		convey.Convey("Then unknown runs are not found", func() {
			req := httptest.NewRequest(http.MethodGet, "/reconciliations/nope", http.NoBody)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestServiceOptions(t *testing.T) {
	convey.Convey("Given a loaded configuration", t, func() {
		cfg := config.New(context.Background())
		cfg.Delta = 7
		cfg.SourceAName = "left"
		c := &cli{cfg: cfg, log: logger.Nop()}

		svc := app.New(c.serviceOptions()...)

		convey.Convey("Then the service takes its defaults from it", func() {
			convey.So(svc.DefaultDelta(), convey.ShouldEqual, 7)
			convey.So(svc.Names().A, convey.ShouldEqual, "left")
			convey.So(svc.Names().B, convey.ShouldEqual, "oper")
		})
	})
}

func TestLocalURL(t *testing.T) {
	convey.Convey("Given listen addresses", t, func() {
		convey.So(localURL(":9080"), convey.ShouldEqual, "http://localhost:9080")
		convey.So(localURL("10.0.0.1:80"), convey.ShouldEqual, "http://10.0.0.1:80")
	})
}
