package client_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/okian/callrecon/internal/adapters/http/api"
	"github.com/okian/callrecon/internal/adapters/mq/queue"
	service "github.com/okian/callrecon/internal/app"
	"github.com/okian/callrecon/internal/client"
	"github.com/okian/callrecon/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const header = "to_char;to_char;phoneb;to_char;?column?\n"

var (
	logA = queue.Upload{Name: "a.csv", Data: []byte(header +
		"2024-03-01;10:00:00;100;00:01:00;1\n" +
		"2024-03-01;11:00:00;200;00:02:00;2\n")}
	logB = queue.Upload{Name: "b.csv", Data: []byte(header +
		"2024-03-01;10:00:02;100;00:01:01;1\n")}
)

func TestClient(t *testing.T) {
	Convey("Given a running reconciliation server", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		svc := service.New(service.WithWorkerCount(1))
		So(svc.Start(ctx), ShouldBeNil)
		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)

		c := client.New(srv.URL+"/", client.WithPollInterval(5*time.Millisecond))

		Convey("When a run is submitted and awaited", func() {
			run, err := c.Submit(ctx, logA, logB, 3)
			So(err, ShouldBeNil)
			So(run.Status, ShouldEqual, "queued")

			final, err := c.Wait(ctx, run.ID)

			Convey("Then it succeeded with its rows", func() {
				So(err, ShouldBeNil)
				So(final.Finished(), ShouldBeTrue)
				So(final.Summary.Matched, ShouldEqual, 1)
				So(final.Summary.SoleA, ShouldEqual, 1)
				So(final.Result, ShouldNotBeNil)
				So(len(final.Result.Matched), ShouldEqual, 1)
				So(final.StatsA.Accepted, ShouldEqual, 2)
			})

			Convey("Then its report can be downloaded", func() {
				var buf bytes.Buffer
				So(c.Report(ctx, run.ID, &buf), ShouldBeNil)
				So(bytes.HasPrefix(buf.Bytes(), []byte("PK")), ShouldBeTrue)
			})
		})

		Convey("When the server default delta is used", func() {
			run, err := c.SubmitDefault(ctx, logA, logB)

			Convey("Then the run carries it", func() {
				So(err, ShouldBeNil)
				So(run.Delta, ShouldEqual, svc.DefaultDelta())
			})
		})

		Convey("When a negative delta is submitted", func() {
			_, err := c.Submit(ctx, logA, logB, -5)

			Convey("Then the server rejects it", func() {
				var apiErr *client.APIError
				So(errors.As(err, &apiErr), ShouldBeTrue)
				So(apiErr.Status, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When a run fails", func() {
			run, err := c.Submit(ctx, queue.Upload{Name: "empty.csv"}, logB, 3)
			So(err, ShouldBeNil)

			final, err := c.Wait(ctx, run.ID)

			Convey("Then Wait reports the failure", func() {
				So(errors.Is(err, client.ErrRunFailed), ShouldBeTrue)
				So(final.Status, ShouldEqual, "failed")
				So(final.Error, ShouldNotBeEmpty)
			})

			Convey("Then its report is not ready", func() {
				err := c.Report(ctx, run.ID, io.Discard)
				So(client.IsStatus(err, http.StatusConflict), ShouldBeTrue)
			})
		})

		Convey("When an unknown run is fetched", func() {
			_, err := c.Get(ctx, "missing")

			Convey("Then the API error is decoded", func() {
				var apiErr *client.APIError
				So(errors.As(err, &apiErr), ShouldBeTrue)
				So(apiErr.Status, ShouldEqual, http.StatusNotFound)
				So(apiErr.Code, ShouldEqual, "not_found")
			})
		})

		Reset(func() {
			srv.Close()
			_ = svc.Stop(context.Background())
		})
	})

	Convey("Given a server that answers with plain text", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := client.New(srv.URL).Get(context.Background(), "x")

		Convey("Then the error is an unexpected response", func() {
			So(errors.Is(err, client.ErrResponse), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "502")
		})
	})
}
