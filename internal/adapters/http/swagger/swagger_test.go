package swagger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a swagger handler", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()

		convey.Convey("When registering the swagger handler", func() {
			Register(ctx, mux)

			convey.Convey("Then it should handle /openapi.yaml route", func() {
				req := httptest.NewRequest("GET", "/openapi.yaml", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "/reconciliations/{id}/report.xlsx")
			})

			convey.Convey("And it should list the operations on /api-docs", func() {
				req := httptest.NewRequest("GET", "/api-docs", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
				body := w.Body.String()
				convey.So(body, convey.ShouldContainSubstring, "<title>Call reconciliation API</title>")
				convey.So(body, convey.ShouldContainSubstring, "Submit two call logs for reconciliation")
				convey.So(body, convey.ShouldContainSubstring, `href="/openapi.yaml"`)
			})
		})
	})
}

func TestOperations(t *testing.T) {
	convey.Convey("Given the embedded document", t, func() {
		title, ops, err := Operations(OpenAPI)

		convey.Convey("Then every route is listed in path and method order", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(title, convey.ShouldEqual, "Call reconciliation API")
			convey.So(len(ops), convey.ShouldEqual, 6)
			convey.So(ops[0], convey.ShouldResemble, Operation{
				Method: "GET", Path: "/healthz", Summary: "Prometheus metrics",
			})
			convey.So(ops[1].Path, convey.ShouldEqual, "/reconciliations")
			convey.So(ops[1].Method, convey.ShouldEqual, "GET")
			convey.So(ops[2].Method, convey.ShouldEqual, "POST")
		})
	})

	convey.Convey("Given a document without paths", t, func() {
		_, _, err := Operations([]byte("openapi: 3.0.3\n"))

		convey.Convey("Then it is invalid", func() {
			convey.So(errors.Is(err, ErrInvalid), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a document that is not YAML", t, func() {
		_, _, err := Operations([]byte("paths: [unclosed"))

		convey.Convey("Then it is invalid", func() {
			convey.So(errors.Is(err, ErrInvalid), convey.ShouldBeTrue)
		})
	})
}

func TestSwaggerHandlerWithNilMux(t *testing.T) {
	convey.Convey("Given a nil mux", t, func() {
		ctx := context.Background()

		convey.Convey("When registering the swagger handler", func() {
			convey.Convey("Then it should panic", func() {
				convey.So(func() {
					Register(ctx, nil)
				}, convey.ShouldPanic)
			})
		})
	})
}
