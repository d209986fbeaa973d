// Package swagger serves the embedded OpenAPI document and a small index
// page of the operations it declares.
package swagger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
)

// Error constants.
var (
	ErrServe   = errors.New("swagger serve failed")
	ErrInvalid = errors.New("invalid openapi document")
)

// Operation is one method on one path of the document.
type Operation struct {
	Method  string
	Path    string
	Summary string
}

var methodOrder = map[string]int{"GET": 0, "POST": 1, "PUT": 2, "PATCH": 3, "DELETE": 4}

// Operations lists the operations of an OpenAPI document, ordered by path
// and method.
func Operations(doc []byte) (title string, ops []Operation, err error) {
	m, err := yaml.Parser().Unmarshal(doc)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if info, ok := m["info"].(map[string]interface{}); ok {
		title, _ = info["title"].(string)
	}
	paths, ok := m["paths"].(map[string]interface{})
	if !ok {
		return "", nil, fmt.Errorf("%w: no paths", ErrInvalid)
	}

	for path, v := range paths {
		methods, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		for method, body := range methods {
			op := Operation{Method: strings.ToUpper(method), Path: path}
			if b, ok := body.(map[string]interface{}); ok {
				op.Summary, _ = b["summary"].(string)
			}
			ops = append(ops, op)
		}
	}
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Path != ops[j].Path {
			return ops[i].Path < ops[j].Path
		}
		return methodOrder[ops[i].Method] < methodOrder[ops[j].Method]
	})
	return title, ops, nil
}

// Register attaches the docs routes to mux:
//
//	GET /api-docs      -> HTML index of the operations
//	GET /openapi.yaml  -> embedded OpenAPI document
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	index, err := renderIndex(OpenAPI)
	if err != nil {
		panic(fmt.Errorf("%w: %w", ErrServe, err))
	}

	mux.HandleFunc("GET /api-docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(index)
	})

	mux.HandleFunc("GET /openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})
}

func renderIndex(doc []byte) ([]byte, error) {
	title, ops, err := Operations(doc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, struct {
		Title string
		Ops   []Operation
	}{title, ops}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>{{.Title}}</title>
    <style>body{font-family:sans-serif;margin:2em}td{padding:.2em 1em}code{font-weight:bold}</style>
  </head>
  <body>
    <h1>{{.Title}}</h1>
    <p><a href="/openapi.yaml">openapi.yaml</a></p>
    <table>
{{- range .Ops}}
      <tr><td><code>{{.Method}}</code></td><td>{{.Path}}</td><td>{{.Summary}}</td></tr>
{{- end}}
    </table>
  </body>
</html>
`))
