// Package client talks to a running reconciliation service over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/callrecon/internal/adapters/http/api"
	"github.com/okian/callrecon/internal/adapters/mq/queue"
	"github.com/okian/callrecon/internal/adapters/repository"
	"github.com/okian/callrecon/internal/domain/types"
	"github.com/okian/callrecon/pkg/logger"
)

const (
	defaultTimeout      = 60 * time.Second
	defaultPollInterval = 200 * time.Millisecond
)

// Run is a run as served by GET /reconciliations/{id}.
type Run struct {
	types.RunView
	Result *types.ResultView `json:"result,omitempty"`
}

// Finished reports whether the run reached a final state.
func (r Run) Finished() bool {
	return repository.Status(r.Status).Finished()
}

// Client is an HTTP client for the reconciliation API.
type Client struct {
	baseURL      string
	http         *http.Client
	pollInterval time.Duration
	logger       logger.Logger
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         &http.Client{Timeout: defaultTimeout},
		pollInterval: defaultPollInterval,
		logger:       logger.Get().Named("client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit uploads both logs to be reconciled with delta. The server rejects a
// negative delta.
func (c *Client) Submit(ctx context.Context, a, b queue.Upload, delta int) (Run, error) {
	return c.submit(ctx, a, b, strconv.Itoa(delta))
}

// SubmitDefault uploads both logs and leaves the delta to the server.
func (c *Client) SubmitDefault(ctx context.Context, a, b queue.Upload) (Run, error) {
	return c.submit(ctx, a, b, "")
}

func (c *Client) submit(ctx context.Context, a, b queue.Upload, delta string) (Run, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range []struct {
		field string
		up    queue.Upload
	}{{api.FieldSourceA, a}, {api.FieldSourceB, b}} {
		fw, err := mw.CreateFormFile(f.field, f.up.Name)
		if err != nil {
			return Run{}, fmt.Errorf("form %s: %w", f.field, err)
		}
		if _, err := fw.Write(f.up.Data); err != nil {
			return Run{}, fmt.Errorf("form %s: %w", f.field, err)
		}
	}
	if delta != "" {
		if err := mw.WriteField(api.FieldDelta, delta); err != nil {
			return Run{}, fmt.Errorf("form delta: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return Run{}, fmt.Errorf("form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/reconciliations", &body)
	if err != nil {
		return Run{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var run Run
	if err := c.do(req, http.StatusAccepted, &run); err != nil {
		return Run{}, err
	}
	c.logger.Debug(ctx, "run submitted", logger.String("run_id", run.ID))
	return run, nil
}

// Get fetches a run.
func (c *Client) Get(ctx context.Context, id string) (Run, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reconciliations/"+id, http.NoBody)
	if err != nil {
		return Run{}, fmt.Errorf("create request: %w", err)
	}
	var run Run
	if err := c.do(req, http.StatusOK, &run); err != nil {
		return Run{}, err
	}
	return run, nil
}

// Wait polls a run until it finishes. A failed run returns ErrRunFailed
// along with the run.
func (c *Client) Wait(ctx context.Context, id string) (Run, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		run, err := c.Get(ctx, id)
		if err != nil {
			return Run{}, err
		}
		if run.Finished() {
			if run.Status == string(repository.StatusFailed) {
				return run, fmt.Errorf("%w: %s: %s", ErrRunFailed, id, run.Error)
			}
			return run, nil
		}

		select {
		case <-ctx.Done():
			return run, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Report downloads the workbook of a succeeded run into w.
func (c *Client) Report(ctx context.Context, id string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reconciliations/"+id+"/report.xlsx", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get report: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read report: %w", err)
	}
	return nil
}

func (c *Client) do(req *http.Request, want int, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != want {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrResponse, req.URL.Path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Code == "" {
		return fmt.Errorf("%w: status %d: %s", ErrResponse, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return apiErr
}

// IsStatus reports whether err is an API error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
