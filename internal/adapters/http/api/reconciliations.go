package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/okian/callrecon/internal/adapters/mq/queue"
	"github.com/okian/callrecon/internal/adapters/repository"
	"github.com/okian/callrecon/internal/domain/types"
)

// Multipart form fields of POST /reconciliations.
const (
	FieldSourceA = "source_a"
	FieldSourceB = "source_b"
	FieldDelta   = "delta"
)

const (
	defaultListLimit = 100
	multipartMemory  = 8 << 20
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReconciliationsHandler serves the reconciliation run resources.
type ReconciliationsHandler struct {
	deps      Dependencies
	maxUpload int64
}

// NewReconciliationsHandler creates a new reconciliations handler.
func NewReconciliationsHandler(deps Dependencies) *ReconciliationsHandler {
	return &ReconciliationsHandler{deps: deps, maxUpload: DefaultMaxUploadBytes}
}

type runListResponse struct {
	Runs  []types.RunView `json:"runs"`
	Count int             `json:"count"`
}

type runResponse struct {
	types.RunView
	Result *types.ResultView `json:"result,omitempty"`
}

// HandleCreate handles POST /reconciliations requests.
func (h *ReconciliationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_reconciliation"
	if r.ContentLength > h.maxUpload {
		fail(w, NewKind(op, ErrPayloadTooLarge))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		fail(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	a, err := readUpload(r, FieldSourceA)
	if err != nil {
		fail(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	b, err := readUpload(r, FieldSourceB)
	if err != nil {
		fail(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	delta := h.deps.DefaultDelta()
	if raw := r.FormValue(FieldDelta); raw != "" {
		delta, err = strconv.Atoi(raw)
		if err != nil {
			fail(w, WrapKind(op, ErrBadRequest, fmt.Errorf("invalid delta %q", raw)))
			return
		}
	}

	run, err := h.deps.Submit(r.Context(), a, b, delta)
	if err != nil {
		fail(w, err)
		return
	}
	w.Header().Set("Location", "/reconciliations/"+run.ID)
	writeJSON(w, http.StatusAccepted, types.NewRunView(run))
}

func readUpload(r *http.Request, field string) (queue.Upload, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return queue.Upload{}, fmt.Errorf("file %s: %w", field, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return queue.Upload{}, fmt.Errorf("read %s: %w", field, err)
	}
	return queue.Upload{Name: hdr.Filename, Data: data}, nil
}

// HandleList handles GET /reconciliations requests.
func (h *ReconciliationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_reconciliations"
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fail(w, WrapKind(op, ErrBadRequest, fmt.Errorf("invalid limit %q", raw)))
			return
		}
		limit = n
	}

	runs, err := h.deps.List(r.Context(), limit)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runListResponse{Runs: types.NewRunViews(runs), Count: len(runs)})
}

// HandleGet handles GET /reconciliations/{id} requests. Succeeded runs
// carry their full row-level result.
func (h *ReconciliationsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	run, err := h.deps.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, err)
		return
	}
	resp := runResponse{RunView: types.NewRunView(run)}
	if run.Status == repository.StatusSucceeded {
		res := types.NewResultView(run.Result)
		resp.Result = &res
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleReport handles GET /reconciliations/{id}/report.xlsx requests.
func (h *ReconciliationsHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var buf bytes.Buffer
	if err := h.deps.Workbook(r.Context(), id, &buf); err != nil {
		fail(w, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "reconciliation-"+id+".xlsx"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
