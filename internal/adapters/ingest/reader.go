// Package ingest reads delimited call logs into call records.
//
// Rows are mapped by header name, times and durations are converted to
// seconds, and exact duplicate rows are dropped. A row without a usable
// date or number is rejected; an unparsable time or duration is kept as
// model.Unknown so the record still takes part in reconciliation.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/okian/callrecon/internal/domain/dedupe"
	"github.com/okian/callrecon/internal/domain/model"
	"github.com/okian/callrecon/pkg/logger"
	"github.com/okian/callrecon/pkg/metrics"
)

// DefaultDelimiter is the delimiter of the database exports.
const DefaultDelimiter = ';'

// ctxCheckEvery is how many rows are read between context checks.
const ctxCheckEvery = 1024

// Stats counts what happened to the data rows of one input.
type Stats struct {
	Rows       int // data rows read, header excluded
	Accepted   int // records returned
	Duplicates int // exact duplicates dropped
	Rejected   int // rows without a usable date or number
	Malformed  int // accepted records with an unknown time or duration
}

// Reader turns delimited text into call records.
type Reader struct {
	delimiter  rune
	aliases    Aliases
	source     model.Source
	newDeduper func() dedupe.Deduper
	dedupeCap  int // 0 when the detector keeps every fingerprint
	logger     logger.Logger
}

// NewReader creates a reader with configuration options.
func NewReader(opts ...Option) *Reader {
	r := &Reader{
		delimiter: DefaultDelimiter,
		aliases:   DefaultAliases(),
		source:    model.SourceA,
		newDeduper: func() dedupe.Deduper {
			return dedupe.NewInMemoryDeduper()
		},
		logger: logger.Get().Named("ingest"),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// ReadFile reads the call log at path.
func (r *Reader) ReadFile(ctx context.Context, path string) ([]model.CallRecord, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	recs, stats, err := r.Read(ctx, f)
	if err != nil {
		return nil, stats, fmt.Errorf("read %s: %w", path, err)
	}
	return recs, stats, nil
}

// Read parses in. Records get Seq in the order they are accepted.
func (r *Reader) Read(ctx context.Context, in io.Reader) ([]model.CallRecord, Stats, error) {
	var stats Stats
	if !validDelimiter(r.delimiter) {
		return nil, stats, fmt.Errorf("%w: %q", ErrInvalidDelimiter, r.delimiter)
	}

	cr := csv.NewReader(in)
	cr.Comma = r.delimiter
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, stats, ErrEmptyInput
	}
	if err != nil {
		return nil, stats, fmt.Errorf("read header: %w", err)
	}

	cols, missing := resolve(header, r.aliases)
	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = f.String()
		}
		metrics.RecordErrorByComponent("ingest", "missing_column")
		return nil, stats, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(names, ", "))
	}

	seen := r.newDeduper()
	var recs []model.CallRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			metrics.RecordErrorByComponent("ingest", "parse_error")
			return nil, stats, fmt.Errorf("read row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++
		if stats.Rows%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}

		rec, fp, ok := r.parseRow(ctx, row, cols, stats.Rows)
		if !ok {
			stats.Rejected++
			continue
		}
		if seen.SeenAndRecord(ctx, fp) {
			stats.Duplicates++
			continue
		}
		if rec.TimeOfDay == model.Unknown || rec.Duration == model.Unknown {
			stats.Malformed++
		}
		rec.Seq = len(recs)
		recs = append(recs, rec)
	}
	stats.Accepted = len(recs)

	fingerprints := seen.Size()
	if r.dedupeCap > 0 && fingerprints >= int64(r.dedupeCap) {
		r.logger.Warn(ctx, "duplicate detector reached its cap; older duplicates may pass",
			logger.String("source", string(r.source)),
			logger.Int("dedupe_size", r.dedupeCap),
		)
	}

	r.record(stats)
	r.logger.Info(ctx, "call log read",
		logger.String("source", string(r.source)),
		logger.Int("rows", stats.Rows),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("rejected", stats.Rejected),
		logger.Int("malformed", stats.Malformed),
		logger.Int64("fingerprints", fingerprints),
	)
	return recs, stats, nil
}

// parseRow builds a record and its duplicate fingerprint from one row.
func (r *Reader) parseRow(ctx context.Context, row []string, cols map[Field]int, line int) (model.CallRecord, string, bool) {
	cell := func(f Field) (string, bool) {
		i := cols[f]
		if i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}

	rawDate, okDate := cell(FieldDate)
	number, okNumber := cell(FieldNumber)
	rawTime, _ := cell(FieldTime)
	rawDuration, _ := cell(FieldDuration)

	if !okDate || !okNumber || number == "" {
		r.logger.Debug(ctx, "row rejected", logger.Int("row", line), logger.String("reason", "number"))
		return model.CallRecord{}, "", false
	}
	date, err := ParseDate(rawDate)
	if err != nil {
		r.logger.Debug(ctx, "row rejected", logger.Int("row", line), logger.String("reason", "date"), logger.String("value", rawDate))
		return model.CallRecord{}, "", false
	}

	rec := model.CallRecord{
		Date:      date,
		TimeOfDay: ParseTimeOfDay(rawTime),
		Number:    number,
		Duration:  ParseDuration(rawDuration),
	}
	if rec.TimeOfDay == model.Unknown || rec.Duration == model.Unknown {
		r.logger.Debug(ctx, "malformed field",
			logger.Int("row", line),
			logger.String("time", rawTime),
			logger.String("duration", rawDuration),
		)
	}

	return rec, fingerprint(rec, rawTime, rawDuration), true
}

// fingerprint identifies a row by its normalized mapped values. Unknown
// values fall back to their raw text so distinct garbage stays distinct.
func fingerprint(rec model.CallRecord, rawTime, rawDuration string) string {
	field := func(v int, raw string) string {
		if v == model.Unknown {
			return "?" + raw
		}
		return strconv.Itoa(v)
	}
	return strings.Join([]string{
		rec.Key().Date,
		field(rec.TimeOfDay, rawTime),
		rec.Number,
		field(rec.Duration, rawDuration),
	}, "\x1f")
}

func (r *Reader) record(s Stats) {
	src := string(r.source)
	metrics.RecordIngestRows(src, "accepted", s.Accepted)
	metrics.RecordIngestRows(src, "duplicate", s.Duplicates)
	metrics.RecordIngestRows(src, "rejected", s.Rejected)
	metrics.RecordIngestRows(src, "malformed", s.Malformed)
}

func validDelimiter(d rune) bool {
	return d != 0 && d != '"' && d != '\r' && d != '\n' && utf8.ValidRune(d) && d != utf8.RuneError
}
