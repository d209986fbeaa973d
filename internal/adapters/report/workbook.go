package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/okian/callrecon/internal/domain/model"
)

// Sheet names of the workbook, in order.
const (
	SheetSummary    = "summary"
	SheetMatched    = string(model.TagMatched)
	SheetOutOfDelta = string(model.TagOutOfDelta)
	SheetSourceA    = string(model.TagSourceAOnly)
	SheetSourceB    = string(model.TagSourceBOnly)
)

const dateLayout = "2006-01-02"

// WriteWorkbook renders res as an .xlsx workbook into w.
func WriteWorkbook(w io.Writer, res model.Result, s Summary, names Names) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetMatched, SheetOutOfDelta, SheetSourceA, SheetSourceB} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	sheets := []struct {
		name string
		rows [][]any
	}{
		{SheetSummary, summaryRows(s, names)},
		{SheetMatched, matchedRows(res.Matched, names)},
		{SheetOutOfDelta, crossRows(res.CrossResidual, names)},
		{SheetSourceA, residueRows(res.SoleA)},
		{SheetSourceB, residueRows(res.SoleB)},
	}
	for _, sh := range sheets {
		if err := writeRows(f, sh.name, sh.rows, header); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) > 0 {
		if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
			return fmt.Errorf("%s header style: %w", sheet, err)
		}
		last, err := excelize.ColumnNumberToName(len(rows[0]))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", last, 18); err != nil {
			return fmt.Errorf("%s column width: %w", sheet, err)
		}
	}
	return nil
}

func summaryRows(s Summary, names Names) [][]any {
	return [][]any{
		{"metric", "value"},
		{"delta_seconds", s.Delta},
		{"records_" + names.A, s.RecordsA},
		{"records_" + names.B, s.RecordsB},
		{"matched", s.Matched},
		{"matched_share_" + names.A, s.MatchedShareA},
		{"matched_share_" + names.B, s.MatchedShareB},
		{"out_of_delta", s.OutOfDelta},
		{"missing_from_" + names.B, s.SoleA},
		{"missing_from_" + names.B + "_share", s.SoleShareA},
		{"missing_from_" + names.A, s.SoleB},
		{"missing_from_" + names.A + "_share", s.SoleShareB},
		{"unpaired_" + names.A, s.LeftoverA},
		{"unpaired_" + names.B, s.LeftoverB},
	}
}

func pairHeader(names Names) []any {
	return []any{
		"call_date",
		"call_time_" + names.A, "duration_" + names.A,
		"receiving_number",
		"call_time_" + names.B, "duration_" + names.B,
		"tag",
	}
}

func pairRow(a, b model.CallRecord, tag model.Tag) []any {
	return []any{
		a.Date.Format(dateLayout),
		model.Clock(a.TimeOfDay), model.Clock(a.Duration),
		a.Number,
		model.Clock(b.TimeOfDay), model.Clock(b.Duration),
		string(tag),
	}
}

func matchedRows(ps []model.MatchedPair, names Names) [][]any {
	rows := [][]any{pairHeader(names)}
	for _, p := range ps {
		rows = append(rows, pairRow(p.A, p.B, p.Tag))
	}
	return rows
}

func crossRows(ps []model.CrossResiduePair, names Names) [][]any {
	rows := [][]any{pairHeader(names)}
	for _, p := range ps {
		rows = append(rows, pairRow(p.A, p.B, p.Tag))
	}
	return rows
}

func residueRows(rs []model.Residue) [][]any {
	rows := [][]any{{"call_date", "call_time", "receiving_number", "duration", "tag", "key_shared"}}
	for _, r := range rs {
		rows = append(rows, []any{
			r.Record.Date.Format(dateLayout),
			model.Clock(r.Record.TimeOfDay),
			r.Record.Number,
			model.Clock(r.Record.Duration),
			string(r.Tag),
			r.KeyShared,
		})
	}
	return rows
}
