package testcalls

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/okian/callrecon/internal/adapters/ingest"
	"github.com/okian/callrecon/internal/domain/model"
)

// Output file names written by WriteFiles.
const (
	FileA = "source_a.csv"
	FileB = "source_b.csv"
)

// malformedText stands in for a value the export could not render.
const malformedText = "n/a"

// exportHeader is the header of the database export. The export names the
// date, time and duration columns all "to_char".
var exportHeader = []string{ingest.RawDate, ingest.RawDate, ingest.RawNumber, ingest.RawDate, ingest.RawRoundedMinutes}

// WriteCSV writes recs in the export layout.
func WriteCSV(w io.Writer, recs []model.CallRecord, delimiter rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range recs {
		row := []string{
			r.Key().Date,
			clock(r.TimeOfDay),
			r.Number,
			clock(r.Duration),
			roundedMinutes(r.Duration),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", r.Seq, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFiles writes both sources of ds into dir and returns their paths.
func WriteFiles(dir string, ds Dataset, delimiter rune) (pathA, pathB string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create %s: %w", dir, err)
	}
	pathA = filepath.Join(dir, FileA)
	pathB = filepath.Join(dir, FileB)
	if err := writeFile(pathA, ds.A, delimiter); err != nil {
		return "", "", err
	}
	if err := writeFile(pathB, ds.B, delimiter); err != nil {
		return "", "", err
	}
	return pathA, pathB, nil
}

func writeFile(path string, recs []model.CallRecord, delimiter rune) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := WriteCSV(f, recs, delimiter); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func clock(sec int) string {
	if sec == model.Unknown {
		return malformedText
	}
	return model.Clock(sec)
}

func roundedMinutes(sec int) string {
	if sec < 0 {
		return ""
	}
	return strconv.Itoa((sec + 59) / 60)
}
