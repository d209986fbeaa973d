package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// PrintSummary writes s to w as a short console report.
func PrintSummary(w io.Writer, s Summary, names Names) error {
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	lines := []string{
		fmt.Sprintf("%s %s=%d, %s=%d, delta ±%ds on time and duration",
			bold("Records:"), names.A, s.RecordsA, names.B, s.RecordsB, s.Delta),
		fmt.Sprintf("Matched calls: %s", green(s.Matched)),
		fmt.Sprintf("Matched share of %s: %s", names.A, green(fmt.Sprintf("%.1f%%", s.MatchedShareA))),
		fmt.Sprintf("Matched share of %s: %s", names.B, green(fmt.Sprintf("%.1f%%", s.MatchedShareB))),
		fmt.Sprintf("Out of delta pairs: %s", yellow(s.OutOfDelta)),
		fmt.Sprintf("%s numbers missing from %s: %s (%.1f%%)", names.A, names.B, red(s.SoleA), s.SoleShareA),
		fmt.Sprintf("%s numbers missing from %s: %s (%.1f%%)", names.B, names.A, red(s.SoleB), s.SoleShareB),
	}
	if s.LeftoverA > 0 || s.LeftoverB > 0 {
		lines = append(lines, fmt.Sprintf("Unpaired on shared keys: %s=%s, %s=%s",
			names.A, yellow(s.LeftoverA), names.B, yellow(s.LeftoverB)))
	}

	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	return nil
}
