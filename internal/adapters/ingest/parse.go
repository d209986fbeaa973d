package ingest

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/okian/callrecon/internal/domain/model"
)

var errUnparsable = errors.New("unparsable value")

// MaxSpanSeconds bounds any parsed span. Longer values are treated as
// unparsable rather than risk overflow.
const MaxSpanSeconds = 366 * model.SecondsPerDay

// dateLayouts are tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseDate parses a call date and drops any time part.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, errUnparsable
}

// ParseSeconds parses a time span into whole seconds. Accepted forms are
// plain seconds ("95"), MM:SS, HH:MM:SS with an optional fraction, and
// "D days HH:MM:SS". Fractions are truncated. Negative spans and spans over
// MaxSpanSeconds are rejected.
func ParseSeconds(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errUnparsable
	}

	days := 0
	if i := strings.Index(s, "day"); i > 0 {
		d, err := strconv.Atoi(strings.TrimSpace(s[:i]))
		if err != nil || d < 0 || d > MaxSpanSeconds/model.SecondsPerDay {
			return 0, errUnparsable
		}
		days = d
		s = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(s[i:], "days"), "day"))
	}

	if i := strings.IndexByte(s, '.'); i >= 0 {
		frac := s[i+1:]
		if frac == "" || strings.Trim(frac, "0123456789") != "" {
			return 0, errUnparsable
		}
		s = s[:i]
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, errUnparsable
	}
	total := 0
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, errUnparsable
		}
		// every component but the leading one is base 60
		if i > 0 && n >= 60 {
			return 0, errUnparsable
		}
		if n > MaxSpanSeconds {
			return 0, errUnparsable
		}
		total = total*60 + n
		if total > MaxSpanSeconds {
			return 0, errUnparsable
		}
	}
	total += days * model.SecondsPerDay
	if total > MaxSpanSeconds {
		return 0, errUnparsable
	}
	return total, nil
}

// ParseTimeOfDay parses a time of day, returning model.Unknown when the
// value cannot be parsed or falls outside a single day.
func ParseTimeOfDay(s string) int {
	sec, err := ParseSeconds(s)
	if err != nil || sec >= model.SecondsPerDay {
		return model.Unknown
	}
	return sec
}

// ParseDuration parses a call duration, returning model.Unknown when the
// value cannot be parsed.
func ParseDuration(s string) int {
	sec, err := ParseSeconds(s)
	if err != nil {
		return model.Unknown
	}
	return sec
}
