package ingest

import (
	"strconv"
	"strings"
)

// Field is one of the columns a call record is built from.
type Field int

// Required fields.
const (
	FieldDate Field = iota
	FieldTime
	FieldNumber
	FieldDuration
)

var fields = []Field{FieldDate, FieldTime, FieldNumber, FieldDuration}

func (f Field) String() string {
	switch f {
	case FieldDate:
		return "call_date"
	case FieldTime:
		return "call_time"
	case FieldNumber:
		return "receiving_number"
	case FieldDuration:
		return "duration"
	default:
		return "field(" + strconv.Itoa(int(f)) + ")"
	}
}

// Raw header names of the database export both logs are produced from.
// The export repeats "to_char" three times; readers that de-duplicate
// header names turn the repeats into "to_char.1" and "to_char.2".
const (
	RawDate           = "to_char"
	RawTime           = "to_char.1"
	RawNumber         = "phoneb"
	RawDuration       = "to_char.2"
	RawRoundedMinutes = "?column?" // duration rounded to minutes, not used
)

// Aliases maps every field to the header names accepted for it.
type Aliases map[Field][]string

// DefaultAliases returns the accepted header names: the raw export names,
// the canonical names and the localized report names.
func DefaultAliases() Aliases {
	return Aliases{
		FieldDate:     {RawDate, FieldDate.String(), "Дата звонка"},
		FieldTime:     {RawTime, FieldTime.String(), "Время звонка"},
		FieldNumber:   {RawNumber, FieldNumber.String(), "Принимающий номер"},
		FieldDuration: {RawDuration, FieldDuration.String(), "Длительность"},
	}
}

// normalizeHeader trims a header cell and folds its case.
func normalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ToLower(strings.TrimSpace(s))
}

// mangle renames repeated header names to name.1, name.2 and so on,
// leaving the first occurrence untouched.
func mangle(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	count := make(map[string]int, len(header))
	for i, h := range header {
		h = normalizeHeader(h)
		name := h
		for used[name] {
			count[h]++
			name = h + "." + strconv.Itoa(count[h])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// resolve finds the column index of every field.
func resolve(header []string, aliases Aliases) (map[Field]int, []Field) {
	pos := make(map[string]int, len(header))
	for i, h := range mangle(header) {
		if _, ok := pos[h]; !ok {
			pos[h] = i
		}
	}

	cols := make(map[Field]int, len(fields))
	var missing []Field
	for _, f := range fields {
		found := false
		for _, name := range aliases[f] {
			if i, ok := pos[normalizeHeader(name)]; ok {
				cols[f] = i
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, f)
		}
	}
	return cols, missing
}
