package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrColumnCount is returned when a row or a set of column names does not
// match the frame's width.
var ErrColumnCount = errors.New("column count mismatch")

// Frame is an in-memory table with named columns and ordered rows.
//
// Cells hold nil (missing), int64, float64, bool, string or time.Time.
// Repeated Parquet columns hold a []any of those.
// A Frame has no identity beyond the call that produced it.
type Frame struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// NewFrame creates an empty frame with the given column names.
func NewFrame(columns []string) *Frame {
	return &Frame{
		Columns: columns,
		Rows:    make([][]any, 0),
	}
}

// AppendRow adds a row. Short rows are padded with nil; rows wider than
// the frame are rejected.
func (f *Frame) AppendRow(row []any) error {
	if len(row) > len(f.Columns) {
		return fmt.Errorf("%w: row has %d fields, frame has %d columns", ErrColumnCount, len(row), len(f.Columns))
	}
	for len(row) < len(f.Columns) {
		row = append(row, nil)
	}
	f.Rows = append(f.Rows, row)
	return nil
}

// MarshalJSON encodes the frame. JSON has no NaN or infinity, so NaN cells
// are written as null and infinite cells as the strings "inf" and "-inf".
func (f Frame) MarshalJSON() ([]byte, error) {
	type plain Frame

	rows, cloned := f.Rows, false
	for i, row := range f.Rows {
		for j, v := range row {
			x, ok := v.(float64)
			if !ok || !(math.IsNaN(x) || math.IsInf(x, 0)) {
				continue
			}
			if !cloned {
				rows, cloned = cloneRows(f.Rows), true
			}
			if math.IsNaN(x) {
				rows[i][j] = nil
			} else {
				rows[i][j] = formatFloat(x)
			}
		}
	}

	return json.Marshal(plain{Columns: f.Columns, Rows: rows})
}

func cloneRows(rows [][]any) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		out[i] = append([]any(nil), row...)
	}
	return out
}

// NumRows returns the number of rows.
func (f *Frame) NumRows() int {
	return len(f.Rows)
}

// NumCols returns the number of columns.
func (f *Frame) NumCols() int {
	return len(f.Columns)
}

// Head returns a frame holding at most the first n rows.
// The returned frame shares row storage with f.
func (f *Frame) Head(n int) *Frame {
	if n < 0 {
		n = 0
	}
	if n > len(f.Rows) {
		n = len(f.Rows)
	}
	return &Frame{Columns: f.Columns, Rows: f.Rows[:n]}
}

// Column returns the values of the named column.
func (f *Frame) Column(name string) ([]any, bool) {
	idx := -1
	for i, c := range f.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}

	values := make([]any, len(f.Rows))
	for i, row := range f.Rows {
		values[i] = row[idx]
	}
	return values, true
}

// SetColumns renames all columns. The number of names must match.
func (f *Frame) SetColumns(names []string) error {
	if len(names) != len(f.Columns) {
		return fmt.Errorf("%w: got %d names for %d columns", ErrColumnCount, len(names), len(f.Columns))
	}
	f.Columns = names
	return nil
}

// PositionalColumns returns the generic names col0..col{n-1}.
func PositionalColumns(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = "col" + strconv.Itoa(i)
	}
	return names
}

// missingValues are the text fields read as a missing cell.
var missingValues = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true,
	"-1.#IND": true, "-1.#QNAN": true, "-NaN": true, "-nan": true,
	"1.#IND": true, "1.#QNAN": true, "<NA>": true, "N/A": true,
	"NA": true, "NULL": true, "NaN": true, "None": true,
	"n/a": true, "nan": true, "null": true,
}

// InferCell converts a raw text field into a typed cell.
// Empty fields and the usual missing markers (NaN, NA, NULL, ...) become
// nil. Integers, floats and booleans are recognized; anything else stays a
// string. "inf" and "-inf" become infinite floats.
func InferCell(s string) any {
	if missingValues[s] {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) {
		return f
	}
	switch s {
	case "true", "True", "TRUE":
		return true
	case "false", "False", "FALSE":
		return false
	}
	return s
}

// FormatCell renders a cell for display.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NaN"
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatFloat(x)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.DateTime)
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
