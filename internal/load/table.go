package load

import (
	"fmt"
	"strconv"

	"github.com/nao1215/datapull/internal/model"
)

// frameFromRecords builds a frame from text records whose first record is
// the header. A record of empty fields is kept as a row of missing cells.
// When widen is false a data record longer than the header is an error;
// otherwise extra columns are added.
func frameFromRecords(records [][]string, widen bool) (*model.Frame, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, ErrNoColumns
	}

	header := records[0]
	width := len(header)
	if widen {
		for _, rec := range records[1:] {
			width = max(width, len(rec))
		}
	}

	frame := model.NewFrame(columnNames(header, width))
	for i, rec := range records[1:] {
		row := make([]any, len(rec))
		for j, field := range rec {
			row[j] = model.InferCell(field)
		}
		if err := frame.AppendRow(row); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+2, err)
		}
	}
	return frame, nil
}

// columnNames names blank header cells "Unnamed: <i>" and suffixes
// duplicates with ".1", ".2" and so on.
func columnNames(header []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]int, width)
	for i := range names {
		name := ""
		if i < len(header) {
			name = header[i]
		}
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}
		names[i] = name
	}
	return names
}

// dropBlank removes records whose fields are all empty, as spreadsheets
// report unused rows that way.
func dropBlank(records [][]string) [][]string {
	out := records[:0:0]
	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if f != "" {
			return false
		}
	}
	return true
}
