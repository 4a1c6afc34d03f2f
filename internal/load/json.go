package load

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/nao1215/datapull/internal/model"
)

// decodeJSON reads a JSON table in one of three layouts:
//
//	[{"a": 1, "b": 2}, ...]          records
//	{"a": [1, ...], "b": [2, ...]}   split columns
//	{"a": {"0": 1}, "b": {"0": 2}}   columns keyed by row label
//
// Column and row order follow the document. Nested objects and arrays are
// kept as their raw JSON text.
func decodeJSON(content []byte) (*model.Frame, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(content))

	switch dec.PeekKind() {
	case '[':
		return decodeRecords(dec)
	case '{':
		return decodeColumns(dec)
	default:
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: top level must be an array or an object", ErrUnsupportedJSON)
	}
}

func decodeRecords(dec *jsontext.Decoder) (*model.Frame, error) {
	if _, err := dec.ReadToken(); err != nil { // [
		return nil, err
	}

	var (
		columns []string
		index   = make(map[string]int)
		records []map[int]any
	)
	for dec.PeekKind() != ']' {
		if dec.PeekKind() != '{' {
			if _, err := dec.ReadValue(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: array elements must be objects", ErrUnsupportedJSON)
		}
		if _, err := dec.ReadToken(); err != nil { // {
			return nil, err
		}

		rec := make(map[int]any)
		for dec.PeekKind() != '}' {
			key, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			name := key.String()
			i, ok := index[name]
			if !ok {
				i = len(columns)
				index[name] = i
				columns = append(columns, name)
			}
			if rec[i], err = readCell(dec); err != nil {
				return nil, err
			}
		}
		if _, err := dec.ReadToken(); err != nil { // }
			return nil, err
		}
		records = append(records, rec)
	}
	if _, err := dec.ReadToken(); err != nil { // ]
		return nil, err
	}
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}

	frame := model.NewFrame(columns)
	for _, rec := range records {
		row := make([]any, len(columns))
		for i, v := range rec {
			row[i] = v
		}
		if err := frame.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

func decodeColumns(dec *jsontext.Decoder) (*model.Frame, error) {
	if _, err := dec.ReadToken(); err != nil { // {
		return nil, err
	}

	var (
		columns []string
		values  []map[string]any
		labels  []string
		seen    = make(map[string]bool)
	)
	addLabel := func(label string) {
		if !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}

	for dec.PeekKind() != '}' {
		key, err := dec.ReadToken()
		if err != nil {
			return nil, err
		}
		// Tokens are only valid until the next decoder call.
		name := key.String()
		col := make(map[string]any)

		switch dec.PeekKind() {
		case '[':
			if _, err := dec.ReadToken(); err != nil {
				return nil, err
			}
			for i := 0; dec.PeekKind() != ']'; i++ {
				label := strconv.Itoa(i)
				if col[label], err = readCell(dec); err != nil {
					return nil, err
				}
				addLabel(label)
			}
			if _, err := dec.ReadToken(); err != nil {
				return nil, err
			}
		case '{':
			if _, err := dec.ReadToken(); err != nil {
				return nil, err
			}
			for dec.PeekKind() != '}' {
				tok, err := dec.ReadToken()
				if err != nil {
					return nil, err
				}
				label := tok.String()
				if col[label], err = readCell(dec); err != nil {
					return nil, err
				}
				addLabel(label)
			}
			if _, err := dec.ReadToken(); err != nil {
				return nil, err
			}
		default:
			if _, err := dec.ReadValue(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: column %q is a scalar", ErrUnsupportedJSON, name)
		}

		columns = append(columns, name)
		values = append(values, col)
	}
	if _, err := dec.ReadToken(); err != nil { // }
		return nil, err
	}
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}

	frame := model.NewFrame(columns)
	for _, label := range labels {
		row := make([]any, len(columns))
		for i, col := range values {
			row[i] = col[label]
		}
		if err := frame.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

// readCell reads one JSON value as a frame cell.
func readCell(dec *jsontext.Decoder) (any, error) {
	switch dec.PeekKind() {
	case '{', '[':
		raw, err := dec.ReadValue()
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	}

	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}
	switch tok.Kind() {
	case 'n':
		return nil, nil
	case 't', 'f':
		return tok.Bool(), nil
	case '0':
		raw := tok.String()
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return i, nil
		}
		return tok.Float(), nil
	default:
		return tok.String(), nil
	}
}
