package load

import (
	"bytes"
	"encoding/csv"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/nao1215/datapull/internal/model"
)

// decodeCSV reads comma-separated text with a header row. A leading byte
// order mark is removed; UTF-16 input with a BOM is converted to UTF-8.
func decodeCSV(content []byte) (*model.Frame, error) {
	r := csv.NewReader(transform.NewReader(
		bytes.NewReader(content),
		unicode.BOMOverride(unicode.UTF8.NewDecoder()),
	))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	return frameFromRecords(records, false)
}
