package load

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/nao1215/datapull/internal/model"
)

var (
	errNoSheets     = errors.New("workbook has no sheets")
	errMalformedXLS = errors.New("malformed xls workbook")
)

// decodeXLSX reads the first sheet of an Office Open XML workbook.
// The first non-blank row is the header.
func decodeXLSX(content []byte) (*model.Frame, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errNoSheets
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	return frameFromRecords(dropBlank(rows), true)
}

// decodeXLS reads the first sheet of a legacy BIFF8 workbook.
func decodeXLS(content []byte) (frame *model.Frame, err error) {
	// The BIFF parser panics on some truncated files.
	defer func() {
		if r := recover(); r != nil {
			frame, err = nil, fmt.Errorf("%w: %v", errMalformedXLS, r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, err
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errNoSheets
	}

	records := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		rec := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			rec = append(rec, row.Col(c))
		}
		records = append(records, rec)
	}
	return frameFromRecords(dropBlank(records), true)
}
