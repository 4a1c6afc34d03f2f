package report

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/nao1215/datapull/internal/model"
)

// plainStyle renders a borderless, right-aligned table where every column is
// preceded by one space.
var plainStyle = func() table.Style {
	s := table.StyleDefault
	s.Name = "plain"
	s.Box.PaddingLeft = " "
	s.Box.PaddingRight = ""
	s.Format.Header = text.FormatDefault
	s.Format.Footer = text.FormatDefault
	s.Options = table.Options{
		DrawBorder:      false,
		SeparateColumns: false,
		SeparateFooter:  false,
		SeparateHeader:  false,
		SeparateRows:    false,
	}
	return s
}()

// RenderFrame renders f as an aligned text table. With index set, a leading
// column holds each row's position. A frame without rows renders as a short
// description instead.
func RenderFrame(f *model.Frame, index bool) string {
	if f.NumRows() == 0 {
		return "Empty DataFrame\nColumns: [" + strings.Join(f.Columns, ", ") + "]\nIndex: []"
	}

	t := table.NewWriter()
	t.SetStyle(plainStyle)

	width := f.NumCols()
	if index {
		width++
	}

	header := make(table.Row, 0, width)
	if index {
		header = append(header, "")
	}
	for _, c := range f.Columns {
		header = append(header, c)
	}
	t.AppendHeader(header)

	for i, row := range f.Rows {
		out := make(table.Row, 0, width)
		if index {
			out = append(out, strconv.Itoa(i))
		}
		for _, cell := range row {
			out = append(out, model.FormatCell(cell))
		}
		t.AppendRow(out)
	}

	configs := make([]table.ColumnConfig, width)
	for i := range configs {
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignRight,
			AlignHeader: text.AlignRight,
		}
	}
	if index {
		configs[0].Align = text.AlignLeft
	}
	t.SetColumnConfigs(configs)

	return t.Render()
}

// frameStrings converts the frame's rows to display strings.
func frameStrings(f *model.Frame) [][]string {
	rows := make([][]string, len(f.Rows))
	for i, row := range f.Rows {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = model.FormatCell(cell)
		}
	}
	return rows
}
