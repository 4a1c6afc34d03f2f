package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"

	"github.com/nao1215/datapull/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter

	previewRows int
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMarkdownPreviewRows sets the number of rows shown by WritePull.
func WithMarkdownPreviewRows(n int) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.previewRows = n
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter:  newBaseWriter(output),
		previewRows: DefaultPreviewRows,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WritePull outputs the pull summary in Markdown format.
func (w *MarkdownWriter) WritePull(report *model.PullReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1(report.Dataset)
	md.PlainText("")

	rows := [][]string{
		{"Source", "`" + report.Source + "`"},
		{"Status", statusText(report)},
	}
	if report.Succeeded() {
		rows = append(rows,
			[]string{"Rows", strconv.Itoa(report.Rows)},
			[]string{"Columns", strconv.Itoa(len(report.Columns))},
			[]string{"Format", report.Format},
			[]string{"Size", humanize.Bytes(uint64(max(report.Size, 0)))},
		)
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if report.Frame != nil && report.Frame.NumRows() > 0 {
		md.H2("Preview")
		md.PlainText("")
		w.writeFrame(md, report.Frame.Head(w.previewRows))
	}

	return len(md.String()), md.Build()
}

// statusText returns the status text based on report state.
func statusText(report *model.PullReport) string {
	switch {
	case !report.Succeeded():
		return "❌ Error - " + report.ErrorMessage
	case report.ContentChanged():
		return "✅ Complete (content changed since last pull)"
	default:
		return "✅ Complete"
	}
}

// WriteHeads outputs a heads report in Markdown format.
func (w *MarkdownWriter) WriteHeads(report *HeadsReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1(report.Dataset)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"DATA_ROOT", "`" + report.DataRoot + "`"},
			{"Dataset path", "`" + report.DatasetPath + "`"},
			{"Rows shown per file", strconv.Itoa(report.Rows)},
			{"Report file", "`" + report.Path + "`"},
		},
	})
	md.PlainText("")

	for _, s := range report.Sections {
		md.H2(s.Key)
		md.PlainText("")
		if s.Frame.NumRows() == 0 {
			md.PlainTextf("No rows. Columns: %s", fmt.Sprint(s.Frame.Columns))
			md.PlainText("")
			continue
		}
		w.writeFrame(md, s.Frame)
	}

	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("Done.")

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeFrame(md *markdown.Markdown, f *model.Frame) {
	md.Table(markdown.TableSet{
		Header: f.Columns,
		Rows:   frameStrings(f),
	})
	md.PlainText("")
}
