package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/nao1215/datapull/internal/model"
)

// DefaultPreviewRows is the number of rows shown by WritePull.
const DefaultPreviewRows = 5

// SimpleWriter outputs human-readable text.
// Tables are plain aligned columns so the output can be piped or saved
// as-is.
type SimpleWriter struct {
	baseWriter

	// previewRows is the number of frame rows WritePull prints.
	previewRows int

	// verbose adds fetch details to WritePull.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithPreviewRows sets the number of rows WritePull prints.
func WithPreviewRows(n int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.previewRows = n
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter:  newBaseWriter(output),
		previewRows: DefaultPreviewRows,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WritePull prints the dataset name, its shape and the first rows.
func (w *SimpleWriter) WritePull(report *model.PullReport) (int, error) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Dataset: %s\n", report.Dataset))

	if !report.Succeeded() {
		sb.WriteString(fmt.Sprintf("Error: %s\n", report.ErrorMessage))
		return w.output.Write([]byte(sb.String()))
	}

	sb.WriteString(fmt.Sprintf("Rows: %d\n", report.Rows))
	sb.WriteString(fmt.Sprintf("Columns: %d\n", len(report.Columns)))
	if report.Frame != nil {
		sb.WriteString(RenderFrame(report.Frame.Head(w.previewRows), true))
		sb.WriteString("\n")
	}

	if w.verbose {
		w.writeDetails(&sb, report)
	}
	if report.PreviousDigest != "" {
		if report.ContentChanged() {
			sb.WriteString("Content: changed since last pull\n")
		} else {
			sb.WriteString("Content: unchanged since last pull\n")
		}
	}

	return w.output.Write([]byte(sb.String()))
}

// writeDetails writes where the data came from.
func (w *SimpleWriter) writeDetails(sb *strings.Builder, report *model.PullReport) {
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("URL:          %s\n", report.URL))
	if report.ContentType != "" {
		sb.WriteString(fmt.Sprintf("Content-Type: %s\n", report.ContentType))
	}
	sb.WriteString(fmt.Sprintf("Format:       %s\n", report.Format))
	sb.WriteString(fmt.Sprintf("Size:         %s\n", humanize.Bytes(uint64(max(report.Size, 0)))))
	sb.WriteString(fmt.Sprintf("Digest:       %s\n", report.Digest))
	sb.WriteString(fmt.Sprintf("Duration:     %s\n", report.Duration().Round(time.Millisecond)))
}

// WriteHeads writes the header block, one table per section and the
// trailer.
func (w *SimpleWriter) WriteHeads(report *HeadsReport) (int, error) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Dataset: %s\n", report.Dataset))
	sb.WriteString(fmt.Sprintf("DATA_ROOT: %s\n", report.DataRoot))
	sb.WriteString(fmt.Sprintf("Dataset path: %s\n", report.DatasetPath))
	sb.WriteString(fmt.Sprintf("Rows shown per file: %d\n", report.Rows))
	sb.WriteString(fmt.Sprintf("Report file: %s\n", report.Path))
	sb.WriteString(strings.Repeat("-", 80))
	sb.WriteString("\n")

	for _, s := range report.Sections {
		sb.WriteString(fmt.Sprintf("\n## %s\n", s.Key))
		sb.WriteString(RenderFrame(s.Frame, false))
		sb.WriteString("\n")
	}

	sb.WriteString("\nDone.\n")

	return w.output.Write([]byte(sb.String()))
}

// WriteHistory lists recorded pulls, newest first, as a table.
func (w *SimpleWriter) WriteHistory(pulls []*model.PullReport) (int, error) {
	if len(pulls) == 0 {
		return w.output.Write([]byte("No pulls recorded.\n"))
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Dataset", "Started", "Rows", "Cols", "Size", "Status"})
	for _, p := range pulls {
		status := "ok"
		if !p.Succeeded() {
			status = "error: " + truncateString(p.ErrorMessage, 40)
		}
		t.AppendRow(table.Row{
			p.ID[:min(8, len(p.ID))],
			p.Dataset,
			p.StartedAt.Local().Format(time.DateTime),
			p.Rows,
			len(p.Columns),
			humanize.Bytes(uint64(max(p.Size, 0))),
			status,
		})
	}

	return w.output.Write([]byte(t.Render() + "\n"))
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
