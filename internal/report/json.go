package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/datapull/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// previewRows is the number of frame rows included by WritePull.
	previewRows int

	// version is copied into PullOutput.Version.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithJSONPreviewRows sets the number of rows included in pull output.
func WithJSONPreviewRows(n int) JSONWriterOption {
	return func(w *JSONWriter) {
		w.previewRows = n
	}
}

// WithVersion stamps pull output with the producing datapull version.
func WithVersion(v string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = v
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter:  newBaseWriter(output),
		previewRows: DefaultPreviewRows,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// PullOutput wraps a pull report with a preview of the decoded rows.
type PullOutput struct {
	// Version is the datapull version that produced the output.
	Version string `json:"version,omitempty"`

	// Report is the pull record.
	Report *model.PullReport `json:"report"`

	// Preview holds the first rows of the frame.
	Preview *model.Frame `json:"preview,omitempty"`
}

// WritePull outputs the pull report and a row preview in JSON format.
func (w *JSONWriter) WritePull(report *model.PullReport) (int, error) {
	out := PullOutput{Version: w.version, Report: report}
	if report.Frame != nil {
		out.Preview = report.Frame.Head(w.previewRows)
	}
	return w.writeJSON(out)
}

// WriteHeads outputs a heads report in JSON format.
func (w *JSONWriter) WriteHeads(report *HeadsReport) (int, error) {
	return w.writeJSON(report)
}

// WriteValue outputs any JSON-serializable value, such as a history listing.
func (w *JSONWriter) WriteValue(v any) (int, error) {
	return w.writeJSON(v)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
