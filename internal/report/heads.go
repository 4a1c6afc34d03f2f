package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/datapull/internal/model"
)

// headsTimeLayout formats the timestamp embedded in heads report file names.
const headsTimeLayout = "20060102_150405"

// HeadsReport lists the first rows of every file of a local dataset.
type HeadsReport struct {
	// Dataset is the display name, e.g. "Higgs Twitter".
	Dataset string `json:"dataset"`

	// Slug prefixes the report file name, e.g. "higgs_twitter".
	Slug string `json:"-"`

	// DataRoot is the configured DATA_ROOT.
	DataRoot string `json:"data_root"`

	// DatasetPath is the dataset directory under DataRoot.
	DatasetPath string `json:"dataset_path"`

	// Rows is the maximum number of rows shown per file.
	Rows int `json:"rows"`

	// Path is where the report is saved. Set by SaveHeads.
	Path string `json:"report_file"`

	// GeneratedAt stamps the file name. Zero means now.
	GeneratedAt time.Time `json:"generated_at"`

	// Sections are written in order.
	Sections []Section `json:"sections"`
}

// Section is one file's rows within a heads report.
type Section struct {
	Key   string       `json:"key"`
	Frame *model.Frame `json:"frame"`
}

// HeadsFileName returns "<slug>_heads_<YYYYMMDD_HHMMSS><ext>".
func HeadsFileName(slug string, t time.Time, ext string) string {
	return fmt.Sprintf("%s_heads_%s%s", slug, t.Format(headsTimeLayout), ext)
}

// HeadsFormat selects how a heads report is saved.
type HeadsFormat string

// Heads report formats.
const (
	HeadsText     HeadsFormat = "text"
	HeadsMarkdown HeadsFormat = "markdown"
	HeadsJSON     HeadsFormat = "json"
)

// Ext returns the report file extension for f.
func (f HeadsFormat) Ext() string {
	switch f {
	case HeadsMarkdown:
		return ".md"
	case HeadsJSON:
		return ".json"
	default:
		return ".txt"
	}
}

func (f HeadsFormat) writer(w io.Writer) Writer {
	switch f {
	case HeadsMarkdown:
		return NewMarkdownWriter(w)
	case HeadsJSON:
		return NewJSONWriter(w, WithPrettyPrint())
	default:
		return NewSimpleWriter(w)
	}
}

// SaveHeads writes report to a new file under dir and writes the same
// content to stdout. The sections must already be loaded: the file is only
// created once there is something complete to write. Text and Markdown
// output is followed on stdout by a "Saved report to:" line; JSON output
// carries the path in its report_file field instead. Returns the absolute
// report path.
func SaveHeads(report *HeadsReport, dir string, format HeadsFormat, stdout io.Writer) (string, error) {
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = time.Now()
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	path, err := filepath.Abs(filepath.Join(dir, HeadsFileName(report.Slug, report.GeneratedAt, format.Ext())))
	if err != nil {
		return "", fmt.Errorf("failed to resolve report path: %w", err)
	}
	report.Path = path

	f, err := os.Create(report.Path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	w := NewMultiWriter(format.writer(stdout), format.writer(f))
	if _, err := w.WriteHeads(report); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close report file: %w", err)
	}

	if format != HeadsJSON {
		if _, err := fmt.Fprintf(stdout, "\nSaved report to: %s\n", report.Path); err != nil {
			return "", err
		}
	}
	return report.Path, nil
}
