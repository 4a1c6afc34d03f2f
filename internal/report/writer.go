package report

import (
	"io"

	"github.com/nao1215/datapull/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// WritePull outputs the summary of one pull.
	// Returns the number of bytes written and any error encountered.
	WritePull(report *model.PullReport) (int, error)

	// WriteHeads outputs a heads report.
	WriteHeads(report *HeadsReport) (int, error)
}

// MultiWriter writes to multiple Writers in turn.
//
// Our Writer interface writes reports, not raw bytes, so io.MultiWriter
// cannot be used here directly.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WritePull outputs the pull summary to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) WritePull(report *model.PullReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WritePull(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteHeads outputs the heads report to all configured Writers.
func (m *MultiWriter) WriteHeads(report *HeadsReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteHeads(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
