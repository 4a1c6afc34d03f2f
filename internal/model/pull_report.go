package model

import (
	"time"

	"github.com/google/uuid"
)

// PullReport records one run of the pull pipeline: where the bytes came
// from, what they decoded into, and whether anything failed.
type PullReport struct {
	// ID uniquely identifies the run in the history database.
	ID string `json:"id"`

	// Dataset is the display name of the dataset.
	Dataset string `json:"dataset"`

	// Source is the URL or relative path as given by the user.
	Source string `json:"source"`

	// Hint is the file name used to pick a decoder. Defaults to Source.
	Hint string `json:"hint,omitempty"`

	// Format is the decoder chain that was used, such as csv or zip:csv.
	Format string `json:"format,omitempty"`

	// URL is the resolved absolute URL.
	URL string `json:"url,omitempty"`

	// ContentType is the response Content-Type header, verbatim.
	ContentType string `json:"content_type,omitempty"`

	// Size is the number of downloaded bytes.
	Size int64 `json:"size"`

	// Digest is the hex BLAKE2b-256 digest of the downloaded bytes.
	Digest string `json:"digest,omitempty"`

	// PreviousDigest is the digest of the last successful pull of the same
	// dataset, if any.
	PreviousDigest string `json:"previous_digest,omitempty"`

	// Content holds the raw bytes between the fetch and decode steps.
	Content []byte `json:"-"`

	// Frame is the decoded table.
	Frame *Frame `json:"-"`

	// Rows and Columns summarize Frame for storage and JSON output.
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// PerformedSteps lists pipeline steps that completed.
	PerformedSteps []string `json:"performed_steps"`

	// Error is the error that stopped the pipeline, if any.
	Error error `json:"-"`

	// ErrorMessage is Error as text, kept for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewPullReport creates a report for a pull of source.
func NewPullReport(dataset, source string) *PullReport {
	return &PullReport{
		ID:             uuid.NewString(),
		Dataset:        dataset,
		Source:         source,
		Hint:           source,
		Columns:        []string{},
		PerformedSteps: []string{},
		StartedAt:      time.Now(),
	}
}

// SetFrame stores the decoded frame and its summary fields.
func (r *PullReport) SetFrame(f *Frame) {
	r.Frame = f
	r.Rows = f.NumRows()
	r.Columns = f.Columns
}

// Fail records err as the reason the pull stopped.
func (r *PullReport) Fail(err error) {
	r.Error = err
	r.ErrorMessage = err.Error()
}

// Succeeded reports whether the pull finished without error.
func (r *PullReport) Succeeded() bool {
	return r.ErrorMessage == ""
}

// ContentChanged reports whether the downloaded content differs from the
// previous successful pull. It is false when there is nothing to compare.
func (r *PullReport) ContentChanged() bool {
	return r.PreviousDigest != "" && r.Digest != "" && r.PreviousDigest != r.Digest
}

// Duration returns how long the pull took.
func (r *PullReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
