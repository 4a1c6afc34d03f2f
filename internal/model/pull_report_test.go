package model

import (
	"errors"
	"testing"
	"time"
)

// TestNewPullReport tests report construction.
func TestNewPullReport(t *testing.T) {
	t.Parallel()

	r := NewPullReport("Twitter7", "/snap/twitter7.csv")

	if r.ID == "" {
		t.Error("expected non-empty ID")
	}
	if r.Hint != "/snap/twitter7.csv" {
		t.Errorf("expected hint to default to source, got %q", r.Hint)
	}
	if r.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}
	if !r.Succeeded() {
		t.Error("expected new report to be successful")
	}

	other := NewPullReport("Twitter7", "/snap/twitter7.csv")
	if other.ID == r.ID {
		t.Error("expected distinct IDs")
	}
}

// TestPullReportSetFrame tests summary fields.
func TestPullReportSetFrame(t *testing.T) {
	t.Parallel()

	r := NewPullReport("x", "x.csv")
	f := &Frame{Columns: []string{"a", "b"}, Rows: [][]any{{int64(1), int64(2)}}}
	r.SetFrame(f)

	if r.Rows != 1 {
		t.Errorf("expected 1 row, got %d", r.Rows)
	}
	if len(r.Columns) != 2 {
		t.Errorf("expected 2 columns, got %d", len(r.Columns))
	}
	if r.Frame != f {
		t.Error("expected frame to be stored")
	}
}

// TestPullReportFail tests error recording.
func TestPullReportFail(t *testing.T) {
	t.Parallel()

	r := NewPullReport("x", "x.csv")
	r.Fail(errors.New("boom"))

	if r.Succeeded() {
		t.Error("expected failure")
	}
	if r.ErrorMessage != "boom" {
		t.Errorf("expected error message 'boom', got %q", r.ErrorMessage)
	}
}

// TestPullReportContentChanged tests digest comparison.
func TestPullReportContentChanged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		previous string
		current  string
		want     bool
	}{
		{name: "no previous pull", previous: "", current: "aa", want: false},
		{name: "same digest", previous: "aa", current: "aa", want: false},
		{name: "different digest", previous: "aa", current: "bb", want: true},
		{name: "no current digest", previous: "aa", current: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &PullReport{PreviousDigest: tt.previous, Digest: tt.current}
			if got := r.ContentChanged(); got != tt.want {
				t.Errorf("ContentChanged() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestPullReportDuration tests elapsed time.
func TestPullReportDuration(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &PullReport{StartedAt: start}
	if r.Duration() != 0 {
		t.Errorf("expected zero duration before finish, got %v", r.Duration())
	}

	r.FinishedAt = start.Add(1500 * time.Millisecond)
	if r.Duration() != 1500*time.Millisecond {
		t.Errorf("expected 1.5s, got %v", r.Duration())
	}
}
