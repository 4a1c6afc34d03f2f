package database

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/datapull/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// newPull creates a pull report started at the given time.
func newPull(dataset, digest string, started time.Time) *model.PullReport {
	p := model.NewPullReport(dataset, "/snap/"+dataset+".csv")
	p.URL = "https://data.example.com/snap/" + dataset + ".csv"
	p.Format = "csv"
	p.ContentType = "text/csv"
	p.Size = 1024
	p.Digest = digest
	p.Rows = 3
	p.Columns = []string{"a", "b"}
	p.PerformedSteps = []string{"fetch", "decode"}
	p.StartedAt = started
	p.FinishedAt = started.Add(time.Second)
	return p
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		dbPath := filepath.Join(dbDir, FileName)
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != dbPath {
			t.Errorf("expected path %q, got %q", dbPath, db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		p := newPull("twitter7", "d1", time.Now())
		if err := db.SavePull(t.Context(), p); err != nil {
			t.Fatalf("failed to save pull: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		pulls, err := db.ListPulls(t.Context(), "", 0)
		if err != nil {
			t.Fatalf("failed to list pulls: %v", err)
		}
		if len(pulls) != 1 {
			t.Errorf("expected 1 pull, got %d", len(pulls))
		}
	})
}

// TestSavePull tests storing and reading back a pull.
func TestSavePull(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	started := time.Date(2025, 6, 1, 10, 30, 0, 123, time.UTC)
	p := newPull("twitter7", "d1", started)

	if err := db.SavePull(t.Context(), p); err != nil {
		t.Fatalf("failed to save pull: %v", err)
	}

	pulls, err := db.ListPulls(t.Context(), "twitter7", 10)
	if err != nil {
		t.Fatalf("failed to list pulls: %v", err)
	}
	if len(pulls) != 1 {
		t.Fatalf("expected 1 pull, got %d", len(pulls))
	}

	got := pulls[0]
	if got.ID != p.ID || got.URL != p.URL || got.Digest != "d1" || got.Size != 1024 || got.Rows != 3 {
		t.Errorf("unexpected pull %+v", got)
	}
	if diff := cmp.Diff(p.Columns, got.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(p.PerformedSteps, got.PerformedSteps); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("expected started %v, got %v", started, got.StartedAt)
	}
	if got.Duration() != time.Second {
		t.Errorf("expected 1s duration, got %v", got.Duration())
	}

	t.Run("saving again updates the record", func(t *testing.T) {
		p.Fail(errors.New("decode csv: bad quote"))
		if err := db.SavePull(t.Context(), p); err != nil {
			t.Fatalf("failed to save pull: %v", err)
		}

		pulls, err := db.ListPulls(t.Context(), "twitter7", 0)
		if err != nil {
			t.Fatalf("failed to list pulls: %v", err)
		}
		if len(pulls) != 1 || pulls[0].ErrorMessage != "decode csv: bad quote" {
			t.Errorf("unexpected pulls %+v", pulls)
		}
	})
}

// TestListPulls tests ordering, filtering and limits.
func TestListPulls(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, ds := range []string{"twitter7", "other", "twitter7", "twitter7"} {
		// sub-second offsets check that ordering survives fractional seconds
		p := newPull(ds, "d", base.Add(time.Duration(i)*500*time.Millisecond))
		if err := db.SavePull(t.Context(), p); err != nil {
			t.Fatalf("failed to save pull: %v", err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		t.Parallel()

		pulls, err := db.ListPulls(t.Context(), "", 0)
		if err != nil {
			t.Fatalf("failed to list pulls: %v", err)
		}
		if len(pulls) != 4 {
			t.Fatalf("expected 4 pulls, got %d", len(pulls))
		}
		for i := 1; i < len(pulls); i++ {
			if pulls[i].StartedAt.After(pulls[i-1].StartedAt) {
				t.Errorf("pulls not sorted newest first at %d", i)
			}
		}
	})

	t.Run("filter by dataset", func(t *testing.T) {
		t.Parallel()

		pulls, err := db.ListPulls(t.Context(), "twitter7", 0)
		if err != nil {
			t.Fatalf("failed to list pulls: %v", err)
		}
		if len(pulls) != 3 {
			t.Errorf("expected 3 pulls, got %d", len(pulls))
		}
	})

	t.Run("limit", func(t *testing.T) {
		t.Parallel()

		pulls, err := db.ListPulls(t.Context(), "", 2)
		if err != nil {
			t.Fatalf("failed to list pulls: %v", err)
		}
		if len(pulls) != 2 {
			t.Errorf("expected 2 pulls, got %d", len(pulls))
		}
	})
}

// TestLatestPull tests lookup of the previous successful pull.
func TestLatestPull(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("none recorded", func(t *testing.T) {
		p, err := db.LatestPull(t.Context(), "twitter7")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p != nil {
			t.Errorf("expected nil, got %+v", p)
		}
	})

	older := newPull("twitter7", "old", base)
	newer := newPull("twitter7", "new", base.Add(time.Hour))
	failed := newPull("twitter7", "", base.Add(2*time.Hour))
	failed.Fail(errors.New("http error: 500"))

	for _, p := range []*model.PullReport{older, newer, failed} {
		if err := db.SavePull(t.Context(), p); err != nil {
			t.Fatalf("failed to save pull: %v", err)
		}
	}

	t.Run("skips failed pulls", func(t *testing.T) {
		p, err := db.LatestPull(t.Context(), "twitter7")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p == nil || p.Digest != "new" {
			t.Errorf("expected latest successful pull, got %+v", p)
		}
	})
}

// TestParseTimestamp tests timestamp parsing fallbacks.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  time.Time
	}{
		{input: "2025-01-02T03:04:05.000000000Z", want: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{input: "2025-01-02 03:04:05", want: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{input: "2025-01-02T03:04:05Z", want: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{input: "", want: time.Time{}},
		{input: "garbage", want: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := parseTimestamp(tt.input); !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	if formatTimestamp(time.Time{}) != "" {
		t.Error("expected empty string for zero time")
	}
}
