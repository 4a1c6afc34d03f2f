package pipeline

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/nao1215/datapull/internal/config"
	"github.com/nao1215/datapull/internal/database"
	"github.com/nao1215/datapull/internal/dataset"
	"github.com/nao1215/datapull/internal/fetch"
	"github.com/nao1215/datapull/internal/model"
)

// memoryStore is an in-memory HistoryStore.
type memoryStore struct {
	saved   []*model.PullReport
	latest  *model.PullReport
	saveErr error
}

func (m *memoryStore) SavePull(_ context.Context, r *model.PullReport) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, r)
	return nil
}

func (m *memoryStore) LatestPull(context.Context, string) (*model.PullReport, error) {
	return m.latest, nil
}

func newCSVServer(t *testing.T, status int) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(status)
		_, _ = w.Write([]byte("user,tweets\nalice,3\nbob,5\n"))
	}))
	t.Cleanup(server.Close)
	return server
}

// TestNewPull tests the standard pull pipeline end to end.
func TestNewPull(t *testing.T) {
	t.Parallel()

	t.Run("successful pull is decoded and recorded", func(t *testing.T) {
		t.Parallel()

		server := newCSVServer(t, http.StatusOK)
		store := &memoryStore{latest: &model.PullReport{Digest: "previous"}}
		remote := dataset.Remote{Name: "Twitter7", Source: "/snap/twitter7.csv"}

		p := NewPull(fetch.New(config.Settings{BaseURL: server.URL}), remote, store)
		report := model.NewPullReport(remote.Name, remote.Source)
		if err := p.Execute(t.Context(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if report.Rows != 2 || len(report.Columns) != 2 {
			t.Errorf("unexpected shape %d x %d", report.Rows, len(report.Columns))
		}
		if report.Format != "csv" || report.ContentType != "text/csv" {
			t.Errorf("unexpected format %q / content type %q", report.Format, report.ContentType)
		}
		if report.URL != server.URL+"/snap/twitter7.csv" {
			t.Errorf("unexpected URL %q", report.URL)
		}
		if report.Content != nil {
			t.Error("expected raw content to be released")
		}
		if len(store.saved) != 1 {
			t.Fatalf("expected 1 saved pull, got %d", len(store.saved))
		}
		if report.PreviousDigest != "previous" || !report.ContentChanged() {
			t.Errorf("expected change against previous digest, got %q", report.PreviousDigest)
		}
	})

	t.Run("http failure is recorded", func(t *testing.T) {
		t.Parallel()

		server := newCSVServer(t, http.StatusNotFound)
		store := &memoryStore{latest: &model.PullReport{Digest: "previous"}}
		remote := dataset.Remote{Name: "Twitter7", Source: server.URL + "/gone.csv"}

		p := NewPull(fetch.New(config.Settings{}), remote, store)
		report := model.NewPullReport(remote.Name, remote.Source)
		err := p.Execute(t.Context(), report)
		if !fetch.IsHTTPStatus(err, http.StatusNotFound) {
			t.Fatalf("expected 404 HTTPError, got %v", err)
		}
		if len(store.saved) != 1 || store.saved[0].Succeeded() {
			t.Error("expected the failed pull to be recorded")
		}
		if report.PreviousDigest != "" {
			t.Error("failed pulls must not compare digests")
		}
	})

	t.Run("nil store skips recording", func(t *testing.T) {
		t.Parallel()

		server := newCSVServer(t, http.StatusOK)
		remote := dataset.Remote{Source: server.URL + "/a.csv"}
		p := NewPull(fetch.New(config.Settings{}), remote, nil)

		if names := p.StepNames(); len(names) != 2 {
			t.Errorf("expected fetch and decode only, got %v", names)
		}
	})

	t.Run("works with the sqlite history", func(t *testing.T) {
		t.Parallel()

		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		server := newCSVServer(t, http.StatusOK)
		remote := dataset.Remote{Name: "Twitter7", Source: server.URL + "/a.csv"}
		f := fetch.New(config.Settings{})

		first := model.NewPullReport(remote.Name, remote.Source)
		if err := NewPull(f, remote, db).Execute(t.Context(), first); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second := model.NewPullReport(remote.Name, remote.Source)
		if err := NewPull(f, remote, db).Execute(t.Context(), second); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if second.PreviousDigest != first.Digest {
			t.Errorf("expected previous digest %q, got %q", first.Digest, second.PreviousDigest)
		}
		if second.ContentChanged() {
			t.Error("expected identical content to be unchanged")
		}
	})
}

// TestDecodeStep tests decoding in isolation.
func TestDecodeStep(t *testing.T) {
	t.Parallel()

	t.Run("requires content", func(t *testing.T) {
		t.Parallel()

		err := NewDecodeStep(dataset.Remote{Source: "a.csv"}).Do(t.Context(), model.NewPullReport("d", "a.csv"))
		if !errors.Is(err, errNoContent) {
			t.Errorf("expected errNoContent, got %v", err)
		}
	})

	t.Run("hint and forced format", func(t *testing.T) {
		t.Parallel()

		report := model.NewPullReport("d", "/download?id=1")
		report.Content = []byte(`[{"a":1}]`)

		step := NewDecodeStep(dataset.Remote{Source: "/download?id=1", Hint: "x.bin", Format: "json"})
		if err := step.Do(t.Context(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Hint != "x.bin" || report.Format != "json" {
			t.Errorf("unexpected hint %q / format %q", report.Hint, report.Format)
		}
	})

	t.Run("content type selects the archive", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, err := zw.Create("twitter7.csv")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte("user,tweets\nalice,3\n")); err != nil {
			t.Fatal(err)
		}
		if err := zw.Close(); err != nil {
			t.Fatal(err)
		}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/zip")
			_, _ = w.Write(buf.Bytes())
		}))
		t.Cleanup(server.Close)

		remote := dataset.Remote{Name: "Twitter7", Source: server.URL + "/download?id=1"}
		report := model.NewPullReport(remote.Name, remote.Source)
		if err := NewPull(fetch.New(config.Settings{}), remote, nil).Execute(t.Context(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Format != "zip:csv" {
			t.Errorf("expected zip:csv format, got %q", report.Format)
		}
		if report.Rows != 1 {
			t.Errorf("expected 1 row, got %d", report.Rows)
		}
	})

	t.Run("archive format is reported", func(t *testing.T) {
		t.Parallel()

		report := model.NewPullReport("d", "dump.zip")
		report.Content = []byte("not a zip")

		err := NewDecodeStep(dataset.Remote{Source: "dump.zip"}).Do(t.Context(), report)
		if err == nil {
			t.Fatal("expected error for corrupt zip")
		}
		if report.Format != "zip" {
			t.Errorf("expected zip format, got %q", report.Format)
		}
	})
}

// TestRecordStep tests the history step.
func TestRecordStep(t *testing.T) {
	t.Parallel()

	store := &memoryStore{saveErr: errors.New("read-only")}
	err := NewRecordStep(store).Do(t.Context(), model.NewPullReport("d", "a.csv"))
	if err == nil || err.Error() != "read-only" {
		t.Errorf("expected save error, got %v", err)
	}
}
