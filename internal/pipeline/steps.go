package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/datapull/internal/dataset"
	"github.com/nao1215/datapull/internal/fetch"
	"github.com/nao1215/datapull/internal/model"
)

// errNoContent is returned when DecodeStep runs without a prior fetch.
var errNoContent = errors.New("no content to decode")

// FetchStep downloads the dataset's source.
type FetchStep struct {
	fetcher dataset.Fetcher
	remote  dataset.Remote
}

// NewFetchStep creates a step that downloads remote with fetcher.
func NewFetchStep(fetcher dataset.Fetcher, remote dataset.Remote) *FetchStep {
	return &FetchStep{fetcher: fetcher, remote: remote}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do executes the fetch step.
func (s *FetchStep) Do(ctx context.Context, report *model.PullReport) error {
	result, err := s.fetcher.Fetch(ctx, s.remote.Source, fetch.WithHeaders(s.remote.Headers))
	if err != nil {
		return err
	}

	report.URL = result.URL
	report.ContentType = result.ContentType
	report.Size = int64(len(result.Content))
	report.Digest = result.Digest
	report.Content = result.Content
	return nil
}

// DecodeStep decodes the fetched bytes into a frame.
type DecodeStep struct {
	remote dataset.Remote
}

// NewDecodeStep creates a step that decodes content the way remote asks for.
func NewDecodeStep(remote dataset.Remote) *DecodeStep {
	return &DecodeStep{remote: remote}
}

// Name returns the step name.
func (s *DecodeStep) Name() string {
	return "decode"
}

// Do executes the decode step. The raw content is released afterwards.
func (s *DecodeStep) Do(_ context.Context, report *model.PullReport) error {
	if report.Content == nil {
		return errNoContent
	}

	report.Hint = s.remote.FileHint()

	frame, format, err := s.remote.Decode(&fetch.Result{
		URL:         report.URL,
		Content:     report.Content,
		ContentType: report.ContentType,
	})
	report.Format = format
	if err != nil {
		return err
	}

	report.SetFrame(frame)
	report.Content = nil
	return nil
}

// HistoryStore is the part of the history database RecordStep needs.
type HistoryStore interface {
	SavePull(ctx context.Context, report *model.PullReport) error
	LatestPull(ctx context.Context, dataset string) (*model.PullReport, error)
}

// RecordStep saves the pull in the history database. For a successful
// pull it first looks up the previous successful pull of the same dataset
// so the report can tell whether the content changed.
type RecordStep struct {
	store  HistoryStore
	logger *slog.Logger
}

// RecordStepOption configures a RecordStep.
type RecordStepOption func(*RecordStep)

// WithRecordLogger sets a custom logger for the record step.
func WithRecordLogger(logger *slog.Logger) RecordStepOption {
	return func(s *RecordStep) {
		s.logger = logger
	}
}

// NewRecordStep creates a step that records pulls in store.
func NewRecordStep(store HistoryStore, opts ...RecordStepOption) *RecordStep {
	s := &RecordStep{
		store:  store,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *RecordStep) Name() string {
	return "record"
}

// Do executes the record step.
func (s *RecordStep) Do(ctx context.Context, report *model.PullReport) error {
	if report.Succeeded() {
		prev, err := s.store.LatestPull(ctx, report.Dataset)
		if err != nil {
			s.logger.Warn("failed to look up previous pull", "dataset", report.Dataset, "error", err)
		} else if prev != nil {
			report.PreviousDigest = prev.Digest
		}
	}

	return s.store.SavePull(ctx, report)
}

// NewPull builds the standard pull pipeline for remote. When store is nil
// the pull is not recorded.
func NewPull(fetcher dataset.Fetcher, remote dataset.Remote, store HistoryStore, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewFetchStep(fetcher, remote),
		NewDecodeStep(remote),
	)
	if store != nil {
		p.Finally(NewRecordStep(store, WithRecordLogger(p.logger)))
	}
	return p
}
