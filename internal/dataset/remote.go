package dataset

import (
	"context"

	"github.com/nao1215/datapull/internal/fetch"
	"github.com/nao1215/datapull/internal/load"
	"github.com/nao1215/datapull/internal/model"
)

// DefaultRemoteName is the display name used when a pull is not given one.
const DefaultRemoteName = "Twitter7"

// Fetcher downloads a URL or a path relative to the base URL.
type Fetcher interface {
	Fetch(ctx context.Context, input string, opts ...fetch.RequestOption) (*fetch.Result, error)
}

// Remote is a dataset published as a single file.
type Remote struct {
	// Name is the display name.
	Name string

	// Source is an absolute URL or a path relative to DATA_BASE_URL.
	Source string

	// Hint overrides the filename used to pick a decoder. Defaults to Source.
	Hint string

	// Format forces a decoder by name, see load.WithFormat.
	Format string

	// Headers are sent with the request.
	Headers map[string]string
}

// FileHint returns the filename used for decoder selection.
func (r Remote) FileHint() string {
	if r.Hint != "" {
		return r.Hint
	}
	return r.Source
}

// Load downloads the dataset and decodes it into a frame.
func (r Remote) Load(ctx context.Context, f Fetcher) (*model.Frame, error) {
	result, err := f.Fetch(ctx, r.Source, fetch.WithHeaders(r.Headers))
	if err != nil {
		return nil, err
	}
	frame, _, err := r.Decode(result)
	return frame, err
}

// Decode decodes an already fetched result and returns the decoder chain
// that was used, see load.Read.
func (r Remote) Decode(result *fetch.Result) (*model.Frame, string, error) {
	return load.Read(result.Content, r.FileHint(), result.ContentType, load.WithFormat(r.Format))
}
