package fetch

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/net/http/httpproxy"

	"github.com/nao1215/datapull/internal/config"
)

// Result is the outcome of a single download.
type Result struct {
	// URL is the resolved absolute URL that was requested.
	URL string

	// Content is the full response body.
	Content []byte

	// ContentType is the Content-Type response header, verbatim.
	// Empty when the server did not send one.
	ContentType string

	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Digest is the hex BLAKE2b-256 digest of Content.
	Digest string
}

// Fetcher downloads resources using the configured credentials.
// It holds the http.Client so connection settings stay consistent and tests
// can substitute their own transport.
type Fetcher struct {
	settings  config.Settings
	client    *http.Client
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithTimeout sets the default per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithLogger sets the logger. Credentials are expected to be masked by
// the logger's handler.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher for the given settings.
func New(settings config.Settings, opts ...Option) *Fetcher {
	f := &Fetcher{
		settings:  settings,
		timeout:   config.DefaultTimeout,
		userAgent: config.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{Transport: newTransport()}
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}

	return f
}

// newTransport clones the default transport and resolves proxies from
// HTTPS_PROXY, HTTP_PROXY and NO_PROXY.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport
	proxyFunc := httpproxy.FromEnvironment().ProxyFunc()
	t.Proxy = func(req *http.Request) (*url.URL, error) {
		return proxyFunc(req.URL)
	}
	return t
}

// ResolveURL turns a URL or a relative path into an absolute URL.
//
// Inputs that already start with http:// or https:// are returned unchanged.
// Anything else is joined to settings.BaseURL with exactly one slash, which
// fails with config.ErrNotConfigured when no base URL is set.
func ResolveURL(settings config.Settings, input string) (string, error) {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return input, nil
	}

	base, err := settings.RequireBaseURL()
	if err != nil {
		return "", err
	}

	return base + "/" + strings.TrimLeft(input, "/"), nil
}

// ResolveURL resolves input against the fetcher's settings.
func (f *Fetcher) ResolveURL(input string) (string, error) {
	return ResolveURL(f.settings, input)
}

// RequestOption configures a single Fetch call.
type RequestOption func(*requestOptions)

type requestOptions struct {
	headers http.Header
	timeout time.Duration
}

// WithHeaders adds caller headers to the request.
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *requestOptions) {
		for k, v := range headers {
			o.headers.Set(k, v)
		}
	}
}

// WithHeader adds a single caller header to the request.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.headers.Set(key, value)
	}
}

// WithRequestTimeout overrides the fetcher's timeout for one call.
func WithRequestTimeout(timeout time.Duration) RequestOption {
	return func(o *requestOptions) {
		o.timeout = timeout
	}
}

// Fetch downloads input and returns the body, final URL and content type.
//
// A bearer Authorization header is added when an API token is configured
// and the caller did not supply Authorization. When both basic auth
// credentials are configured they are applied last and take precedence.
// Exactly one attempt is made; non-2xx responses return *HTTPError.
func (f *Fetcher) Fetch(ctx context.Context, input string, opts ...RequestOption) (*Result, error) {
	fullURL, err := f.ResolveURL(input)
	if err != nil {
		return nil, err
	}

	ro := &requestOptions{
		headers: make(http.Header),
		timeout: f.timeout,
	}
	for _, opt := range opts {
		opt(ro)
	}

	if f.settings.APIToken != "" && ro.headers.Get("Authorization") == "" {
		ro.headers.Set("Authorization", "Bearer "+f.settings.APIToken)
	}

	if ro.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ro.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = ro.headers
	if req.Header.Get("User-Agent") == "" && f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if f.settings.HasBasicAuth() {
		req.SetBasicAuth(f.settings.Username, f.settings.Password)
	}

	f.logger.Debug("fetching",
		"url", fullURL,
		"bearer", f.settings.APIToken != "",
		"basic", f.settings.HasBasicAuth(),
		"timeout", ro.timeout,
	)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096) //nolint:errcheck // best effort
		return nil, &HTTPError{
			URL:        fullURL,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	sum := blake2b.Sum256(content)
	result := &Result{
		URL:         fullURL,
		Content:     content,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
		Digest:      hex.EncodeToString(sum[:]),
	}

	f.logger.Debug("fetched",
		"url", fullURL,
		"status", resp.StatusCode,
		"size", humanize.Bytes(uint64(len(content))),
		"content_type", result.ContentType,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	return result, nil
}
