// Package fetch downloads raw dataset bytes over HTTP.
//
// A Fetcher resolves a URL or a path relative to DATA_BASE_URL, adds the
// configured credentials (bearer token and/or basic auth), performs a single
// GET and buffers the whole body. There is no retry: a non-2xx response is
// returned as an *HTTPError immediately.
package fetch
