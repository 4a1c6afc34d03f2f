package config

import "errors"

// Configuration errors.
// These errors are returned by Config.Validate(), the Settings accessors and
// the registry loader. Callers use errors.Is() to tell them apart.
var (
	// ErrNotConfigured is returned when an operation needs an environment
	// setting that is absent (for example a relative path without DATA_BASE_URL).
	// The returned error always names the missing variable.
	ErrNotConfigured = errors.New("required setting is not configured")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRows is returned when the number of preview rows is not positive.
	ErrInvalidRows = errors.New("invalid row count: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidHeader is returned when a --header value is not "Key: Value".
	ErrInvalidHeader = errors.New("invalid header: expected \"Key: Value\"")

	// ErrDatasetNotFound is returned when a dataset key is not in the registry file.
	ErrDatasetNotFound = errors.New("dataset not found in registry")
)
