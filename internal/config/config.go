package config

import (
	"fmt"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout is the per-request HTTP timeout. It matches the single
	// attempt budget of the download step; there is no retry.
	DefaultTimeout = 60 * time.Second

	// DefaultRows is the number of rows shown in previews and heads reports.
	DefaultRows = 5

	// DefaultReportsDir is the directory, relative to the working directory,
	// where heads reports are written.
	DefaultReportsDir = "reports"

	// AppName is the application name used for XDG directory paths.
	AppName = "datapull"

	// DefaultUserAgent identifies datapull in HTTP requests.
	DefaultUserAgent = "datapull (+https://github.com/nao1215/datapull)"
)

// Config holds all command-line options for datapull.
// It is populated from cobra flags and passed down explicitly; nothing in
// the application reads configuration from package-level state.
type Config struct {
	// Timeout is the HTTP timeout for a single download.
	Timeout time.Duration

	// Rows is the number of rows to preview or to read per file in a
	// heads report.
	Rows int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// EnvFilePath is an explicit .env file path. If empty, FindEnvFile
	// searches the default locations.
	EnvFilePath string

	// ConfigFilePath is the path to the dataset registry file.
	// If empty, the tool searches for .datapull.yaml in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Datasets holds the registry loaded from the configuration file.
	Datasets *File

	// JSONReport prints a JSON summary instead of human-readable text.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport writes heads reports as Markdown instead of plain text.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportsDir is where heads reports are saved.
	ReportsDir string

	// DBDir is the directory holding the pull history database.
	// Defaults to the XDG data directory (~/.local/share/datapull on Linux).
	DBDir string

	// SaveHistory records every pull in the history database.
	SaveHistory bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// Format forces a decoder by name instead of sniffing the file extension.
	Format string

	// Headers are extra request headers given on the command line.
	Headers map[string]string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		Rows:        DefaultRows,
		ReportsDir:  DefaultReportsDir,
		DBDir:       XDGDataDir(),
		SaveHistory: true,
		UserAgent:   DefaultUserAgent,
		Headers:     make(map[string]string),
	}
}

// XDGDataDir returns the XDG data directory for datapull.
// On Linux: ~/.local/share/datapull
// On macOS: ~/Library/Application Support/datapull
// On Windows: %LOCALAPPDATA%\datapull
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for datapull.
// On Linux: ~/.config/datapull
// On macOS: ~/Library/Application Support/datapull
// On Windows: %APPDATA%\datapull
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Rows <= 0 {
		return ErrInvalidRows
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

// ParseHeaders converts "Key: Value" strings into a header map.
// Keys are canonicalized the way net/http does it so that a later merge
// with configured headers is case-insensitive.
func ParseHeaders(values []string) (map[string]string, error) {
	headers := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidHeader, v)
		}
		headers[textproto.CanonicalMIMEHeaderKey(key)] = strings.TrimSpace(value)
	}
	return headers, nil
}

// MergeHeaders returns base overlaid with override. Keys are canonicalized
// so that "accept" and "Accept" refer to the same header.
func MergeHeaders(base, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[textproto.CanonicalMIMEHeaderKey(k)] = v
	}
	for k, v := range override {
		merged[textproto.CanonicalMIMEHeaderKey(k)] = v
	}
	return merged
}
