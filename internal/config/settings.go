package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names read by SettingsFromEnv.
const (
	EnvDataRoot = "DATA_ROOT"
	EnvBaseURL  = "DATA_BASE_URL"
	EnvAPIToken = "DATA_API_TOKEN"
	EnvUsername = "DATA_USERNAME"
	EnvPassword = "DATA_PASSWORD"
)

// DefaultEnvFile is the name of the optional environment file.
const DefaultEnvFile = ".env"

// Settings is the data-access configuration read from the environment.
// An empty field means the variable was not set. Settings is built once by
// the entry point and passed by value; it is never modified afterwards.
type Settings struct {
	// DataRoot is the directory containing local dataset folders.
	DataRoot string

	// BaseURL is prepended to relative dataset paths. Never ends with "/".
	BaseURL string

	// APIToken is sent as a bearer token when set.
	APIToken string

	// Username and Password enable HTTP basic auth when both are set.
	Username string
	Password string
}

// SettingsFromEnv reads Settings from the process environment.
func SettingsFromEnv() Settings {
	return SettingsFromLookup(os.LookupEnv)
}

// SettingsFromLookup reads Settings through the given lookup function.
// Values are trimmed; an all-whitespace value counts as unset.
func SettingsFromLookup(lookup func(string) (string, bool)) Settings {
	get := func(key string) string {
		v, ok := lookup(key)
		if !ok {
			return ""
		}
		return strings.TrimSpace(v)
	}

	return Settings{
		DataRoot: expandHome(get(EnvDataRoot)),
		BaseURL:  strings.TrimRight(get(EnvBaseURL), "/"),
		APIToken: get(EnvAPIToken),
		Username: get(EnvUsername),
		Password: get(EnvPassword),
	}
}

// RequireBaseURL returns the base URL or an ErrNotConfigured error.
func (s Settings) RequireBaseURL() (string, error) {
	if s.BaseURL == "" {
		return "", fmt.Errorf("%w: relative path provided but %s is not set", ErrNotConfigured, EnvBaseURL)
	}
	return s.BaseURL, nil
}

// RequireDataRoot returns the data root or an ErrNotConfigured error.
func (s Settings) RequireDataRoot() (string, error) {
	if s.DataRoot == "" {
		return "", fmt.Errorf("%w: %s is not set; set it to the directory that contains the dataset folders (e.g. %s=/mnt/data/social_nets)",
			ErrNotConfigured, EnvDataRoot, EnvDataRoot)
	}
	return s.DataRoot, nil
}

// HasBasicAuth reports whether both basic auth credentials are present.
func (s Settings) HasBasicAuth() bool {
	return s.Username != "" && s.Password != ""
}

// LogValue implements slog.LogValuer. Credentials are reported only as
// present or absent.
func (s Settings) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("data_root", s.DataRoot),
		slog.String("base_url", s.BaseURL),
		slog.Bool("bearer", s.APIToken != ""),
		slog.Bool("basic", s.HasBasicAuth()),
	)
}

// LoadEnvFile loads variables from a .env file into the process environment.
// Variables that are already set are left untouched. A missing file is not
// an error; a malformed one is.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// FindEnvFile searches for the environment file in the following order:
// 1. If explicit is specified, use it directly (even if it does not exist,
// so the caller can report it)
// 2. Look for .env in the current directory
// 3. Look for .env in the XDG config directory
//
// Returns an empty string if nothing is found.
func FindEnvFile(explicit string) string {
	if explicit != "" {
		return explicit
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultEnvFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	p := filepath.Join(XDGConfigDir(), DefaultEnvFile)
	if _, err := os.Stat(p); err == nil {
		return p
	}

	return ""
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
