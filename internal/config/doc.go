// Package config provides configuration structures and utilities for datapull.
// It covers three layers: command-line options (Config), environment
// settings for data access (Settings, optionally seeded from a .env file),
// and the optional YAML dataset registry (File).
package config
