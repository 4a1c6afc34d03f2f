package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// DatasetConfig describes one remote dataset in the registry file.
type DatasetConfig struct {
	// Name is the display name printed in summaries (e.g. "Twitter7").
	Name string `yaml:"name,omitempty"`

	// Source is a full URL or a path relative to DATA_BASE_URL.
	Source string `yaml:"source,omitempty"`

	// Hint overrides the file name used to choose a decoder.
	// Useful when the URL carries no extension.
	Hint string `yaml:"hint,omitempty"`

	// Format forces a decoder by name (csv, json, parquet, xlsx, xls).
	Format string `yaml:"format,omitempty"`

	// Headers are extra HTTP headers sent when downloading this dataset.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Timeout overrides the global download timeout for this dataset.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// File represents the structure of the .datapull.yaml registry.
type File struct {
	// Datasets maps a short key (used with --dataset) to its configuration.
	Datasets map[string]DatasetConfig `yaml:"datasets,omitempty"`

	// Defaults is applied to every dataset unless overridden.
	Defaults DatasetConfig `yaml:"defaults,omitempty"`
}

// GetDataset returns the configuration for key merged over the defaults.
// Non-zero dataset fields win; header maps are merged with dataset values
// taking precedence.
func (cf *File) GetDataset(key string) (DatasetConfig, error) {
	ds, ok := cf.Datasets[key]
	if !ok {
		known := "none registered"
		if keys := cf.Keys(); len(keys) > 0 {
			known = "known: " + strings.Join(keys, ", ")
		}
		return DatasetConfig{}, fmt.Errorf("%w: %s (%s)", ErrDatasetNotFound, key, known)
	}

	result := cf.Defaults
	result.Headers = make(map[string]string, len(cf.Defaults.Headers)+len(ds.Headers))
	for k, v := range cf.Defaults.Headers {
		result.Headers[k] = v
	}

	if ds.Name != "" {
		result.Name = ds.Name
	}
	if ds.Source != "" {
		result.Source = ds.Source
	}
	if ds.Hint != "" {
		result.Hint = ds.Hint
	}
	if ds.Format != "" {
		result.Format = ds.Format
	}
	if ds.Timeout != 0 {
		result.Timeout = ds.Timeout
	}
	for k, v := range ds.Headers {
		result.Headers[k] = v
	}

	if result.Name == "" {
		result.Name = key
	}

	return result, nil
}

// Keys returns the registered dataset keys in sorted order.
func (cf *File) Keys() []string {
	return slices.Sorted(maps.Keys(cf.Datasets))
}
