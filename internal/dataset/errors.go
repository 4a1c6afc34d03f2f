package dataset

import (
	"errors"
	"io/fs"
)

var (
	// ErrInvalidRows is returned when a non-positive row count is requested.
	ErrInvalidRows = errors.New("number of rows must be positive")

	// ErrUnknownFile is returned for a file key the dataset does not define.
	ErrUnknownFile = errors.New("unknown dataset file")

	// ErrEmptyFile is returned when a network file has no data lines.
	ErrEmptyFile = errors.New("no data to parse")
)

// MissingFileError is returned when an expected dataset file does not exist.
type MissingFileError struct {
	Path string
}

// Error implements the error interface.
func (e *MissingFileError) Error() string {
	return "missing file: " + e.Path
}

// Unwrap makes errors.Is(err, fs.ErrNotExist) report true.
func (e *MissingFileError) Unwrap() error {
	return fs.ErrNotExist
}
