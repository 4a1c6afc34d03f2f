package load

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyArchive is returned when an archive contains no regular files.
	ErrEmptyArchive = errors.New("archive contains no files")

	// ErrNoColumns is returned when the input has no header row to name columns.
	ErrNoColumns = errors.New("no columns to parse")

	// ErrUnknownFormat is returned when a forced format name is not supported.
	ErrUnknownFormat = errors.New("unknown format")

	// ErrUnsupportedJSON is returned when a JSON document is not a table.
	ErrUnsupportedJSON = errors.New("unsupported JSON layout")
)

// AmbiguousArchiveError is returned when an archive holds more than one
// regular file. Members lists every candidate in archive order.
type AmbiguousArchiveError struct {
	Format  string
	Members []string
}

// Error implements the error interface.
func (e *AmbiguousArchiveError) Error() string {
	return fmt.Sprintf("%s archive contains multiple files: %s", e.Format, strings.Join(e.Members, ", "))
}
