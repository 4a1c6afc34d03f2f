package load

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nao1215/datapull/internal/model"
)

// Format names accepted by WithFormat and reported by Read.
const (
	FormatCSV     = "csv"
	FormatJSON    = "json"
	FormatParquet = "parquet"
	FormatXLSX    = "xlsx"
	FormatXLS     = "xls"
	FormatTarGz   = "tar.gz"
	FormatZip     = "zip"
)

// decoder turns plain (non-archive) content into a frame.
type decoder struct {
	name   string
	match  func(hint string) bool
	decode func(content []byte) (*model.Frame, error)
}

// plainDecoders is consulted in order; the last entry always matches.
var plainDecoders = []decoder{
	{name: FormatParquet, match: hasSuffix(".parquet"), decode: decodeParquet},
	{name: FormatXLSX, match: hasSuffix(".xlsx"), decode: decodeXLSX},
	{name: FormatXLS, match: hasSuffix(".xls"), decode: decodeXLS},
	{name: FormatJSON, match: hasSuffix(".json"), decode: decodeJSON},
	{name: FormatCSV, match: func(string) bool { return true }, decode: decodeCSV},
}

// archive extracts the single regular file of an archive.
type archive struct {
	name  string
	match func(hint, contentType string) bool
	open  func(content []byte) (member, error)
}

// member is the one file found inside an archive.
type member struct {
	name    string
	content []byte
}

var archives = []archive{
	{
		name: FormatTarGz,
		match: func(hint, contentType string) bool {
			return strings.HasSuffix(hint, ".tar.gz") || strings.HasSuffix(hint, ".tgz") ||
				(strings.Contains(contentType, "gzip") && strings.Contains(contentType, "tar"))
		},
		open: openTarGz,
	},
	{
		name: FormatZip,
		match: func(hint, contentType string) bool {
			return strings.HasSuffix(hint, ".zip") || strings.Contains(contentType, "zip")
		},
		open: openZip,
	},
}

func hasSuffix(ext string) func(string) bool {
	return func(hint string) bool {
		return strings.HasSuffix(hint, ext)
	}
}

// Option configures ReadFrame.
type Option func(*options)

type options struct {
	format string
}

// WithFormat forces the plain decoder by name instead of using the hint's
// extension. Archive detection still runs first. An empty name is ignored.
func WithFormat(name string) Option {
	return func(o *options) {
		o.format = strings.ToLower(strings.TrimSpace(name))
	}
}

// ReadFrame decodes content into a frame.
//
// hint is a filename or URL whose extension selects the decoder; contentType
// is the HTTP Content-Type, possibly empty. Archives must hold exactly one
// regular file, otherwise ErrEmptyArchive or *AmbiguousArchiveError is
// returned.
func ReadFrame(content []byte, hint, contentType string, opts ...Option) (*model.Frame, error) {
	frame, _, err := Read(content, hint, contentType, opts...)
	return frame, err
}

// Read is ReadFrame that also names the decoders it used, for example
// "csv", "zip:csv" or "tar.gz:parquet". The name covers as much of the chain
// as was chosen, so it is set even when decoding fails.
func Read(content []byte, hint, contentType string, opts ...Option) (*model.Frame, string, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	lowerHint := strings.ToLower(hint)
	lowerType := strings.ToLower(contentType)

	for _, a := range archives {
		if !a.match(lowerHint, lowerType) {
			continue
		}
		m, err := a.open(content)
		if err != nil {
			return nil, a.name, err
		}
		frame, inner, err := readPlain(m.content, m.name, o.format)
		if inner == "" {
			return frame, a.name, err
		}
		return frame, a.name + ":" + inner, err
	}

	return readPlain(content, hint, o.format)
}

func readPlain(content []byte, hint, format string) (*model.Frame, string, error) {
	d, err := pickDecoder(strings.ToLower(hint), format)
	if err != nil {
		return nil, "", err
	}

	frame, err := d.decode(content)
	if err != nil {
		return nil, d.name, fmt.Errorf("decode %s: %w", d.name, err)
	}
	return frame, d.name, nil
}

func pickDecoder(hint, format string) (decoder, error) {
	if format != "" {
		for _, d := range plainDecoders {
			if d.name == format {
				return d, nil
			}
		}
		return decoder{}, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
	}

	for _, d := range plainDecoders {
		if d.match(hint) {
			return d, nil
		}
	}
	// unreachable: the CSV entry matches everything
	return plainDecoders[len(plainDecoders)-1], nil
}

// Formats returns the plain format names accepted by WithFormat, sorted.
func Formats() []string {
	names := make([]string, 0, len(plainDecoders))
	for _, d := range plainDecoders {
		names = append(names, d.name)
	}
	slices.Sort(names)
	return names
}
