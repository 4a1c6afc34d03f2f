package load

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// openTarGz returns the only regular file of a gzip-compressed tar archive.
// Directories, links and other special entries are ignored.
func openTarGz(content []byte) (member, error) {
	gz, err := gzip.NewReader(bytes.NewReader(content))
	if err != nil {
		return member{}, fmt.Errorf("open %s: %w", FormatTarGz, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	var (
		names []string
		first member
	)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return member{}, fmt.Errorf("read %s: %w", FormatTarGz, err)
		}
		if !hdr.FileInfo().Mode().IsRegular() {
			continue
		}

		names = append(names, hdr.Name)
		if len(names) > 1 {
			// Keep listing so the error names every member.
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return member{}, fmt.Errorf("read %s member %s: %w", FormatTarGz, hdr.Name, err)
		}
		first = member{name: hdr.Name, content: data}
	}

	if err := single(FormatTarGz, names); err != nil {
		return member{}, err
	}
	return first, nil
}

// openZip returns the only file of a zip archive. Entries whose name ends
// with "/" are directories and are ignored.
func openZip(content []byte) (member, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return member{}, fmt.Errorf("open %s: %w", FormatZip, err)
	}

	var files []*zip.File
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		files = append(files, f)
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	if err := single(FormatZip, names); err != nil {
		return member{}, err
	}

	rc, err := files[0].Open()
	if err != nil {
		return member{}, fmt.Errorf("open %s member %s: %w", FormatZip, files[0].Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return member{}, fmt.Errorf("read %s member %s: %w", FormatZip, files[0].Name, err)
	}
	return member{name: files[0].Name, content: data}, nil
}

func single(format string, names []string) error {
	switch len(names) {
	case 0:
		return fmt.Errorf("%s: %w", format, ErrEmptyArchive)
	case 1:
		return nil
	default:
		return &AmbiguousArchiveError{Format: format, Members: names}
	}
}
