package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/nao1215/datapull/internal/config"
	"github.com/nao1215/datapull/internal/model"
)

// Kind tells how the columns of a network file are named.
type Kind int

const (
	// EdgeList holds "src dst" or "src dst weight" lines.
	EdgeList Kind = iota
	// ActivityLog holds "userA userB timestamp interaction" lines.
	ActivityLog
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case EdgeList:
		return "edgelist"
	case ActivityLog:
		return "activity"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// NetworkFile is one file of a network dataset.
type NetworkFile struct {
	Key  string
	Name string
	Kind Kind
}

// Network is a directory of whitespace-delimited files under DATA_ROOT.
type Network struct {
	// Name is the display name.
	Name string

	// Slug prefixes report file names.
	Slug string

	// Dir is the directory name under DATA_ROOT.
	Dir string

	// Files are listed in report order.
	Files []NetworkFile
}

// Head is the first rows of one network file.
type Head struct {
	Key   string
	Path  string
	Frame *model.Frame
}

// Path returns the dataset directory. DATA_ROOT must be configured.
func (n Network) Path(settings config.Settings) (string, error) {
	root, err := settings.RequireDataRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, n.Dir), nil
}

// File returns the file registered under key.
func (n Network) File(key string) (NetworkFile, error) {
	for _, f := range n.Files {
		if f.Key == key {
			return f, nil
		}
	}
	return NetworkFile{}, fmt.Errorf("%w: %q in %s", ErrUnknownFile, key, n.Name)
}

// LoadHead reads at most nrows non-empty lines of the file registered under
// key and names its columns from the file kind and the column count.
func (n Network) LoadHead(settings config.Settings, key string, nrows int) (*model.Frame, error) {
	if nrows <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRows, nrows)
	}

	file, err := n.File(key)
	if err != nil {
		return nil, err
	}

	dir, err := n.Path(settings)
	if err != nil {
		return nil, err
	}
	path := resolvePath(filepath.Join(dir, file.Name))

	frame, err := readWhitespaceHead(path, nrows)
	if err != nil {
		return nil, err
	}
	if err := frame.SetColumns(columnNames(file.Kind, frame.NumCols())); err != nil {
		return nil, err
	}
	return frame, nil
}

// LoadHeads reads every file in order. Nothing is returned unless all
// files could be read.
func (n Network) LoadHeads(settings config.Settings, nrows int) ([]Head, error) {
	dir, err := n.Path(settings)
	if err != nil {
		return nil, err
	}

	heads := make([]Head, 0, len(n.Files))
	for _, f := range n.Files {
		frame, err := n.LoadHead(settings, f.Key, nrows)
		if err != nil {
			return nil, err
		}
		heads = append(heads, Head{Key: f.Key, Path: resolvePath(filepath.Join(dir, f.Name)), Frame: frame})
	}
	return heads, nil
}

func columnNames(kind Kind, n int) []string {
	switch {
	case kind == EdgeList && n == 2:
		return []string{"src", "dst"}
	case kind == EdgeList && n == 3:
		return []string{"src", "dst", "weight"}
	case kind == ActivityLog && n == 4:
		return []string{"userA", "userB", "timestamp", "interaction"}
	default:
		return model.PositionalColumns(n)
	}
}

// resolvePath returns path, or its gzip-compressed sibling "<path>.gz" when
// only that one exists.
func resolvePath(path string) string {
	if strings.HasSuffix(path, ".gz") {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if _, err := os.Stat(path + ".gz"); err == nil {
		return path + ".gz"
	}
	return path
}

// readWhitespaceHead parses the first nrows non-empty lines of a headerless
// file whose fields are separated by runs of whitespace. Files ending in
// ".gz" are decompressed. The first line fixes the column count.
func readWhitespaceHead(path string, nrows int) (*model.Frame, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingFileError{Path: path}
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	r = transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	var frame *model.Frame
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if frame == nil {
			frame = model.NewFrame(model.PositionalColumns(len(fields)))
		}

		row := make([]any, len(fields))
		for i, field := range fields {
			row[i] = model.InferCell(field)
		}
		if err := frame.AppendRow(row); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		if frame.NumRows() == nrows {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if frame == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	return frame, nil
}
