package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var (
	// ErrFileNotFound is returned when an input path does not exist
	ErrFileNotFound = errors.New("file not found")

	// ErrTooLarge is returned when an input exceeds the configured size limit
	ErrTooLarge = errors.New("input exceeds size limit")
)

// Source is a fully buffered input document
type Source struct {
	Path string // absolute
	Data []byte
}

// ReadSource reads path into memory, refusing files larger than maxBytes.
// A non-positive maxBytes disables the limit.
func ReadSource(path string, maxBytes int64) (*Source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	f, err := os.Open(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, abs)
		}
		return nil, fmt.Errorf("open %s: %w", abs, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", abs)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrTooLarge, abs, info.Size(), maxBytes)
	}

	var r io.Reader = f
	if maxBytes > 0 {
		// The file may grow between Stat and ReadAll
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", abs, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: %s (limit %d)", ErrTooLarge, abs, maxBytes)
	}

	return &Source{Path: abs, Data: data}, nil
}
