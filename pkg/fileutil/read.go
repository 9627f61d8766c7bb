// Package fileutil holds small file helpers: size-limited reads and atomic writes.
package fileutil

import (
	"io"
	"os"

	"github.com/wk-j/opencode-helix/internal/errors"
)

// MaxFileSize is the largest file ReadFileWithLimit accepts (1 MiB).
const MaxFileSize = 1024 * 1024

// ErrFileTooLarge indicates that a file exceeded MaxFileSize.
var ErrFileTooLarge = errors.Newf("file exceeds maximum size of %d bytes", MaxFileSize)

// ReadFileWithLimit reads a file of at most MaxFileSize bytes.
func ReadFileWithLimit(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	// fail fast on regular files
	if info, err := f.Stat(); err == nil && info.Size() > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

// ReadAndRemove reads a temporary hand-off file and deletes it. The file is
// removed even when reading fails; a missing file is not removed twice.
func ReadAndRemove(path string) ([]byte, error) {
	data, readErr := ReadFileWithLimit(path)

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) && readErr == nil {
		return data, errors.Wrap(err, "removing file")
	}
	return data, readErr
}
