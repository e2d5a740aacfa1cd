// Package filesystem provides the os.Root-backed read surface for docroot.
// The root sandbox resolves symlinks and relative segments inside the kernel,
// so nothing opened through it can escape the served directory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/sagarc03/docroot"
)

// Store implements docroot.FileSystem over a sandboxed directory root.
type Store struct {
	root *os.Root
}

// NewStore creates a Store reading from the given root directory. The root
// provides sandboxed file operations preventing path traversal.
func NewStore(root *os.Root) *Store {
	return &Store{root: root}
}

// Stat resolves path and classifies it. A path that does not exist is
// KindMissing with no error; irregular entries (sockets, devices, dangling
// links) are also KindMissing since they cannot be served. Metadata is read
// fresh on every call.
func (s *Store) Stat(ctx context.Context, path string) (docroot.Target, error) {
	if err := ctx.Err(); err != nil {
		return docroot.Target{}, err
	}

	info, err := s.root.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return docroot.Target{Path: path, Kind: docroot.KindMissing}, nil
		}
		return docroot.Target{}, fmt.Errorf("stat %s: %w", path, err)
	}

	switch {
	case info.Mode().IsRegular():
		return docroot.Target{
			Path: path,
			Kind: docroot.KindFile,
			Meta: docroot.FileMeta{Size: info.Size(), ModTime: info.ModTime()},
		}, nil
	case info.IsDir():
		return docroot.Target{Path: path, Kind: docroot.KindDir}, nil
	default:
		return docroot.Target{Path: path, Kind: docroot.KindMissing}, nil
	}
}

// Open opens a file for reading. Returns docroot.ErrNotFound if the file does
// not exist.
func (s *Store) Open(ctx context.Context, path string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, docroot.ErrNotFound
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return f, nil
}

// ReadDir returns the immediate children of the directory at path, sorted by
// name. Returns docroot.ErrNotFound if the directory does not exist.
func (s *Store) ReadDir(ctx context.Context, path string) ([]docroot.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, docroot.ErrNotFound
		}
		return nil, fmt.Errorf("read dir %s: %w", path, err)
	}

	entries := make([]docroot.Entry, 0, len(dirEntries))
	for _, e := range dirEntries {
		entries = append(entries, docroot.Entry{Name: e.Name(), Dir: e.IsDir()})
	}

	return entries, nil
}
