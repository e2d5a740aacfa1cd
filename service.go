package docroot

import (
	"context"
	"fmt"
	"io"
	"path"
)

// FileSystem defines the read surface the server resolves requests against.
// Implementations must fetch metadata fresh on every call; nothing above this
// interface caches results, so the filesystem stays the sole source of truth.
//
// All methods accept a context for cancellation and timeout control.
// Implementations should respect context cancellation and return appropriate
// errors.
type FileSystem interface {
	// Stat resolves path and classifies it as a file, a directory, or
	// missing.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - path: Root-relative path to resolve
	//
	// Returns:
	//   - Target: Classification plus a fresh metadata snapshot for files.
	//     A path that resolves to nothing servable (absent, escaping the
	//     root, or an unrecognized entity type) is KindMissing, not an
	//     error.
	//   - error: Only genuine filesystem failures
	Stat(ctx context.Context, path string) (Target, error)

	// Open returns the file at path for streaming.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - path: Root-relative path of a regular file
	//
	// Returns:
	//   - io.ReadSeekCloser: Reader with seek capability for range reads
	//   - error: ErrNotFound if the file doesn't exist, or other I/O errors
	//
	// The caller is responsible for closing the returned ReadSeekCloser.
	Open(ctx context.Context, path string) (io.ReadSeekCloser, error)

	// ReadDir lists the immediate children of the directory at path,
	// sorted by name.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - path: Root-relative path of a directory
	//
	// Returns:
	//   - []Entry: Child names with a directory flag; empty slice (not
	//     nil) for an empty directory
	//   - error: ErrNotFound if the directory doesn't exist, or other I/O
	//     errors
	ReadDir(ctx context.Context, path string) ([]Entry, error)
}

// Service maps request paths to serving decisions against a FileSystem.
type Service struct {
	fs FileSystem
}

func NewService(fs FileSystem) *Service {
	return &Service{fs: fs}
}

// Locate resolves a request path to what should be served for it.
//
// The decision tree:
//  1. Paths carrying a ".." segment are rejected with ErrForbidden before
//     anything touches the filesystem.
//  2. A path resolving to nothing servable is ErrNotFound.
//  3. A directory serves its index.html child when one exists, otherwise a
//     listing of its immediate children.
//  4. A file serves itself.
//
// The metadata in the returned Resolution is a snapshot taken for this call;
// callers must not reuse it across requests.
func (s *Service) Locate(ctx context.Context, requestPath string) (Resolution, error) {
	if err := ctx.Err(); err != nil {
		return Resolution{}, fmt.Errorf("locate: %w", err)
	}

	rel, err := CleanRequestPath(requestPath)
	if err != nil {
		return Resolution{}, fmt.Errorf("locate: %w", err)
	}

	target, err := s.fs.Stat(ctx, rel)
	if err != nil {
		return Resolution{}, fmt.Errorf("locate %s: %w", rel, err)
	}

	switch target.Kind {
	case KindFile:
		return Resolution{Kind: ResolveFile, Path: target.Path, Meta: target.Meta}, nil
	case KindDir:
		return s.locateDir(ctx, target.Path)
	default:
		return Resolution{}, fmt.Errorf("locate %s: %w", rel, ErrNotFound)
	}
}

// locateDir prefers the directory's index.html child; a directory named
// index.html does not count.
func (s *Service) locateDir(ctx context.Context, dir string) (Resolution, error) {
	index := path.Join(dir, "index.html")

	target, statErr := s.fs.Stat(ctx, index)
	if statErr != nil {
		return Resolution{}, fmt.Errorf("locate %s: %w", index, statErr)
	}
	if target.Kind == KindFile {
		return Resolution{Kind: ResolveFile, Path: target.Path, Meta: target.Meta}, nil
	}

	entries, readErr := s.fs.ReadDir(ctx, dir)
	if readErr != nil {
		return Resolution{}, fmt.Errorf("locate %s: %w", dir, readErr)
	}

	return Resolution{Kind: ResolveListing, Path: dir, Entries: entries}, nil
}

// Open returns the file at a previously located path for streaming. The caller
// closes it.
func (s *Service) Open(ctx context.Context, p string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	f, err := s.fs.Open(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}

	return f, nil
}
