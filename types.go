package docroot

import "time"

// FileMeta is a snapshot of a file's serving attributes, taken fresh for every
// request. Nothing above the FileSystem caches it, so a file swapped on disk
// is observed by the next request.
type FileMeta struct {
	Size    int64
	ModTime time.Time
}

// TargetKind classifies what a request path resolved to inside the served root.
type TargetKind int

const (
	KindMissing TargetKind = iota
	KindFile
	KindDir
)

// Target is the result of resolving a request path. Meta is populated only for
// KindFile.
type Target struct {
	Path string
	Kind TargetKind
	Meta FileMeta
}

// Entry is one immediate child of a listed directory.
type Entry struct {
	Name string
	Dir  bool
}

// ResolutionKind says how a located request should be answered.
type ResolutionKind int

const (
	// ResolveFile streams the file at Resolution.Path.
	ResolveFile ResolutionKind = iota
	// ResolveListing renders Resolution.Entries as a directory listing.
	ResolveListing
)

// Resolution is the serving decision for one request path: either a concrete
// file (with its metadata snapshot) or a directory listing.
type Resolution struct {
	Kind    ResolutionKind
	Path    string
	Meta    FileMeta
	Entries []Entry
}
