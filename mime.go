package docroot

import (
	"path"
	"strings"
	"sync"
)

// defaultMimeTypes seeds every new registry. Keys are stored without the
// leading dot and lower-cased.
var defaultMimeTypes = map[string]string{
	// text
	"html": "text/html; charset=utf-8",
	"htm":  "text/html; charset=utf-8",
	"css":  "text/css; charset=utf-8",
	"js":   "text/javascript; charset=utf-8",
	"mjs":  "text/javascript; charset=utf-8",
	"json": "application/json",
	"xml":  "text/xml; charset=utf-8",
	"txt":  "text/plain; charset=utf-8",
	"md":   "text/markdown; charset=utf-8",
	"csv":  "text/csv; charset=utf-8",

	// images
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"webp": "image/webp",
	"avif": "image/avif",
	"ico":  "image/x-icon",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",

	// audio
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"flac": "audio/flac",
	"m4a":  "audio/mp4",

	// video
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"mov":  "video/quicktime",
	"mkv":  "video/x-matroska",
	"avi":  "video/x-msvideo",

	// fonts
	"woff":  "font/woff",
	"woff2": "font/woff2",
	"ttf":   "font/ttf",
	"otf":   "font/otf",

	// documents and archives
	"pdf": "application/pdf",
	"zip": "application/zip",
	"gz":  "application/gzip",
	"tar": "application/x-tar",
	"bz2": "application/x-bzip2",
	"7z":  "application/x-7z-compressed",
	"rar": "application/vnd.rar",

	// binary
	"wasm": "application/wasm",
	"bin":  "application/octet-stream",
}

// MimeRegistry maps lower-cased file extensions to content types. Lookups are
// read-mostly; Merge may run at any time (config reload), so access to the map
// is guarded.
type MimeRegistry struct {
	mu    sync.RWMutex
	types map[string]string
}

// NewMimeRegistry returns a registry seeded with the default extension table.
func NewMimeRegistry() *MimeRegistry {
	m := &MimeRegistry{types: make(map[string]string, len(defaultMimeTypes))}
	m.Merge(defaultMimeTypes)
	return m
}

// normalizeExt strips the leading dot and lower-cases, so ".HTML", "HTML" and
// "html" address the same entry.
func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Lookup returns the content type registered for ext. The second return is
// false for unknown extensions; callers leave Content-Type unset in that case.
func (m *MimeRegistry) Lookup(ext string) (string, bool) {
	key := normalizeExt(ext)
	if key == "" {
		return "", false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	ct, ok := m.types[key]
	return ct, ok
}

// TypeByPath looks up the content type for p's extension.
func (m *MimeRegistry) TypeByPath(p string) (string, bool) {
	return m.Lookup(path.Ext(p))
}

// Merge registers every mapping in types, overwriting existing entries.
// Entries with an empty extension or content type are skipped. Merge is safe
// against concurrent lookups; every lookup after Merge returns observes the
// new entries.
func (m *MimeRegistry) Merge(types map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for ext, ct := range types {
		key := normalizeExt(ext)
		if key == "" || ct == "" {
			continue
		}
		m.types[key] = ct
	}
}

// Len returns the number of registered extensions.
func (m *MimeRegistry) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.types)
}
