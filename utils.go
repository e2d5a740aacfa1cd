package docroot

import (
	"fmt"
	"path"
	"strings"
)

// CleanRequestPath turns a decoded URL path into a root-relative filesystem
// path. Any path carrying a ".." segment is rejected with ErrForbidden before
// cleaning, so traversal attempts never reach the filesystem even when they
// would cancel out lexically. The empty path and "/" resolve to ".", the
// served root itself.
func CleanRequestPath(p string) (string, error) {
	if containsDotDot(p) {
		return "", fmt.Errorf("clean request path %q: %w", p, ErrForbidden)
	}

	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" {
		return ".", nil
	}
	return p, nil
}

// containsDotDot reports whether any slash-delimited segment of p is exactly
// "..". Names that merely contain dots, like "a..b" or "..hidden", pass.
func containsDotDot(p string) bool {
	if !strings.Contains(p, "..") {
		return false
	}
	for _, seg := range strings.FieldsFunc(p, isSlashRune) {
		if seg == ".." {
			return true
		}
	}
	return false
}

func isSlashRune(r rune) bool {
	return r == '/' || r == '\\'
}
