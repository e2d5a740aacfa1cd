package docroot

import (
	"net/http"
	"time"
)

// Unmodified reports whether a file with the given modification time is still
// fresh for a client holding the If-Modified-Since header value ims. The
// comparison runs at second granularity, so a file modified within the same
// second the client already holds counts as unmodified. An absent or
// unparseable header, or a zero modification time, means the file must be
// served in full.
func Unmodified(ims string, modTime time.Time) bool {
	if ims == "" || modTime.IsZero() {
		return false
	}

	t, err := http.ParseTime(ims)
	if err != nil {
		return false
	}

	return !modTime.Truncate(time.Second).After(t)
}
