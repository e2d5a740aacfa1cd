package http

import (
	"fmt"
	"html"
	"io"
	"net/url"
	"strings"

	"github.com/sagarc03/docroot"
)

// writeListing renders the immediate children of a directory as an unordered
// list of links. Each href is the request path with the child name appended,
// so the links resolve without a trailing-slash redirect.
func writeListing(w io.Writer, requestPath string, entries []docroot.Entry) error {
	title := html.EscapeString(requestPath)

	if _, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head><title>Index of %s</title></head>\n<body>\n<h1>Index of %s</h1>\n<ul>\n", title, title); err != nil {
		return fmt.Errorf("write listing: %w", err)
	}

	for _, e := range entries {
		href := listingHref(requestPath, e.Name)
		if _, err := fmt.Fprintf(w, "<li><a href=%q>%s</a></li>\n", href, html.EscapeString(e.Name)); err != nil {
			return fmt.Errorf("write listing: %w", err)
		}
	}

	if _, err := io.WriteString(w, "</ul>\n</body>\n</html>\n"); err != nil {
		return fmt.Errorf("write listing: %w", err)
	}
	return nil
}

func listingHref(requestPath, name string) string {
	escaped := url.PathEscape(name)
	if strings.HasSuffix(requestPath, "/") {
		return requestPath + escaped
	}
	return requestPath + "/" + escaped
}
