// Package docroot provides a static file server library with correct HTTP
// caching and partial-content semantics over a sandboxed filesystem subtree.
//
// Docroot resolves request paths against a served root, rejecting directory
// traversal, and serves files or directory listings with support for
// conditional GET (If-Modified-Since), single byte-range requests, HEAD, and
// extension-based MIME type inference.
//
// # Key Components
//
//   - Service: resolves a request path to a serving decision (file or listing)
//   - FileSystem: interface for the read surface (os.Root-backed filesystem)
//   - MimeRegistry: extensible lower-cased extension to content-type map
//   - ParseRange: single byte-range parsing with full-content fallback
//   - Unmodified: If-Modified-Since freshness at second granularity
//
// # Example Usage
//
//	root, err := os.OpenRoot("/srv/www")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	service := docroot.NewService(filesystem.NewStore(root))
//
//	res, err := service.Locate(ctx, "docs/guide")
//
// The filesystem is the sole source of truth: metadata is fetched fresh per
// request and never cached, so files swapped on disk are observed by the next
// request. See the http package for the request dispatcher and server
// lifecycle, and the filesystem package for the os.Root-backed store.
package docroot
