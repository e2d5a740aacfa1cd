// Package http provides the HTTP surface of docroot: the request dispatcher,
// its middleware chain, and the server lifecycle.
//
// # Dispatcher
//
// Every GET and HEAD request runs the same decision procedure:
//
//  1. Resolve the request path through the Site. A traversal attempt is 403
//     with an empty body; an unresolvable path is the 404 page.
//  2. A directory serves its index.html when one exists, otherwise an HTML
//     listing of its immediate children.
//  3. A file is checked against If-Modified-Since (304 when the client's copy
//     is current), then streamed in full or, for a valid single byte range,
//     as a 206 partial response. A malformed Range header downgrades to the
//     full file rather than erroring.
//
// Clients only ever observe statuses 200, 206, 304, 403, and 404 from the
// dispatcher (plus 429 from the optional rate limiter). Error details never
// appear in response bodies.
//
// # Usage
//
//	service := docroot.NewService(filesystem.NewStore(root))
//	registry := docroot.NewMimeRegistry()
//
//	handler := dochttp.NewHandler(&dochttp.HandlerConfig{}, service, registry)
//	server := dochttp.NewServer(":8080", handler.Router())
//
//	if err := server.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Stop(context.Background())
//
// Start returns once the socket is bound; Addr reports the resolved address,
// which makes ephemeral ports (":0") usable in tests.
//
// # Middleware
//
// Router wires RequestID, AccessLog, and optionally Observe (Prometheus),
// RateLimit (per-client-IP token bucket), and CORS, in that order, ahead of
// the dispatcher.
package http
