package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/sagarc03/docroot"
	"github.com/sagarc03/docroot/metrics"
)

// Site is the resolution surface the dispatcher serves from.
type Site interface {
	Locate(ctx context.Context, requestPath string) (docroot.Resolution, error)
	Open(ctx context.Context, path string) (io.ReadSeekCloser, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled" yaml:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins" yaml:"allowed_origins,omitempty"`
	AllowedMethods   []string `mapstructure:"allowed_methods" yaml:"allowed_methods,omitempty"`
	AllowedHeaders   []string `mapstructure:"allowed_headers" yaml:"allowed_headers,omitempty"`
	ExposedHeaders   []string `mapstructure:"exposed_headers" yaml:"exposed_headers,omitempty"`
	AllowCredentials bool     `mapstructure:"allow_credentials" yaml:"allow_credentials,omitempty"`
	MaxAge           int      `mapstructure:"max_age" yaml:"max_age,omitempty"`
}

type HandlerConfig struct {
	CORS CORSConfig

	// RateLimit caps requests per second per client IP; 0 disables it.
	RateLimit int

	// Metrics receives per-request observations when non-nil.
	Metrics *metrics.Metrics
}

// Handler dispatches GET and HEAD requests against a Site.
type Handler struct {
	config HandlerConfig
	site   Site
	mime   *docroot.MimeRegistry
}

// NewHandler creates a new Handler serving the given site. The mime registry
// may be merged into while the handler is live.
func NewHandler(config *HandlerConfig, site Site, mime *docroot.MimeRegistry) *Handler {
	return &Handler{
		config: *config,
		site:   site,
		mime:   mime,
	}
}

// Router returns an http.Handler routing every GET and HEAD to the dispatcher.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID())
	r.Use(AccessLog())
	if h.config.Metrics != nil {
		r.Use(Observe(h.config.Metrics))
	}
	if h.config.RateLimit > 0 {
		r.Use(RateLimit(h.config.RateLimit))
	}

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/*", h.handleGet)
	r.Head("/*", h.handleGet)

	return r
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	// The request body is read out and thrown away before any response work
	// starts, so a slow upload cannot interleave with the response stream.
	_, _ = io.Copy(io.Discard, r.Body)

	res, err := h.site.Locate(r.Context(), r.URL.Path)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if res.Kind == docroot.ResolveListing {
		h.serveListing(w, r, res)
		return
	}
	h.serveFile(w, r, res)
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, res docroot.Resolution) {
	if docroot.Unmodified(r.Header.Get("If-Modified-Since"), res.Meta.ModTime) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if r.Method == http.MethodHead {
		h.setFileHeaders(w, res)
		w.WriteHeader(http.StatusOK)
		return
	}

	f, err := h.site.Open(r.Context(), res.Path)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	defer func() { _ = f.Close() }()

	if spec, ok := docroot.ParseRange(r.Header.Get("Range"), res.Meta.Size); ok {
		h.serveRange(w, r, res, f, spec)
		return
	}

	h.setFileHeaders(w, res)
	if r.ProtoMajor == 1 && r.ProtoMinor == 0 {
		// HTTP/1.0 has no chunked transfer, so the length goes on the wire.
		w.Header().Set("Content-Length", strconv.FormatInt(res.Meta.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, f); err != nil {
		slog.Error("stream file",
			"request_id", RequestIDFromContext(r.Context()),
			"path", res.Path,
			"err", err)
	}
}

func (h *Handler) serveRange(w http.ResponseWriter, r *http.Request, res docroot.Resolution, f io.ReadSeekCloser, spec docroot.RangeSpec) {
	if _, err := f.Seek(spec.Start, io.SeekStart); err != nil {
		h.handleError(w, r, err)
		return
	}

	h.setFileHeaders(w, res)
	w.Header().Set("Content-Range", spec.ContentRange(res.Meta.Size))
	w.Header().Set("Content-Length", strconv.FormatInt(spec.Length(), 10))
	w.WriteHeader(http.StatusPartialContent)

	if _, err := io.CopyN(w, f, spec.Length()); err != nil {
		slog.Error("stream range",
			"request_id", RequestIDFromContext(r.Context()),
			"path", res.Path,
			"err", err)
	}
}

func (h *Handler) setFileHeaders(w http.ResponseWriter, res docroot.Resolution) {
	w.Header().Set("Accept-Ranges", "bytes")
	if !res.Meta.ModTime.IsZero() {
		w.Header().Set("Last-Modified", res.Meta.ModTime.UTC().Format(http.TimeFormat))
	}
	if ct, ok := h.mime.TypeByPath(res.Path); ok {
		w.Header().Set("Content-Type", ct)
	}
}

func (h *Handler) serveListing(w http.ResponseWriter, r *http.Request, res docroot.Resolution) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}

	if err := writeListing(w, r.URL.Path, res.Entries); err != nil {
		// Headers are already on the wire; all that is left is to log and
		// let the connection die without the rest of the body.
		slog.Error("render listing",
			"request_id", RequestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"err", err)
	}
}

// handleError maps resolution and I/O failures onto the client-visible status
// surface: traversal is 403 with an empty body, everything else the 404 page.
// Details stay in the log.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	id := RequestIDFromContext(r.Context())

	if errors.Is(err, docroot.ErrForbidden) {
		slog.Warn("traversal blocked", "request_id", id, "path", r.URL.Path, "err", err)
		w.WriteHeader(http.StatusForbidden)
		return
	}

	if errors.Is(err, docroot.ErrNotFound) {
		slog.Debug("not found", "request_id", id, "path", r.URL.Path)
	} else {
		slog.Error("request error", "request_id", id, "path", r.URL.Path, "err", err)
	}
	writeNotFound(w)
}
