package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/docroot"
	"github.com/sagarc03/docroot/filesystem"
	dochttp "github.com/sagarc03/docroot/http"
)

// MockSite is a mock implementation of http.Site
type MockSite struct {
	mock.Mock
}

func (m *MockSite) Locate(ctx context.Context, requestPath string) (docroot.Resolution, error) {
	args := m.Called(ctx, requestPath)
	return args.Get(0).(docroot.Resolution), args.Error(1)
}

func (m *MockSite) Open(ctx context.Context, path string) (io.ReadSeekCloser, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadSeekCloser), args.Error(1)
}

// newSite builds a router over a real filesystem store populated with files.
// Keys are slash paths; parent directories are created as needed.
func newSite(t *testing.T, files map[string]string) (http.Handler, *docroot.MimeRegistry, string) {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	root, err := os.OpenRoot(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	registry := docroot.NewMimeRegistry()
	service := docroot.NewService(filesystem.NewStore(root))
	handler := dochttp.NewHandler(&dochttp.HandlerConfig{}, service, registry)

	return handler.Router(), registry, dir
}

func doRequest(router http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Get_File(t *testing.T) {
	router, _, _ := newSite(t, map[string]string{"hello.txt": "hello world"})

	rec := doRequest(router, "GET", "/hello.txt", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello world", rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	assert.NotEmpty(t, rec.Header().Get("Last-Modified"))
}

func TestHandler_Get_Missing(t *testing.T) {
	router, _, _ := newSite(t, nil)

	rec := doRequest(router, "GET", "/no/such/file.txt", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "404 Not Found")
}

func TestHandler_Get_Traversal(t *testing.T) {
	router, _, _ := newSite(t, map[string]string{"safe.txt": "safe"})

	for _, target := range []string{
		"/../etc/passwd",
		"/..",
		"/a/../../b",
		"/safe.txt/../../../etc/passwd",
	} {
		rec := doRequest(router, "GET", target, nil)

		assert.Equal(t, http.StatusForbidden, rec.Code, "target %q", target)
		assert.Empty(t, rec.Body.String(), "target %q", target)
	}
}

func TestHandler_ConditionalGet(t *testing.T) {
	router, _, dir := newSite(t, map[string]string{"page.html": "<p>hi</p>"})

	modTime := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "page.html"), modTime, modTime))

	tests := []struct {
		name string
		ims  time.Time
		want int
	}{
		{"equal", modTime, http.StatusNotModified},
		{"after", modTime.Add(time.Hour), http.StatusNotModified},
		{"before", modTime.Add(-time.Hour), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(router, "GET", "/page.html", map[string]string{
				"If-Modified-Since": tt.ims.Format(http.TimeFormat),
			})

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNotModified {
				assert.Empty(t, rec.Body.String())
				assert.Empty(t, rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestHandler_ConditionalGet_GarbledHeader(t *testing.T) {
	router, _, _ := newSite(t, map[string]string{"page.html": "<p>hi</p>"})

	rec := doRequest(router, "GET", "/page.html", map[string]string{
		"If-Modified-Since": "not a date",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<p>hi</p>", rec.Body.String())
}

func TestHandler_Head_MatchesGet(t *testing.T) {
	router, _, _ := newSite(t, map[string]string{"hello.txt": "hello world"})

	get := doRequest(router, "GET", "/hello.txt", nil)
	head := doRequest(router, "HEAD", "/hello.txt", nil)

	assert.Equal(t, get.Code, head.Code)
	assert.Equal(t, get.Header().Get("Content-Type"), head.Header().Get("Content-Type"))
	assert.Equal(t, get.Header().Get("Accept-Ranges"), head.Header().Get("Accept-Ranges"))
	assert.Equal(t, get.Header().Get("Last-Modified"), head.Header().Get("Last-Modified"))
	assert.Empty(t, head.Body.String())
}

// rangeBody is a 1000-byte file with position-dependent content, so a sliced
// response can be checked byte for byte.
func rangeBody() string {
	b := make([]byte, 1000)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return string(b)
}

func TestHandler_Range(t *testing.T) {
	body := rangeBody()
	router, _, _ := newSite(t, map[string]string{"data.bin": body})

	tests := []struct {
		name          string
		header        string
		wantStatus    int
		wantBody      string
		wantRange     string
		wantLength    string
	}{
		{"first hundred", "bytes=0-99", http.StatusPartialContent, body[:100], "bytes 0-99/1000", "100"},
		{"suffix", "bytes=-100", http.StatusPartialContent, body[900:], "bytes 900-999/1000", "100"},
		{"open ended", "bytes=500-", http.StatusPartialContent, body[500:], "bytes 500-999/1000", "500"},
		{"end clipped", "bytes=900-2000", http.StatusPartialContent, body[900:], "bytes 900-999/1000", "100"},
		{"single byte", "bytes=42-42", http.StatusPartialContent, body[42:43], "bytes 42-42/1000", "1"},
		{"non numeric", "bytes=abc", http.StatusOK, body, "", ""},
		{"multi range", "bytes=0-49,100-149", http.StatusOK, body, "", ""},
		{"start at size", "bytes=1000-", http.StatusOK, body, "", ""},
		{"inverted", "bytes=200-100", http.StatusOK, body, "", ""},
		{"empty suffix", "bytes=-0", http.StatusOK, body, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(router, "GET", "/data.bin", map[string]string{"Range": tt.header})

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, tt.wantRange, rec.Header().Get("Content-Range"))
			if tt.wantLength != "" {
				assert.Equal(t, tt.wantLength, rec.Header().Get("Content-Length"))
			}
		})
	}
}

func TestHandler_Range_IgnoredOnHead(t *testing.T) {
	router, _, _ := newSite(t, map[string]string{"data.bin": rangeBody()})

	rec := doRequest(router, "HEAD", "/data.bin", map[string]string{"Range": "bytes=0-99"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Range"))
	assert.Empty(t, rec.Body.String())
}

func TestHandler_DirectoryWithIndex(t *testing.T) {
	router, _, _ := newSite(t, map[string]string{
		"site/index.html": "<h1>front</h1>",
		"site/other.txt":  "other",
	})

	rec := doRequest(router, "GET", "/site", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>front</h1>", rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestHandler_DirectoryListing(t *testing.T) {
	router, _, dir := newSite(t, map[string]string{
		"pub/a.txt":       "a",
		"pub/c.png":       "c",
		"pub/sub/ifc.txt": "nested",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "pub", "empty"), 0o755))

	rec := doRequest(router, "GET", "/pub", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)

	links := doc.Find("ul li a")
	require.Equal(t, 4, links.Length())

	hrefs := make(map[string]string)
	links.Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		require.True(t, ok)
		hrefs[s.Text()] = href
	})

	assert.Equal(t, map[string]string{
		"a.txt": "/pub/a.txt",
		"c.png": "/pub/c.png",
		"empty": "/pub/empty",
		"sub":   "/pub/sub",
	}, hrefs)
}

func TestHandler_RootListing(t *testing.T) {
	router, _, _ := newSite(t, map[string]string{"only.txt": "x"})

	rec := doRequest(router, "GET", "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)

	link := doc.Find("ul li a")
	require.Equal(t, 1, link.Length())
	href, _ := link.Attr("href")
	assert.Equal(t, "/only.txt", href)
	assert.Equal(t, "only.txt", link.Text())
}

func TestHandler_ListingEscapesNames(t *testing.T) {
	router, _, _ := newSite(t, map[string]string{"d/a b<c>.txt": "x"})

	rec := doRequest(router, "GET", "/d", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)

	link := doc.Find("ul li a")
	require.Equal(t, 1, link.Length())
	assert.Equal(t, "a b<c>.txt", link.Text())
	href, _ := link.Attr("href")
	assert.Equal(t, "/d/a%20b%3Cc%3E.txt", href)
}

func TestHandler_Head_Listing(t *testing.T) {
	router, _, _ := newSite(t, map[string]string{"d/a.txt": "x"})

	rec := doRequest(router, "HEAD", "/d", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Body.String())
}

func TestHandler_MimeCaseInsensitive(t *testing.T) {
	router, _, _ := newSite(t, map[string]string{
		"upper.JPG": "jpg",
		"lower.jpg": "jpg",
	})

	upper := doRequest(router, "GET", "/upper.JPG", nil)
	lower := doRequest(router, "GET", "/lower.jpg", nil)

	assert.Equal(t, "image/jpeg", upper.Header().Get("Content-Type"))
	assert.Equal(t, "image/jpeg", lower.Header().Get("Content-Type"))
}

func TestHandler_MimeMergeVisible(t *testing.T) {
	router, registry, _ := newSite(t, map[string]string{"model.gltf": "{}"})

	before := doRequest(router, "GET", "/model.gltf", nil)
	assert.Empty(t, before.Header().Get("Content-Type"))

	registry.Merge(map[string]string{"gltf": "model/gltf+json"})

	after := doRequest(router, "GET", "/model.gltf", nil)
	assert.Equal(t, "model/gltf+json", after.Header().Get("Content-Type"))
}

func TestHandler_UnknownExtension_NoContentType(t *testing.T) {
	router, _, _ := newSite(t, map[string]string{"blob.xyz": "data"})

	rec := doRequest(router, "GET", "/blob.xyz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Type"))
}

func TestHandler_HTTP10_ContentLength(t *testing.T) {
	router, _, _ := newSite(t, map[string]string{"hello.txt": "hello world"})

	req := httptest.NewRequest("GET", "/hello.txt", nil)
	req.Proto = "HTTP/1.0"
	req.ProtoMajor = 1
	req.ProtoMinor = 0
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, strconv.Itoa(len("hello world")), rec.Header().Get("Content-Length"))
}

func TestHandler_HTTP11_NoExplicitContentLength(t *testing.T) {
	router, _, _ := newSite(t, map[string]string{"hello.txt": "hello world"})

	rec := doRequest(router, "GET", "/hello.txt", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Length"))
}

// trackingReader reports whether it was read through to EOF.
type trackingReader struct {
	io.Reader
	drained bool
}

func (r *trackingReader) Read(p []byte) (int, error) {
	n, err := r.Reader.Read(p)
	if err == io.EOF {
		r.drained = true
	}
	return n, err
}

func TestHandler_DrainsRequestBody(t *testing.T) {
	router, _, _ := newSite(t, map[string]string{"hello.txt": "hello"})

	body := &trackingReader{Reader: io.LimitReader(neverEnding('x'), 1<<16)}
	req := httptest.NewRequest("GET", "/hello.txt", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.drained)
}

type neverEnding byte

func (b neverEnding) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(b)
	}
	return len(p), nil
}

func TestHandler_OpenFailure(t *testing.T) {
	site := new(MockSite)
	site.On("Locate", mock.Anything, "/broken.txt").Return(docroot.Resolution{
		Kind: docroot.ResolveFile,
		Path: "broken.txt",
		Meta: docroot.FileMeta{Size: 10, ModTime: time.Now()},
	}, nil)
	site.On("Open", mock.Anything, "broken.txt").Return(nil, errors.New("device yanked"))

	handler := dochttp.NewHandler(&dochttp.HandlerConfig{}, site, docroot.NewMimeRegistry())
	rec := doRequest(handler.Router(), "GET", "/broken.txt", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "device yanked")
	site.AssertExpectations(t)
}

func TestHandler_LocateFailure_NoDetailLeaked(t *testing.T) {
	site := new(MockSite)
	site.On("Locate", mock.Anything, "/x").
		Return(docroot.Resolution{}, errors.New("disk exploded"))

	handler := dochttp.NewHandler(&dochttp.HandlerConfig{}, site, docroot.NewMimeRegistry())
	rec := doRequest(handler.Router(), "GET", "/x", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk exploded")
	site.AssertExpectations(t)
}

func TestHandler_SymlinkEscape(t *testing.T) {
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("secret"), 0o644))

	router, _, dir := newSite(t, nil)
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(dir, "leak.txt")))

	rec := doRequest(router, "GET", "/leak.txt", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
}
