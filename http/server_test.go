package http_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/docroot"
	"github.com/sagarc03/docroot/filesystem"
	dochttp "github.com/sagarc03/docroot/http"
)

func startServer(t *testing.T, files map[string]string) *dochttp.Server {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	root, err := os.OpenRoot(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	service := docroot.NewService(filesystem.NewStore(root))
	handler := dochttp.NewHandler(&dochttp.HandlerConfig{}, service, docroot.NewMimeRegistry())

	server := dochttp.NewServer("127.0.0.1:0", handler.Router())
	require.NoError(t, server.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	})

	return server
}

func TestServer_StartExposesBoundAddr(t *testing.T) {
	server := startServer(t, nil)

	addr := server.Addr()
	require.NotEmpty(t, addr)

	_, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	assert.NotEqual(t, "0", port)
}

func TestServer_ServesOverRealSocket(t *testing.T) {
	server := startServer(t, map[string]string{"greeting.txt": "hello over tcp"})

	resp, err := http.Get("http://" + server.Addr() + "/greeting.txt")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello over tcp", string(body))
	assert.Equal(t, "bytes", resp.Header.Get("Accept-Ranges"))
}

func TestServer_RangeOverRealSocket(t *testing.T) {
	server := startServer(t, map[string]string{"data.txt": "0123456789"})

	req, err := http.NewRequest("GET", "http://"+server.Addr()+"/data.txt", nil)
	require.NoError(t, err)
	req.Header.Set("Range", "bytes=2-5")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusPartialContent, resp.StatusCode)
	assert.Equal(t, "2345", string(body))
	assert.Equal(t, "bytes 2-5/10", resp.Header.Get("Content-Range"))
	assert.Equal(t, int64(4), resp.ContentLength)
}

func TestServer_StopClosesListener(t *testing.T) {
	server := startServer(t, nil)
	addr := server.Addr()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Stop(ctx))

	_, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
	assert.Error(t, err)
}
