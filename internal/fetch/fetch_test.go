package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchRejectsNonHTTPScheme(t *testing.T) {
	f := New(nil)
	_, err := f.Fetch(context.Background(), "ftp://example.com/video.mp4", t.TempDir(), 0)
	require.Error(t, err)
}

func TestFetchSuccess(t *testing.T) {
	body := strings.Repeat("x", 1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	dest := t.TempDir()
	f := New(nil)
	path, err := f.Fetch(context.Background(), srv.URL+"/clip.mp4", dest, 0)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filepath.Base(path), "remote-"))
	assert.True(t, strings.HasSuffix(path, ".mp4"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
}

func TestFetchRejectsDisallowedType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	dest := t.TempDir()
	f := New(nil)
	_, err := f.Fetch(context.Background(), srv.URL+"/page", dest, 0)
	require.Error(t, err)

	entries, _ := os.ReadDir(dest)
	assert.Empty(t, entries)
}

func TestFetchOctetStreamWithAllowedExtension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("data"))
	}))
	defer srv.Close()

	dest := t.TempDir()
	f := New(nil)
	path, err := f.Fetch(context.Background(), srv.URL+"/clip.webm", dest, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".webm"))
}

func TestFetchEnforcesSizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	dest := t.TempDir()
	f := New(nil)
	_, err := f.Fetch(context.Background(), srv.URL+"/big.mp4", dest, 1024)
	require.Error(t, err)

	entries, _ := os.ReadDir(dest)
	assert.Empty(t, entries, "partial file must be removed on size overrun")
}

func TestFetchRejectsHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(nil)
	_, err := f.Fetch(context.Background(), srv.URL+"/missing.mp4", t.TempDir(), 0)
	require.Error(t, err)
}
