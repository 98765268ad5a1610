// Package fetch streams a video from an HTTP(S) URL to local disk
// with size, type, and redirect limits (spec.md §4.G). Grounded on
// the teacher pack's download-to-temp-file pattern
// (ManuGH-xg2g/internal/jobs/picons.go: client.Get -> os.CreateTemp ->
// io.Copy -> rename-on-success), generalized with the scheme/type/
// size/redirect gating spec.md requires and the teacher's picon
// fetcher does not need.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rzdor/volleyball-analytics/internal/motionlog"
	"github.com/rzdor/volleyball-analytics/internal/trimerr"
)

const (
	// DefaultMaxBytes is the default download size cap (spec.md §4.G).
	DefaultMaxBytes int64 = 100 * 1024 * 1024

	maxRedirects = 2
	connTimeout  = 30 * time.Second
)

var allowedExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mov":  true,
	".avi":  true,
}

var allowedContentTypes = map[string]bool{
	"video/mp4":        true,
	"video/webm":       true,
	"video/quicktime":  true,
	"video/x-msvideo":  true,
	"video/x-matroska": true,
}

// Fetcher downloads a remote video to local disk.
type Fetcher struct {
	logger motionlog.Logger
	client *http.Client
}

func New(logger motionlog.Logger) *Fetcher {
	return &Fetcher{
		logger: logger,
		client: &http.Client{
			Timeout: connTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
	}
}

// Fetch streams rawURL to destDir, enforcing scheme, content-type,
// redirect, and size limits. It returns the local path of the
// downloaded file, named remote-<uuid><ext>. On any failure the
// partial file is deleted (spec.md §4.G).
func (f *Fetcher) Fetch(ctx context.Context, rawURL, destDir string, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", trimerr.NewDownloadError(trimerr.DownloadScheme, 0, "unsupported URL scheme", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", trimerr.NewDownloadError(trimerr.DownloadNetwork, 0, "failed to build request", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if strings.Contains(err.Error(), "too many redirects") {
			return "", trimerr.NewDownloadError(trimerr.DownloadRedirect, 0, "too many redirects", err)
		}
		return "", trimerr.NewDownloadError(trimerr.DownloadNetwork, 0, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", trimerr.NewDownloadError(trimerr.DownloadHTTP, resp.StatusCode, fmt.Sprintf("download failed with status %d", resp.StatusCode), nil)
	}

	contentType := resp.Header.Get("Content-Type")
	ext := extensionFor(parsed.Path, contentType)
	if !isAllowedType(contentType, parsed.Path) {
		return "", trimerr.NewDownloadError(trimerr.DownloadType, http.StatusUnsupportedMediaType, fmt.Sprintf("unsupported content type %q", contentType), nil)
	}

	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if declared, err := strconv.ParseInt(cl, 10, 64); err == nil && declared > maxBytes {
			return "", trimerr.NewDownloadError(trimerr.DownloadSize, http.StatusRequestEntityTooLarge, "declared content-length exceeds limit", nil)
		}
	}

	name := fmt.Sprintf("remote-%s%s", uuid.NewString(), ext)
	destPath := filepath.Join(destDir, name)

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", trimerr.NewDownloadError(trimerr.DownloadNetwork, 0, "failed to create destination directory", err)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return "", trimerr.NewDownloadError(trimerr.DownloadNetwork, 0, "failed to create destination file", err)
	}

	n, copyErr := io.Copy(out, io.LimitReader(resp.Body, maxBytes+1))
	closeErr := out.Close()

	if copyErr != nil {
		_ = os.Remove(destPath)
		return "", trimerr.NewDownloadError(trimerr.DownloadNetwork, 0, "stream copy failed", copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(destPath)
		return "", trimerr.NewDownloadError(trimerr.DownloadNetwork, 0, "failed to finalize download", closeErr)
	}
	if n > maxBytes {
		_ = os.Remove(destPath)
		return "", trimerr.NewDownloadError(trimerr.DownloadSize, 0, "download exceeded size limit", nil)
	}

	if f.logger != nil {
		f.logger.Info("fetched remote video", "url", rawURL, "path", destPath, "bytes", n)
	}

	return destPath, nil
}

func extensionFor(urlPath, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(urlPath)); allowedExtensions[ext] {
		return ext
	}
	switch contentType {
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	case "video/x-msvideo":
		return ".avi"
	default:
		return ".mp4"
	}
}

func isAllowedType(contentType, urlPath string) bool {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if strings.HasPrefix(ct, "video/") || allowedContentTypes[ct] {
		return true
	}
	if ct == "application/octet-stream" {
		ext := strings.ToLower(filepath.Ext(urlPath))
		return allowedExtensions[ext]
	}
	return false
}
