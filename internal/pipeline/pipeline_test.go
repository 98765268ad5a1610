package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rzdor/volleyball-analytics/internal/config"
	"github.com/rzdor/volleyball-analytics/internal/storage"
	"github.com/rzdor/volleyball-analytics/internal/trimerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	store, err := storage.NewLocal(t.TempDir(), nil)
	require.NoError(t, err)

	cfg := &config.Config{Tools: config.ToolsConfig{FFmpegPath: "ffmpeg", FFprobePath: "ffprobe"}}
	o, err := New(cfg, store, nil)
	require.NoError(t, err)
	return o
}

func TestResolveSourceAcceptsLocalFile(t *testing.T) {
	o := newTestOrchestrator(t)

	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	local, downloaded, err := o.resolveSource(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, local)
	assert.Empty(t, downloaded)
}

func TestResolveSourceRejectsMissingLocalPath(t *testing.T) {
	o := newTestOrchestrator(t)

	_, _, err := o.resolveSource(context.Background(), "/no/such/file.mp4")
	require.Error(t, err)

	var trimErr *trimerr.Error
	require.ErrorAs(t, err, &trimErr)
	assert.Equal(t, trimerr.KindDownload, trimErr.Kind)
	assert.Equal(t, trimerr.DownloadScheme, trimErr.DownloadKind)
}

func TestRunFailsFastOnUnresolvableSource(t *testing.T) {
	o := newTestOrchestrator(t)

	_, err := o.Run(context.Background(), Params{Source: "/does/not/exist.mp4"})
	require.Error(t, err)

	var trimErr *trimerr.Error
	require.ErrorAs(t, err, &trimErr)
	assert.Equal(t, trimerr.KindDownload, trimErr.Kind)
}
