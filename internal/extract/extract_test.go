package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rzdor/volleyball-analytics/internal/trimerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	gotArgs []string
	err     error
}

func (f *fakeRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.gotArgs = append([]string{name}, args...)
	return nil, f.err
}

func TestExtractBuildsFilterChain(t *testing.T) {
	fr := &fakeRunner{}
	e := NewWithRunner("ffmpeg", nil, fr)

	err := e.Extract(context.Background(), "in.mp4", 2, "/tmp/out.raw")
	require.NoError(t, err)

	joined := strings.Join(fr.gotArgs, " ")
	assert.Contains(t, joined, "fps=2,scale=160:90,format=gray")
	assert.Contains(t, joined, "-f rawvideo")
	assert.Contains(t, joined, "-pix_fmt gray")
	assert.True(t, strings.HasSuffix(joined, "/tmp/out.raw"))
}

func TestExtractFailurePropagatesAsExtractionError(t *testing.T) {
	fr := &fakeRunner{err: errors.New("exit 1")}
	e := NewWithRunner("ffmpeg", nil, fr)

	err := e.Extract(context.Background(), "in.mp4", 2, "/tmp/out.raw")
	require.Error(t, err)

	var trimErr *trimerr.Error
	require.ErrorAs(t, err, &trimErr)
	assert.Equal(t, trimerr.KindExtraction, trimErr.Kind)
}
