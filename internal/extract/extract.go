// Package extract drives the external media tool to produce a
// contiguous stream of downscaled 8-bit grayscale frames (spec.md
// §4.B). The output has no container and no headers: it is exactly
// motion.FrameSize bytes per sampled frame.
package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/rzdor/volleyball-analytics/internal/execrunner"
	"github.com/rzdor/volleyball-analytics/internal/motion"
	"github.com/rzdor/volleyball-analytics/internal/motionlog"
	"github.com/rzdor/volleyball-analytics/internal/trimerr"
)

// Extractor invokes ffmpeg to produce the raw grayscale byte stream.
type Extractor struct {
	ffmpegPath string
	logger     motionlog.Logger
	runner     execrunner.Runner
}

func New(ffmpegPath string, logger motionlog.Logger) *Extractor {
	return NewWithRunner(ffmpegPath, logger, execrunner.Default{})
}

func NewWithRunner(ffmpegPath string, logger motionlog.Logger, runner execrunner.Runner) *Extractor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Extractor{ffmpegPath: ffmpegPath, logger: logger, runner: runner}
}

// Extract applies sample-at-sampleFPS -> scale-to-160x90 ->
// convert-to-8-bit-gray, writing raw bytes to outPath. Fails with a
// trimerr ExtractionError when the subprocess exits non-zero.
func (e *Extractor) Extract(ctx context.Context, path string, sampleFPS float64, outPath string) error {
	filter := fmt.Sprintf("fps=%g,scale=%d:%d,format=gray", sampleFPS, motion.FrameWidth, motion.FrameHeight)

	args := []string{
		"-i", path,
		"-vf", filter,
		"-f", "rawvideo",
		"-pix_fmt", "gray",
		"-an",
		"-y", outPath,
	}

	if e.logger != nil {
		e.logger.Debug("extracting raw grayscale frames", "path", path, "sampleFPS", sampleFPS, "outPath", outPath)
	}

	if _, err := e.runner.Output(ctx, e.ffmpegPath, args...); err != nil {
		_ = os.Remove(outPath)
		return trimerr.NewExtractionError(path, err)
	}

	return nil
}
