// Package probe extracts duration, resolution, frame rate, and audio
// presence from a video file by shelling out to ffprobe (spec.md
// §4.A). It performs no mutation of its input.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rzdor/volleyball-analytics/internal/execrunner"
	"github.com/rzdor/volleyball-analytics/internal/motion"
	"github.com/rzdor/volleyball-analytics/internal/motionlog"
	"github.com/rzdor/volleyball-analytics/internal/trimerr"
)

// ffprobeOutput mirrors the subset of ffprobe's JSON output this
// package needs. Field names follow ffprobe's own JSON keys, matching
// the teacher's FFProbeOutput/FFProbeFormat/FFProbeStream shape.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
}

// Prober runs ffprobe against a file and parses its output.
type Prober struct {
	ffprobePath string
	logger      motionlog.Logger
	runner      execrunner.Runner
}

func New(ffprobePath string, logger motionlog.Logger) *Prober {
	return NewWithRunner(ffprobePath, logger, execrunner.Default{})
}

// NewWithRunner builds a Prober with a custom CommandRunner, for tests.
func NewWithRunner(ffprobePath string, logger motionlog.Logger, runner execrunner.Runner) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Prober{ffprobePath: ffprobePath, logger: logger, runner: runner}
}

// Probe returns VideoMetadata for path, choosing the first video
// stream. Fails with a trimerr ProbeError when no video stream exists
// or ffprobe exits non-zero.
func (p *Prober) Probe(ctx context.Context, path string) (motion.VideoMetadata, error) {
	out, err := p.runner.Output(ctx, p.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("ffprobe failed", "path", path, "error", err)
		}
		return motion.VideoMetadata{}, trimerr.NewProbeError(path, summarizeExitErr(err))
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return motion.VideoMetadata{}, trimerr.NewProbeError(path, fmt.Errorf("parse ffprobe output: %w", err))
	}

	var videoStream *ffprobeStream
	hasAudio := false
	for i := range parsed.Streams {
		s := &parsed.Streams[i]
		switch s.CodecType {
		case "video":
			if videoStream == nil {
				videoStream = s
			}
		case "audio":
			hasAudio = true
		}
	}

	if videoStream == nil {
		return motion.VideoMetadata{}, trimerr.NewProbeError(path, fmt.Errorf("no video stream found"))
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(parsed.Format.Duration), 64)
	if err != nil {
		return motion.VideoMetadata{}, trimerr.NewProbeError(path, fmt.Errorf("parse duration %q: %w", parsed.Format.Duration, err))
	}

	fps, err := parseFrameRate(videoStream.AvgFrameRate, videoStream.RFrameRate)
	if err != nil {
		return motion.VideoMetadata{}, trimerr.NewProbeError(path, err)
	}

	return motion.VideoMetadata{
		Duration: duration,
		Width:    videoStream.Width,
		Height:   videoStream.Height,
		FPS:      fps,
		HasAudio: hasAudio,
	}, nil
}

// parseFrameRate reads a rational "num/den" string (or a bare
// decimal), preferring avg over r frame rate, per spec.md §4.A.
func parseFrameRate(avg, r string) (float64, error) {
	for _, candidate := range []string{avg, r} {
		if candidate == "" {
			continue
		}
		if fps, ok := parseRational(candidate); ok && fps > 0 {
			return fps, nil
		}
	}
	return 0, fmt.Errorf("could not parse frame rate from %q / %q", avg, r)
}

func parseRational(s string) (float64, bool) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN != nil || errD != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func summarizeExitErr(err error) error {
	if exitErr, ok := err.(*exec.ExitError); ok {
		return fmt.Errorf("ffprobe exited %d: %s", exitErr.ExitCode(), strings.TrimSpace(string(exitErr.Stderr)))
	}
	return err
}
