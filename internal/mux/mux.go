// Package mux drives the external media tool with a trim+concat
// filter graph to produce a single output file covering only the
// requested segments (spec.md §4.F).
package mux

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/rzdor/volleyball-analytics/internal/motion"
	"github.com/rzdor/volleyball-analytics/internal/motionlog"
	"github.com/rzdor/volleyball-analytics/internal/trimerr"
)

// Muxer drives ffmpeg's filter_complex trim/concat graph.
type Muxer struct {
	ffmpegPath string
	logger     motionlog.Logger
}

func New(ffmpegPath string, logger motionlog.Logger) *Muxer {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Muxer{ffmpegPath: ffmpegPath, logger: logger}
}

// Trim produces a single MP4 at output covering exactly the given
// segments of input, re-encoded (spec.md §4.F). hasAudio selects
// whether the filter graph includes an audio trim/concat chain.
func (m *Muxer) Trim(ctx context.Context, input string, segments []motion.TimeRange, hasAudio bool, output string) error {
	if len(segments) == 0 {
		return &trimerr.Error{Kind: trimerr.KindMux, Message: "no segments to trim"}
	}

	args := []string{"-i", input, "-filter_complex", buildFilterGraph(segments, hasAudio), "-map", "[outv]"}
	if hasAudio {
		args = append(args, "-map", "[outa]")
	}
	args = append(args,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
	)
	if hasAudio {
		args = append(args, "-c:a", "aac")
	}
	args = append(args, "-movflags", "+faststart", "-y", output)

	if m.logger != nil {
		m.logger.Info("running trim+concat", "input", input, "segments", len(segments), "hasAudio", hasAudio)
	}

	if err := m.run(ctx, args); err != nil {
		return trimerr.NewMuxError("ffmpeg trim/concat failed", err)
	}
	return nil
}

// buildFilterGraph constructs the filter_complex expression described
// in spec.md §4.F: one [v_i]([a_i]) pair per segment, concatenated
// into [outv]([outa]).
func buildFilterGraph(segments []motion.TimeRange, hasAudio bool) string {
	var b strings.Builder
	n := len(segments)

	for i, seg := range segments {
		fmt.Fprintf(&b, "[0:v]trim=start=%s:end=%s,setpts=PTS-STARTPTS[v%d];",
			formatSeconds(seg.Start), formatSeconds(seg.End), i)
		if hasAudio {
			fmt.Fprintf(&b, "[0:a]atrim=start=%s:end=%s,asetpts=PTS-STARTPTS[a%d];",
				formatSeconds(seg.Start), formatSeconds(seg.End), i)
		}
	}

	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "[v%d]", i)
		if hasAudio {
			fmt.Fprintf(&b, "[a%d]", i)
		}
	}

	aFlag := 0
	if hasAudio {
		aFlag = 1
	}
	fmt.Fprintf(&b, "concat=n=%d:v=1:a=%d[outv]", n, aFlag)
	if hasAudio {
		b.WriteString("[outa]")
	}

	return b.String()
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

func (m *Muxer) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, m.ffmpegPath, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	var tail []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		tail = m.monitorProgress(stderr)
	}()
	<-done

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg exited: %w (stderr tail: %s)", err, strings.Join(tail, " | "))
	}
	return nil
}

var (
	frameRegex = regexp.MustCompile(`frame=\s*(\d+)`)
	speedRegex = regexp.MustCompile(`speed=\s*([\d.]+)x`)
)

// monitorProgress scans ffmpeg's stderr for frame/speed progress
// lines (teacher pattern: internal/transcode/ffmpeg.Runner.monitorProgress),
// logging at Debug and keeping the last few lines for error context.
func (m *Muxer) monitorProgress(stderr io.ReadCloser) []string {
	defer stderr.Close()

	scanner := bufio.NewScanner(stderr)
	var tail []string
	for scanner.Scan() {
		line := scanner.Text()
		tail = append(tail, line)
		if len(tail) > 20 {
			tail = tail[1:]
		}

		if m.logger == nil {
			continue
		}
		if match := frameRegex.FindStringSubmatch(line); match != nil {
			speed := ""
			if sm := speedRegex.FindStringSubmatch(line); sm != nil {
				speed = sm[1]
			}
			m.logger.Debug("mux progress", "frame", match[1], "speed", speed)
		}
	}
	return tail
}
