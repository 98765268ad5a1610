// Package pipeline wires probe, extract, motion, mux, fetch, and
// storage into the end-to-end trim operation (spec.md §4.I): resolve
// input, detect motion, cut the output, persist both, and map every
// failure onto a typed error. Grounded on the teacher's scoped
// resource ownership in internal/transcode/ffmpeg's session lifecycle
// (create temp resources, tear them down on every exit path) — no
// teacher file orchestrates probe->extract->score->smooth->segment->mux
// end to end, since the teacher's transcode sessions don't trim.
package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rzdor/volleyball-analytics/internal/config"
	"github.com/rzdor/volleyball-analytics/internal/extract"
	"github.com/rzdor/volleyball-analytics/internal/fetch"
	"github.com/rzdor/volleyball-analytics/internal/motion"
	"github.com/rzdor/volleyball-analytics/internal/motionlog"
	"github.com/rzdor/volleyball-analytics/internal/mux"
	"github.com/rzdor/volleyball-analytics/internal/probe"
	"github.com/rzdor/volleyball-analytics/internal/storage"
	"github.com/rzdor/volleyball-analytics/internal/trimerr"
)

// Params describes one trim request (spec.md §4.I).
type Params struct {
	// Source is either a local filesystem path or an http(s) URL.
	Source string
	// OutputName, when empty, is generated as trimmed-<uuid>.mp4.
	OutputName string
	Options    motion.Options
}

// Result is what a successful Run produces.
type Result struct {
	Input    storage.StoredVideo
	Output   storage.StoredVideo
	Metadata motion.VideoMetadata
	Segments []motion.TimeRange
}

// Orchestrator owns the concrete collaborators a Run needs and holds
// no per-request state, so one instance serves concurrent requests.
type Orchestrator struct {
	storage   storage.Storage
	fetcher   *fetch.Fetcher
	prober    *probe.Prober
	extractor *extract.Extractor
	muxer     *mux.Muxer
	logger    motionlog.Logger
	workDir   string
}

// New builds an Orchestrator from configuration, a selected Storage
// Sink, and a logger. workDir holds scratch files (raw frame streams,
// trimmed output before it is persisted) and is created if absent.
func New(cfg *config.Config, store storage.Storage, logger motionlog.Logger) (*Orchestrator, error) {
	workDir := filepath.Join(os.TempDir(), "motiontrim-work")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, trimerr.NewConfigError("workDir", fmt.Sprintf("failed to create scratch directory: %v", err))
	}

	return &Orchestrator{
		storage:   store,
		fetcher:   fetch.New(logger),
		prober:    probe.New(cfg.Tools.FFprobePath, logger),
		extractor: extract.New(cfg.Tools.FFmpegPath, logger),
		muxer:     mux.New(cfg.Tools.FFmpegPath, logger),
		logger:    logger,
		workDir:   workDir,
	}, nil
}

// Run resolves params.Source, detects motion, cuts the matching
// segments into a single output file, and persists both the input and
// the output through the configured Storage Sink.
func (o *Orchestrator) Run(ctx context.Context, params Params) (Result, error) {
	opts := params.Options.Normalize()

	localInput, downloadedPath, err := o.resolveSource(ctx, params.Source)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if downloadedPath != "" {
			_ = os.Remove(downloadedPath)
		}
	}()

	inputName := filepath.Base(localInput)
	storedInput, err := o.storage.SaveInput(ctx, localInput, inputName)
	if err != nil {
		return Result{}, err
	}

	metadata, err := o.prober.Probe(ctx, localInput)
	if err != nil {
		return Result{}, err
	}

	segments, err := o.detectSegments(ctx, localInput, metadata, opts)
	if err != nil {
		return Result{}, err
	}
	if len(segments) == 0 {
		return Result{}, trimerr.NewNoSegmentsError()
	}

	outputName := params.OutputName
	if outputName == "" {
		outputName = fmt.Sprintf("trimmed-%s.mp4", uuid.NewString())
	}
	outputPath := filepath.Join(o.workDir, outputName)
	defer os.Remove(outputPath)

	if err := o.muxer.Trim(ctx, localInput, segments, metadata.HasAudio, outputPath); err != nil {
		return Result{}, err
	}

	storedOutput, err := o.storage.SaveOutput(ctx, outputPath, outputName)
	if err != nil {
		return Result{}, err
	}

	if o.logger != nil {
		o.logger.Info("trim complete", "input", inputName, "output", outputName, "segments", len(segments))
	}

	return Result{
		Input:    storedInput,
		Output:   storedOutput,
		Metadata: metadata,
		Segments: segments,
	}, nil
}

// resolveSource returns a local path usable by probe/extract/mux.
// When source is a URL it is downloaded into the work directory first
// and the returned downloadedPath is non-empty so Run can clean it up.
func (o *Orchestrator) resolveSource(ctx context.Context, source string) (localPath string, downloadedPath string, err error) {
	parsed, parseErr := url.Parse(source)
	if parseErr != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		if _, statErr := os.Stat(source); statErr != nil {
			return "", "", trimerr.NewDownloadError(trimerr.DownloadScheme, 0, "source is neither a local file nor an http(s) URL", statErr)
		}
		return source, "", nil
	}

	downloaded, err := o.fetcher.Fetch(ctx, source, o.workDir, fetch.DefaultMaxBytes)
	if err != nil {
		return "", "", err
	}
	return downloaded, downloaded, nil
}

// detectSegments runs extract->score->smooth->segment, always
// cleaning up the raw frame scratch file before returning.
func (o *Orchestrator) detectSegments(ctx context.Context, localInput string, metadata motion.VideoMetadata, opts motion.Options) ([]motion.TimeRange, error) {
	framesPath := filepath.Join(o.workDir, fmt.Sprintf("frames-%s.raw", uuid.NewString()))
	defer os.Remove(framesPath)

	if err := o.extractor.Extract(ctx, localInput, opts.SampleFPS, framesPath); err != nil {
		return nil, err
	}

	buf, err := os.ReadFile(framesPath)
	if err != nil {
		return nil, trimerr.NewExtractionError(localInput, err)
	}

	scores := motion.Score(buf, motion.FrameSize)
	smoothed := motion.Smooth(scores, opts.SmoothingWindow)
	segments := motion.Segment(smoothed, opts, metadata.Duration)

	if o.logger != nil {
		o.logger.Debug("motion detection complete", "frames", len(scores), "segments", len(segments))
	}

	return segments, nil
}
