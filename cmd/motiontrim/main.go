package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rzdor/volleyball-analytics/internal/config"
	"github.com/rzdor/volleyball-analytics/internal/motion"
	"github.com/rzdor/volleyball-analytics/internal/motionlog"
	"github.com/rzdor/volleyball-analytics/internal/pipeline"
	"github.com/rzdor/volleyball-analytics/internal/storage"
	"github.com/rzdor/volleyball-analytics/internal/trimerr"
)

func main() {
	source := flag.String("source", "", "local path or http(s) URL of the source video")
	output := flag.String("output", "", "output artifact name (default: trimmed-<uuid>.mp4)")
	sampleFPS := flag.Float64("sample-fps", 0, "frames sampled per second during detection (0 = default)")
	threshold := flag.Float64("threshold", 0, "motion score threshold in [0,1] (0 = default)")
	minSegment := flag.Float64("min-segment", 0, "minimum segment length in seconds (0 = default)")
	preRoll := flag.Float64("pre-roll", 0, "seconds of padding before each segment (0 = default)")
	postRoll := flag.Float64("post-roll", 0, "seconds of padding after each segment (0 = default)")
	flag.Parse()

	logger := motionlog.New("motiontrim")

	if *source == "" {
		logger.Error("missing required flag", "flag", "-source")
		os.Exit(2)
	}

	cfg := config.Load()

	store, err := newStorage(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}

	orch, err := pipeline.New(cfg, store, logger)
	if err != nil {
		logger.Error("failed to initialize pipeline", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("received shutdown signal, canceling trim")
		cancel()
	}()

	opts := motion.Options{
		SampleFPS:        *sampleFPS,
		Threshold:        *threshold,
		MinSegmentLength: *minSegment,
		PreRoll:          *preRoll,
		PostRoll:         *postRoll,
	}
	defaults := motion.DefaultOptions()
	if opts.Threshold == 0 {
		opts.Threshold = defaults.Threshold
	}
	if opts.MinSegmentLength == 0 {
		opts.MinSegmentLength = defaults.MinSegmentLength
	}
	if opts.PreRoll == 0 {
		opts.PreRoll = defaults.PreRoll
	}
	if opts.PostRoll == 0 {
		opts.PostRoll = defaults.PostRoll
	}

	result, err := orch.Run(ctx, pipeline.Params{
		Source:     *source,
		OutputName: *output,
		Options:    opts,
	})
	if err != nil {
		logger.Error("trim failed", "error", err, "kind", kindOf(err))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Error("failed to encode result", "error", err)
		os.Exit(1)
	}
}

// newStorage selects the local-disk or Azure Blob Storage Sink
// depending on whether an Azure connection string is configured
// (spec.md §4.H).
func newStorage(cfg *config.Config, logger motionlog.Logger) (storage.Storage, error) {
	if cfg.UsesBlobStorage() {
		logger.Info("using blob storage sink", "container", cfg.Storage.Container)
		return storage.NewBlob(
			cfg.Storage.AzureConnectionString,
			cfg.Storage.Container,
			cfg.Storage.InputFolder,
			cfg.Storage.OutputFolder,
			logger,
		)
	}

	logger.Info("using local storage sink", "dir", cfg.Storage.UploadsDir)
	return storage.NewLocal(cfg.Storage.UploadsDir, logger)
}

func kindOf(err error) string {
	var trimErr *trimerr.Error
	if errors.As(err, &trimErr) {
		return string(trimErr.Kind)
	}
	return "unknown"
}
