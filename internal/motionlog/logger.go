// Package motionlog provides the structured logger handed to every
// component that drives a subprocess or network call in the trim
// pipeline.
package motionlog

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// Logger is the logging contract every pipeline component depends on.
// It mirrors the teacher SDK's plugin logger. Because With returns an
// hclog.Logger, any implementation, including a test fake, imports
// hclog.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	With(args ...interface{}) hclog.Logger
}

// New builds the process-wide root logger. JSON output is selected
// with LOG_FORMAT=json; level with LOG_LEVEL (default info).
func New(name string) hclog.Logger {
	level := hclog.Info
	if l := os.Getenv("LOG_LEVEL"); l != "" {
		level = hclog.LevelFromString(l)
		if level == hclog.NoLevel {
			level = hclog.Info
		}
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      level,
		Output:     os.Stderr,
		JSONFormat: os.Getenv("LOG_FORMAT") == "json",
	})
}
