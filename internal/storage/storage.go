// Package storage implements the Storage Sink abstraction (spec.md
// §4.H): a capability interface with a local-disk implementation and
// a remote Azure Blob implementation, selected by configuration.
package storage

import (
	"context"
	"strings"
	"time"
)

// StoredVideo describes a persisted input or output artifact
// (spec.md §3).
type StoredVideo struct {
	Name         string
	URL          string
	DownloadURL  string
	Size         int64
	LastModified time.Time
}

// Storage is the capability interface both the local and blob Sinks
// implement (spec.md §9 "Pluggable storage → capability interface").
type Storage interface {
	SaveInput(ctx context.Context, localPath, name string) (StoredVideo, error)
	SaveOutput(ctx context.Context, localPath, name string) (StoredVideo, error)
	ListInputs(ctx context.Context) ([]StoredVideo, error)
	ListOutputs(ctx context.Context) ([]StoredVideo, error)
	OutputExists(ctx context.Context, name string) (bool, error)
	GetOutputURL(ctx context.Context, name string, asAttachment bool) (string, error)
	LocalInputDir() string
	LocalOutputDir() string
}

// contentTypeFor guesses a MIME type from a file extension, the
// convention both Storage variants share (spec.md §4.H).
func contentTypeFor(name string) string {
	switch strings.ToLower(ext(name)) {
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/x-msvideo"
	default:
		return "video/mp4"
	}
}

func ext(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return name[i:]
}
