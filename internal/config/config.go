// Package config reads the environment-driven configuration the
// Storage Sink and external-tool invocations need, per spec.md §6.
// It is read once at process start and passed down as a dependency —
// no module-level singleton.
package config

import "os"

// Config is the process-wide configuration resolved once at startup.
type Config struct {
	Storage StorageConfig
	Tools   ToolsConfig
}

// StorageConfig selects and configures the Storage Sink.
type StorageConfig struct {
	// AzureConnectionString, when non-empty, selects the remote blob
	// Storage Sink. It must contain AccountName= and AccountKey= for
	// signed URL generation.
	AzureConnectionString string

	// Container is the blob container name (blob mode only).
	Container string

	// InputFolder / OutputFolder are prefixes within the container
	// (blob mode only). Local mode always uses UploadsDir/inputs and
	// UploadsDir/processed.
	InputFolder  string
	OutputFolder string

	// UploadsDir is the local-mode base directory.
	UploadsDir string
}

// ToolsConfig configures the external media tool invocations.
type ToolsConfig struct {
	FFmpegPath  string
	FFprobePath string
}

// Load reads Config from the process environment, applying the
// defaults from spec.md §6.
func Load() *Config {
	return &Config{
		Storage: StorageConfig{
			AzureConnectionString: os.Getenv("AZURE_STORAGE_CONNECTION_STRING"),
			Container:             getenvDefault("AZURE_STORAGE_CONTAINER", "volleyball-videos"),
			InputFolder:           getenvDefault("AZURE_STORAGE_INPUT_FOLDER", "inputs"),
			OutputFolder:          getenvDefault("AZURE_STORAGE_OUTPUT_FOLDER", "processed"),
			UploadsDir:            getenvDefault("UPLOADS_DIR", "./uploads"),
		},
		Tools: ToolsConfig{
			FFmpegPath:  getenvDefault("FFMPEG_PATH", "ffmpeg"),
			FFprobePath: getenvDefault("FFPROBE_PATH", "ffprobe"),
		},
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// UsesBlobStorage reports whether the configuration selects the
// remote blob Storage Sink over the local disk variant.
func (c *Config) UsesBlobStorage() bool {
	return c.Storage.AzureConnectionString != ""
}
