package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rzdor/volleyball-analytics/internal/motionlog"
	"github.com/rzdor/volleyball-analytics/internal/storage/index"
	"github.com/rzdor/volleyball-analytics/internal/trimerr"
)

// LocalStorage keeps <base>/inputs and <base>/processed on local
// disk, cataloged in a SQLite index for fast list lookups (spec.md
// §4.H Local variant; SPEC_FULL.md domain-stack addition). Existence
// checks stat the file on disk.
type LocalStorage struct {
	base      string
	inputDir  string
	outputDir string
	index     *index.Index
	logger    motionlog.Logger
}

// NewLocal creates (if absent) <base>/inputs and <base>/processed and
// opens the artifact catalog at <base>/artifacts.sqlite.
func NewLocal(base string, logger motionlog.Logger) (*LocalStorage, error) {
	inputDir := filepath.Join(base, "inputs")
	outputDir := filepath.Join(base, "processed")

	for _, dir := range []string{inputDir, outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, trimerr.NewStorageError("init local storage", err)
		}
	}

	idx, err := index.Open(filepath.Join(base, "artifacts.sqlite"))
	if err != nil {
		return nil, trimerr.NewStorageError("open artifact index", err)
	}

	return &LocalStorage{base: base, inputDir: inputDir, outputDir: outputDir, index: idx, logger: logger}, nil
}

func (s *LocalStorage) LocalInputDir() string  { return s.inputDir }
func (s *LocalStorage) LocalOutputDir() string { return s.outputDir }

func (s *LocalStorage) SaveInput(ctx context.Context, localPath, name string) (StoredVideo, error) {
	return s.save(ctx, localPath, name, s.inputDir, index.KindInput, "/uploads/inputs/")
}

func (s *LocalStorage) SaveOutput(ctx context.Context, localPath, name string) (StoredVideo, error) {
	return s.save(ctx, localPath, name, s.outputDir, index.KindOutput, "/uploads/processed/")
}

func (s *LocalStorage) save(_ context.Context, localPath, name, dir string, kind index.Kind, urlPrefix string) (StoredVideo, error) {
	target := filepath.Join(dir, name)

	if filepath.Clean(localPath) != filepath.Clean(target) {
		if err := copyFile(localPath, target); err != nil {
			return StoredVideo{}, trimerr.NewStorageError("copy artifact", err)
		}
	}

	info, err := os.Stat(target)
	if err != nil {
		return StoredVideo{}, trimerr.NewStorageError("stat artifact", err)
	}

	if err := s.index.Upsert(kind, name, info.Size(), info.ModTime()); err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to update artifact index", "name", name, "error", err)
		}
	}

	return StoredVideo{
		Name:         name,
		URL:          urlPrefix + name,
		Size:         info.Size(),
		LastModified: info.ModTime(),
	}, nil
}

func (s *LocalStorage) ListInputs(ctx context.Context) ([]StoredVideo, error) {
	return s.list(index.KindInput, "/uploads/inputs/")
}

func (s *LocalStorage) ListOutputs(ctx context.Context) ([]StoredVideo, error) {
	return s.list(index.KindOutput, "/uploads/processed/")
}

func (s *LocalStorage) list(kind index.Kind, urlPrefix string) ([]StoredVideo, error) {
	rows, err := s.index.List(kind)
	if err != nil {
		return nil, trimerr.NewStorageError("list artifacts", err)
	}

	out := make([]StoredVideo, len(rows))
	for i, r := range rows {
		out[i] = StoredVideo{
			Name:         r.Name,
			URL:          urlPrefix + r.Name,
			Size:         r.Size,
			LastModified: r.LastModified,
		}
	}
	return out, nil
}

func (s *LocalStorage) OutputExists(ctx context.Context, name string) (bool, error) {
	if _, err := os.Stat(filepath.Join(s.outputDir, name)); err == nil {
		return true, nil
	} else if !os.IsNotExist(err) {
		return false, trimerr.NewStorageError("stat output", err)
	}
	return false, nil
}

func (s *LocalStorage) GetOutputURL(ctx context.Context, name string, asAttachment bool) (string, error) {
	exists, err := s.OutputExists(ctx, name)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", trimerr.NewStorageError("get output url", os.ErrNotExist)
	}
	return "/uploads/processed/" + name, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
