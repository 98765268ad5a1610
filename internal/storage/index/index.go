// Package index is a SQLite-backed catalog of the artifacts the local
// Storage Sink has saved, so listInputs/listOutputs don't need a
// directory walk + per-file Stat on every call. The local Sink's
// outputExists does not consult it; it stats the file. Modeled
// on the teacher's own "persist what exists in a table" convention
// (internal/database/models.go, assetmodule.MediaAsset).
package index

import (
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Kind distinguishes an input artifact row from an output one.
type Kind string

const (
	KindInput  Kind = "input"
	KindOutput Kind = "output"
)

// Artifact is the catalog row for one persisted StoredVideo.
type Artifact struct {
	ID           uint32    `gorm:"primaryKey"`
	Kind         Kind      `gorm:"not null;index:idx_artifacts_kind_name,unique"`
	Name         string    `gorm:"not null;index:idx_artifacts_kind_name,unique"`
	Size         int64     `gorm:"not null"`
	LastModified time.Time `gorm:"not null"`
}

func (Artifact) TableName() string { return "artifacts" }

// Index wraps a gorm DB handle scoped to the artifacts table.
type Index struct {
	db *gorm.DB
}

// Open opens (creating if absent) the SQLite catalog at path and
// migrates the Artifact schema.
func Open(path string) (*Index, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Artifact{}); err != nil {
		return nil, err
	}
	return &Index{db: db}, nil
}

// OpenWithDB wraps an already-open *gorm.DB, for tests (e.g. against
// go-sqlmock).
func OpenWithDB(db *gorm.DB) *Index {
	return &Index{db: db}
}

// Upsert records or updates the catalog row for name.
func (idx *Index) Upsert(kind Kind, name string, size int64, lastModified time.Time) error {
	var existing Artifact
	err := idx.db.Where("kind = ? AND name = ?", kind, name).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return idx.db.Create(&Artifact{Kind: kind, Name: name, Size: size, LastModified: lastModified}).Error
	}
	if err != nil {
		return err
	}
	existing.Size = size
	existing.LastModified = lastModified
	return idx.db.Save(&existing).Error
}

// List returns all rows of the given kind, ordered by name.
func (idx *Index) List(kind Kind) ([]Artifact, error) {
	var rows []Artifact
	if err := idx.db.Where("kind = ?", kind).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Exists reports whether a row of the given kind/name is cataloged.
func (idx *Index) Exists(kind Kind, name string) (bool, error) {
	var count int64
	if err := idx.db.Model(&Artifact{}).Where("kind = ? AND name = ?", kind, name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
