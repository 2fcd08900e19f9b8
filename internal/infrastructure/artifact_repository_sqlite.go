package infrastructure

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/x-fetch-go/internal/domain"
)

// SQLiteArtifactRepository implements ArtifactRepository using SQLite
type SQLiteArtifactRepository struct {
	db *gorm.DB
}

// NewSQLiteArtifactRepository opens (and migrates) the artifact registry at dsn.
// The default DSN keeps the registry in memory for the lifetime of the process.
func NewSQLiteArtifactRepository(dsn string) (*SQLiteArtifactRepository, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// a shared in-memory database lives only as long as one connection stays open
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&domain.Artifact{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteArtifactRepository{db: db}, nil
}

// Create registers a batch of artifacts in one transaction
func (r *SQLiteArtifactRepository) Create(artifacts []*domain.Artifact) error {
	if len(artifacts) == 0 {
		return nil
	}
	return r.db.Create(&artifacts).Error
}

// FindByID finds an artifact by ID
func (r *SQLiteArtifactRepository) FindByID(id string) (*domain.Artifact, error) {
	var artifact domain.Artifact
	err := r.db.First(&artifact, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrArtifactNotFound
		}
		return nil, err
	}
	return &artifact, nil
}

// FindByRequest lists the artifacts of one acquisition in path order
func (r *SQLiteArtifactRepository) FindByRequest(requestID string) ([]*domain.Artifact, error) {
	var artifacts []*domain.Artifact
	err := r.db.Where("request_id = ?", requestID).
		Order("path ASC").
		Find(&artifacts).Error
	return artifacts, err
}

// FindCreatedBefore lists artifacts registered before cutoff, oldest first
func (r *SQLiteArtifactRepository) FindCreatedBefore(cutoff time.Time) ([]*domain.Artifact, error) {
	var artifacts []*domain.Artifact
	err := r.db.Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Find(&artifacts).Error
	return artifacts, err
}

// Delete deletes an artifact by ID
func (r *SQLiteArtifactRepository) Delete(id string) error {
	return r.db.Delete(&domain.Artifact{}, "id = ?", id).Error
}

// Count returns the number of registered artifacts
func (r *SQLiteArtifactRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.Artifact{}).Count(&count).Error
	return count, err
}

// Close closes the database connection
func (r *SQLiteArtifactRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
