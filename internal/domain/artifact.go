package domain

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Artifact is a downloaded file waiting to be served to the client
type Artifact struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	RequestID string    `json:"request_id" gorm:"not null;index"`
	Kind      MediaKind `json:"kind" gorm:"not null"`
	Path      string    `json:"-" gorm:"not null"`
	Name      string    `json:"name"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// NewArtifact registers a file produced by an acquisition
func NewArtifact(requestID string, kind MediaKind, path string, size int64) *Artifact {
	return &Artifact{
		ID:        uuid.New().String(),
		RequestID: requestID,
		Kind:      kind,
		Path:      path,
		Name:      SanitizeFilename(filepath.Base(path)),
		MimeType:  MimeTypeFor(path, kind),
		SizeBytes: size,
		CreatedAt: time.Now(),
	}
}

// SizeMB returns the artifact size in megabytes
func (a *Artifact) SizeMB() float64 {
	return BytesToMB(a.SizeBytes)
}

// MimeTypeFor guesses the content type of an artifact from its extension
func MimeTypeFor(path string, kind MediaKind) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	case ".mov":
		return "video/quicktime"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	}
	if kind == KindVideo {
		return "video/mp4"
	}
	return "image/jpeg"
}

// ArtifactRepository tracks artifacts between acquisition and serving
type ArtifactRepository interface {
	// Create registers a batch of artifacts
	Create(artifacts []*Artifact) error

	// FindByID finds an artifact by ID, returning ErrArtifactNotFound when unknown
	FindByID(id string) (*Artifact, error)

	// FindByRequest lists artifacts produced by one acquisition
	FindByRequest(requestID string) ([]*Artifact, error)

	// FindCreatedBefore lists artifacts registered before the cutoff
	FindCreatedBefore(cutoff time.Time) ([]*Artifact, error)

	// Delete forgets an artifact
	Delete(id string) error

	// Count returns the number of artifacts waiting to be served
	Count() (int64, error)
}
