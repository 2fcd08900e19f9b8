package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewArtifact(t *testing.T) {
	artifact := NewArtifact("req-1", KindVideo, "/work/req-1/123_720p.mp4", 3*1024*1024)

	assert.NotEmpty(t, artifact.ID)
	assert.Equal(t, "req-1", artifact.RequestID)
	assert.Equal(t, KindVideo, artifact.Kind)
	assert.Equal(t, "123_720p.mp4", artifact.Name)
	assert.Equal(t, "video/mp4", artifact.MimeType)
	assert.Equal(t, 3.0, artifact.SizeMB())
	assert.False(t, artifact.CreatedAt.IsZero())
}

func TestMimeTypeFor(t *testing.T) {
	tests := []struct {
		path     string
		kind     MediaKind
		expected string
	}{
		{"a.mp4", KindVideo, "video/mp4"},
		{"a.WEBM", KindVideo, "video/webm"},
		{"a.jpg", KindImages, "image/jpeg"},
		{"a.png", KindImages, "image/png"},
		{"a.webp", KindImages, "image/webp"},
		{"a.gif", KindImages, "image/gif"},
		{"noext", KindVideo, "video/mp4"},
		{"noext", KindImages, "image/jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, MimeTypeFor(tt.path, tt.kind))
		})
	}
}
