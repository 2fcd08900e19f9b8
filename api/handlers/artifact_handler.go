package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/x-fetch-go/internal/app"
	"github.com/yourusername/x-fetch-go/internal/domain"
)

// ArtifactHandler serves downloaded files back to the client
type ArtifactHandler struct {
	service *app.AcquisitionService
	logger  *zap.Logger
}

// NewArtifactHandler creates a new artifact handler
func NewArtifactHandler(service *app.AcquisitionService, logger *zap.Logger) *ArtifactHandler {
	return &ArtifactHandler{
		service: service,
		logger:  logger,
	}
}

// Preview handles GET /api/v1/artifacts/:id/preview
func (h *ArtifactHandler) Preview(c *gin.Context) {
	h.serve(c, false)
}

// Download handles GET /api/v1/artifacts/:id.
// The file is deleted once it has been sent in full.
func (h *ArtifactHandler) Download(c *gin.Context) {
	h.serve(c, true)
}

// Discard handles DELETE /api/v1/artifacts/:id
func (h *ArtifactHandler) Discard(c *gin.Context) {
	if err := h.service.Discard(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "artifact discarded"})
}

func (h *ArtifactHandler) serve(c *gin.Context, attachment bool) {
	artifact, file, err := h.service.Open(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	modTime := time.Time{}
	if info, err := file.Stat(); err == nil {
		modTime = info.ModTime()
	}

	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}
	c.Header("Content-Type", artifact.MimeType)
	c.Header("Content-Disposition", fmt.Sprintf(`%s; filename="%s"`, disposition, domain.SanitizeFilename(artifact.Name)))
	c.Header("Cache-Control", "no-store")

	http.ServeContent(c.Writer, c.Request, artifact.Name, modTime, file)
	file.Close()

	// partial or conditional responses leave the file for a later full download
	if attachment && c.Request.Method == http.MethodGet && c.Writer.Status() == http.StatusOK {
		if err := h.service.Release(artifact); err != nil {
			h.logger.Warn("Failed to release served artifact", zap.String("id", artifact.ID), zap.Error(err))
		}
	}
}

func (h *ArtifactHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrArtifactNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "artifact not found"})
	case errors.Is(err, domain.ErrArtifactMissing):
		c.JSON(http.StatusGone, gin.H{"error": "artifact no longer available"})
	default:
		h.logger.Error("Artifact request failed", zap.String("id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
