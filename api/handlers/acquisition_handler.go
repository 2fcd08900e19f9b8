package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/x-fetch-go/internal/app"
	"github.com/yourusername/x-fetch-go/internal/domain"
)

// AcquisitionHandler handles media acquisition requests
type AcquisitionHandler struct {
	service *app.AcquisitionService
	logger  *zap.Logger
}

// NewAcquisitionHandler creates a new acquisition handler
func NewAcquisitionHandler(service *app.AcquisitionService, logger *zap.Logger) *AcquisitionHandler {
	return &AcquisitionHandler{
		service: service,
		logger:  logger,
	}
}

// AcquireRequest represents a request to fetch the media of a post
type AcquireRequest struct {
	URL string `json:"url"`
}

// ArtifactView is the client-facing description of a served file
type ArtifactView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	MimeType    string  `json:"mime_type"`
	SizeMB      float64 `json:"size_mb"`
	PreviewURL  string  `json:"preview_url"`
	DownloadURL string  `json:"download_url"`
}

// AcquireResponse is the rendered Outcome of an acquisition
type AcquireResponse struct {
	Success    bool           `json:"success"`
	RequestID  string         `json:"request_id,omitempty"`
	Type       string         `json:"type,omitempty"`
	Resolution string         `json:"resolution,omitempty"`
	FPS        *float64       `json:"fps,omitempty"`
	SizeMB     float64        `json:"size_mb,omitempty"`
	Count      int            `json:"count,omitempty"`
	Artifacts  []ArtifactView `json:"artifacts,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Acquire handles POST /api/v1/acquisitions
func (h *AcquisitionHandler) Acquire(c *gin.Context) {
	var req AcquireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	acquisition, err := h.service.Acquire(c.Request.Context(), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyURL):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a URL"})
			return
		case errors.Is(err, domain.ErrInvalidURL):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid http(s) URL"})
			return
		}
		h.logger.Error("Acquisition failed", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusInternalServerError, AcquireResponse{Error: domain.UnexpectedErrorMessage})
		return
	}

	outcome := acquisition.Outcome
	if !outcome.Success() {
		c.JSON(http.StatusUnprocessableEntity, AcquireResponse{
			RequestID: acquisition.RequestID,
			Error:     outcome.Error,
		})
		return
	}

	response := AcquireResponse{
		Success:   true,
		RequestID: acquisition.RequestID,
		Type:      string(outcome.Kind()),
		Artifacts: make([]ArtifactView, 0, len(acquisition.Artifacts)),
	}
	switch outcome.Kind() {
	case domain.KindVideo:
		response.Resolution = outcome.Video.Resolution()
		response.FPS = outcome.Video.FPS
		response.SizeMB = outcome.Video.SizeMB
		response.Count = 1
	case domain.KindImages:
		response.SizeMB = outcome.Images.SizeMB
		response.Count = outcome.Images.Count
	}

	for _, artifact := range acquisition.Artifacts {
		response.Artifacts = append(response.Artifacts, ArtifactView{
			ID:          artifact.ID,
			Name:        artifact.Name,
			MimeType:    artifact.MimeType,
			SizeMB:      artifact.SizeMB(),
			PreviewURL:  "/api/v1/artifacts/" + artifact.ID + "/preview",
			DownloadURL: "/api/v1/artifacts/" + artifact.ID,
		})
	}

	c.JSON(http.StatusOK, response)
}
