package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/x-fetch-go/internal/app"
)

// Version is reported by /health
const Version = "1.0.0"

// ToolLookup resolves an external binary, typically exec.LookPath
type ToolLookup func(binary string) (string, error)

// HealthHandler handles health check requests
type HealthHandler struct {
	service *app.AcquisitionService
	janitor *app.Janitor
	tools   []string
	lookup  ToolLookup
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service *app.AcquisitionService, janitor *app.Janitor, tools []string, lookup ToolLookup) *HealthHandler {
	return &HealthHandler{
		service: service,
		janitor: janitor,
		tools:   tools,
		lookup:  lookup,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Artifacts struct {
		Pending int64 `json:"pending"`
	} `json:"artifacts"`
	Janitor struct {
		Running bool `json:"running"`
	} `json:"janitor"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: Version,
	}
	if h.service != nil {
		response.Artifacts.Pending, _ = h.service.Pending()
	}
	if h.janitor != nil {
		response.Janitor.Running = h.janitor.IsRunning()
	}

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready. The server is ready once every external tool resolves.
func (h *HealthHandler) Ready(c *gin.Context) {
	tools := make(map[string]string, len(h.tools))
	var missing []string
	for _, tool := range h.tools {
		path, err := h.lookup(tool)
		if err != nil {
			missing = append(missing, tool)
			continue
		}
		tools[tool] = path
	}

	if len(missing) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not ready",
			"reason":  "external tools not found",
			"missing": missing,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "tools": tools})
}
