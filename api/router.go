package api

import (
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/x-fetch-go/api/handlers"
	"github.com/yourusername/x-fetch-go/api/middleware"
	"github.com/yourusername/x-fetch-go/internal/app"
	"github.com/yourusername/x-fetch-go/pkg/logger"
	"github.com/yourusername/x-fetch-go/web"
)

// Dependencies are the services the HTTP layer is wired to
type Dependencies struct {
	Service        *app.AcquisitionService
	Janitor        *app.Janitor
	Logger         *zap.Logger
	MultiLogger    *logger.MultiLogger
	LogsDir        string
	Tools          []string
	LookupTool     handlers.ToolLookup
	AllowedOrigins []string
}

// SetupRouter sets up the HTTP router
func SetupRouter(deps Dependencies) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.Logger(deps.Logger, deps.MultiLogger))
	router.Use(middleware.Recovery(deps.Logger, deps.MultiLogger))
	router.Use(middleware.CORS(deps.AllowedOrigins))

	healthHandler := handlers.NewHealthHandler(deps.Service, deps.Janitor, deps.Tools, deps.LookupTool)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		acquisitionHandler := handlers.NewAcquisitionHandler(deps.Service, deps.Logger)
		v1.POST("/acquisitions", acquisitionHandler.Acquire)

		artifactHandler := handlers.NewArtifactHandler(deps.Service, deps.Logger)
		artifacts := v1.Group("/artifacts")
		{
			artifacts.GET("/:id", artifactHandler.Download)
			artifacts.GET("/:id/preview", artifactHandler.Preview)
			artifacts.DELETE("/:id", artifactHandler.Discard)
		}

		logHandler := handlers.NewLogHandler(deps.LogsDir)
		logs := v1.Group("/logs")
		{
			logs.GET("/categories", logHandler.GetCategories)
			logs.GET("/:category", logHandler.GetLogs)
		}
	}

	templatesFS := web.GetTemplatesFS()
	staticFS := web.GetStaticFS()

	router.GET("/", func(c *gin.Context) {
		serveFile(c, templatesFS, "index.html")
	})
	router.GET("/static/*filepath", func(c *gin.Context) {
		serveFile(c, staticFS, strings.TrimPrefix(c.Param("filepath"), "/"))
	})

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		serveFile(c, templatesFS, "index.html")
	})

	return router
}

var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
	".json": "application/json; charset=utf-8",
	".png":  "image/png",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
}

// serveFile serves a file from an embedded filesystem with proper content type
func serveFile(c *gin.Context, fsys fs.FS, filePath string) {
	file, err := fsys.Open(filePath)
	if err != nil {
		c.String(http.StatusNotFound, "File not found: %s", filePath)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to read file: %v", err)
		return
	}

	contentType, ok := contentTypes[path.Ext(filePath)]
	if !ok {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, content)
}
