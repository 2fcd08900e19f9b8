package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/yourusername/x-fetch-go/api"
	"github.com/yourusername/x-fetch-go/api/handlers"
	"github.com/yourusername/x-fetch-go/internal/app"
	"github.com/yourusername/x-fetch-go/internal/domain"
	"github.com/yourusername/x-fetch-go/internal/infrastructure"
	"github.com/yourusername/x-fetch-go/pkg/logger"
)

var (
	configPath = flag.String("config", "", "Path to config file (default: ./configs, ~/.x-fetch, /etc/x-fetch)")
	daemon     = flag.Bool("daemon", false, "Detach from the terminal and run in the background")
)

func main() {
	flag.Parse()

	if *daemon {
		startAsDaemon()
		return
	}

	runServer()
}

// startAsDaemon re-executes the server detached from the current session
func startAsDaemon() {
	execPath, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get executable path: %v\n", err)
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "/"
	}

	args := []string{}
	if *configPath != "" {
		args = append(args, "-config", *configPath)
	}

	cmd := exec.Command(execPath, args...)
	cmd.Dir = cwd
	cmd.Env = os.Environ()
	detach(cmd)

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", os.DevNull, err)
		os.Exit(1)
	}
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start daemon: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Server started as daemon (PID: %d)\n", cmd.Process.Pid)
}

func runServer() {
	config, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// acquisition and error categories
	multiLog, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:   config.Logging.Level,
		LogsDir: config.Workspace.LogsDir,
	})
	if err != nil {
		log.Fatal("Failed to initialize category logs", zap.Error(err))
	}
	defer multiLog.Close()

	log.Info("Starting X-Fetch server",
		zap.String("version", handlers.Version),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port),
		zap.String("workspace", config.Workspace.Dir),
		zap.Duration("artifact_ttl", config.Workspace.ArtifactTTL))

	if err := createDirectories(config); err != nil {
		log.Fatal("Failed to create directories", zap.Error(err))
	}

	repo, err := infrastructure.NewSQLiteArtifactRepository(config.Registry.DatabasePath)
	if err != nil {
		log.Fatal("Failed to initialize artifact registry", zap.Error(err))
	}
	defer repo.Close()

	runner := infrastructure.NewExecRunner()
	fs := afero.NewOsFs()
	toolLog := infrastructure.NewToolLog(config.Workspace.LogsDir)

	video := infrastructure.NewYTDLPExtractor(&config.Video, runner, fs, toolLog, log)
	images := infrastructure.NewGalleryDLExtractor(&config.Images, runner, fs, toolLog, log)
	notifier := infrastructure.NewNotifier(&config.Notification, runner, log)

	orchestrator := app.NewOrchestrator(video, images, config.Workspace.Dir, log)
	service := app.NewAcquisitionService(orchestrator, repo, fs, notifier, multiLog, log)
	janitor := app.NewJanitor(service, &config.Workspace, multiLog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := janitor.Start(ctx); err != nil {
		log.Fatal("Failed to start janitor", zap.Error(err))
	}

	router := api.SetupRouter(api.Dependencies{
		Service:        service,
		Janitor:        janitor,
		Logger:         log,
		MultiLogger:    multiLog,
		LogsDir:        config.Workspace.LogsDir,
		Tools:          []string{config.Video.Binary, config.Images.Binary},
		LookupTool:     exec.LookPath,
		AllowedOrigins: config.Server.AllowedOrigins,
	})

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := newHTTPServer(ctx, addr, router)

	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if err := janitor.Stop(); err != nil {
		log.Error("Error stopping janitor", zap.Error(err))
	}

	shutdown(server, cancel, service, shutdownGrace, log)

	// nothing left is reachable once the server is gone
	if released, err := service.Sweep(time.Now().Add(time.Second)); err != nil {
		log.Warn("Final sweep failed", zap.Error(err))
	} else if released > 0 {
		log.Info("Released unserved artifacts", zap.Int("count", released))
	}

	log.Info("Server exited")
}

func createDirectories(config *domain.Config) error {
	for _, dir := range []string{config.Workspace.Dir, config.Workspace.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
