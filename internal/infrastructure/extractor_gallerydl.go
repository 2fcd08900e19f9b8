package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/yourusername/x-fetch-go/internal/domain"
)

// GalleryDLExtractor downloads the original-quality images of a post with gallery-dl.
// gallery-dl does not report the paths it wrote, so new files are found by diffing the
// destination directory before and after the run. At most one run may target a given
// directory at a time.
type GalleryDLExtractor struct {
	config  *domain.ImagesConfig
	runner  domain.CommandRunner
	fs      afero.Fs
	toolLog *ToolLog
	logger  *zap.Logger
}

// NewGalleryDLExtractor creates a new gallery-dl adapter
func NewGalleryDLExtractor(config *domain.ImagesConfig, runner domain.CommandRunner, fs afero.Fs, toolLog *ToolLog, logger *zap.Logger) *GalleryDLExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GalleryDLExtractor{
		config:  config,
		runner:  runner,
		fs:      fs,
		toolLog: toolLog,
		logger:  logger,
	}
}

// Name returns the wrapped tool name
func (e *GalleryDLExtractor) Name() string {
	return "gallery-dl"
}

// BuildArgs returns the gallery-dl arguments used to download url into destDir
func (e *GalleryDLExtractor) BuildArgs(url, destDir string) []string {
	template := e.config.FilenameTemplate
	if template == "" {
		template = domain.DefaultImageFilenameTemplate
	}

	// --directory writes straight into destDir, without gallery-dl's per-site subfolders
	return []string{
		"--directory", destDir,
		"--filename", template,
		"--quiet",
		// end of options: url is never parsed as a flag
		"--",
		url,
	}
}

// Extract downloads the images behind url into destDir
func (e *GalleryDLExtractor) Extract(ctx context.Context, url, destDir string) (outcome *domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("gallery-dl adapter panicked", zap.Any("panic", r), zap.String("url", url))
			outcome = domain.FailureOutcome(fmt.Sprint(r))
		}
	}()

	if err := e.fs.MkdirAll(destDir, 0755); err != nil {
		return domain.FailureOutcome(fmt.Sprintf("failed to create working directory: %v", err))
	}

	timeout := e.config.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultImageTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	before, err := SnapshotDir(e.fs, destDir)
	if err != nil {
		return domain.FailureOutcome(err.Error())
	}

	args := e.BuildArgs(url, destDir)
	transcript := e.toolLog.Begin("Images: "+url, CommandLine(e.config.Binary, args...))

	e.logger.Debug("Running gallery-dl", zap.String("url", url), zap.String("dir", destDir))
	result, err := e.runner.Run(ctx, e.config.Binary, args...)
	if err != nil {
		message := err.Error()
		if errors.Is(err, domain.ErrCommandTimeout) {
			message = fmt.Sprintf("gallery-dl timed out after %v", timeout)
		}
		transcript.End(false, message)
		return domain.FailureOutcome(message)
	}
	transcript.Output("stderr", result.Stderr)

	after, err := SnapshotDir(e.fs, destDir)
	if err != nil {
		transcript.End(false, err.Error())
		return domain.FailureOutcome(err.Error())
	}
	newFiles := JoinAll(destDir, before.Added(after))

	if result.ExitCode != 0 || len(newFiles) == 0 {
		message := strings.TrimSpace(result.Stderr)
		if message == "" {
			message = domain.NoImagesFoundMessage
		}
		transcript.End(false, message)
		return domain.FailureOutcome(message)
	}

	transcript.End(true, fmt.Sprintf("Downloaded %d file(s)", len(newFiles)))
	return domain.ImageSetOutcome(domain.ImageSetResult{
		Count:  len(newFiles),
		SizeMB: domain.BytesToMB(TotalSize(e.fs, newFiles)),
		Files:  newFiles,
	})
}
