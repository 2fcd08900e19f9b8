package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/yourusername/x-fetch-go/internal/domain"
)

// Orchestrator turns a URL into exactly one Outcome: video first, images as the fallback.
// Each extractor is tried at most once per acquisition.
type Orchestrator struct {
	video   domain.Extractor
	images  domain.Extractor
	workDir string
	logger  *zap.Logger
}

// NewOrchestrator creates an orchestrator writing into workDir
func NewOrchestrator(video, images domain.Extractor, workDir string, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		video:   video,
		images:  images,
		workDir: workDir,
		logger:  logger,
	}
}

// WorkDir returns the default destination directory
func (o *Orchestrator) WorkDir() string {
	return o.workDir
}

// Acquire fetches the media behind url into the default working directory
func (o *Orchestrator) Acquire(ctx context.Context, url string) *domain.Outcome {
	return o.AcquireInto(ctx, url, o.workDir)
}

// AcquireInto fetches the media behind url into destDir. It never panics.
func (o *Orchestrator) AcquireInto(ctx context.Context, url, destDir string) (outcome *domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Acquisition panicked", zap.Any("panic", r), zap.String("url", url))
			outcome = domain.FailureOutcome(domain.UnexpectedErrorMessage)
		}
		if outcome == nil {
			outcome = domain.FailureOutcome(domain.UnexpectedErrorMessage)
		}
		outcome.SourceURL = url
	}()

	outcome = o.video.Extract(ctx, url, destDir)
	if outcome.Success() {
		o.logger.Info("Video acquired", zap.String("url", url), zap.String("file", outcome.Video.FilePath))
		return outcome
	}

	o.logger.Info("No video, trying images",
		zap.String("url", url),
		zap.String("video_error", outcome.Error))

	outcome = o.images.Extract(ctx, url, destDir)
	if outcome.Success() {
		o.logger.Info("Images acquired", zap.String("url", url), zap.Int("count", outcome.Images.Count))
	} else {
		o.logger.Info("Acquisition failed", zap.String("url", url), zap.String("error", outcome.Error))
	}
	return outcome
}
