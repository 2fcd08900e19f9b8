package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/yourusername/x-fetch-go/internal/app"
	"github.com/yourusername/x-fetch-go/internal/domain"
	"github.com/yourusername/x-fetch-go/internal/infrastructure"
)

// fetchLocal runs yt-dlp and gallery-dl in this process, without a server
func fetchLocal(ctx context.Context, fs afero.Fs, configPath, url, dir string) (*fetchResult, error) {
	config, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	runner := infrastructure.NewExecRunner()
	// transcripts are only kept when the logs directory already exists
	var toolLog *infrastructure.ToolLog
	if ok, _ := afero.DirExists(fs, config.Workspace.LogsDir); ok {
		toolLog = infrastructure.NewToolLog(config.Workspace.LogsDir)
	}

	orchestrator := app.NewOrchestrator(
		infrastructure.NewYTDLPExtractor(&config.Video, runner, fs, toolLog, zap.NewNop()),
		infrastructure.NewGalleryDLExtractor(&config.Images, runner, fs, toolLog, zap.NewNop()),
		dir,
		zap.NewNop(),
	)
	return acquireLocal(ctx, fs, orchestrator, url, dir)
}

// acquireLocal stages the acquisition in a scratch directory inside dir so a failed video
// attempt leaves nothing behind, then moves the artifacts into dir.
func acquireLocal(ctx context.Context, fs afero.Fs, orchestrator *app.Orchestrator, url, dir string) (*fetchResult, error) {
	request, err := domain.NewMediaRequest(url)
	if err != nil {
		return nil, err
	}
	url = request.URL

	staging, err := afero.TempDir(fs, dir, ".xfetch-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer fs.RemoveAll(staging)

	outcome := orchestrator.AcquireInto(ctx, url, staging)
	if !outcome.Success() {
		return nil, errors.New(outcome.Error)
	}

	result := &fetchResult{Kind: outcome.Kind()}
	switch outcome.Kind() {
	case domain.KindVideo:
		result.Resolution = outcome.Video.Resolution()
		result.SizeMB = outcome.Video.SizeMB
	case domain.KindImages:
		result.SizeMB = outcome.Images.SizeMB
	}

	for _, src := range outcome.Files() {
		dst := filepath.Join(dir, domain.SanitizeFilename(filepath.Base(src)))
		if err := fs.Rename(src, dst); err != nil {
			return result, fmt.Errorf("failed to move %s: %w", filepath.Base(src), err)
		}
		result.Files = append(result.Files, dst)
	}
	return result, nil
}
