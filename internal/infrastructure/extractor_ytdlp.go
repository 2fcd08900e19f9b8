package infrastructure

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/yourusername/x-fetch-go/internal/domain"
)

// ytdlpInfo is the subset of yt-dlp's info record we read back after a download
type ytdlpInfo struct {
	ID                 string   `json:"id"`
	Width              *int     `json:"width"`
	Height             *int     `json:"height"`
	FPS                *float64 `json:"fps"`
	Ext                string   `json:"ext"`
	Filename           string   `json:"filename"`
	LegacyFilename     string   `json:"_filename"`
	RequestedDownloads []struct {
		Filepath string `json:"filepath"`
	} `json:"requested_downloads"`
}

// YTDLPExtractor downloads the best available video of a post with yt-dlp
type YTDLPExtractor struct {
	config  *domain.VideoConfig
	runner  domain.CommandRunner
	fs      afero.Fs
	toolLog *ToolLog
	logger  *zap.Logger
}

// NewYTDLPExtractor creates a new yt-dlp adapter
func NewYTDLPExtractor(config *domain.VideoConfig, runner domain.CommandRunner, fs afero.Fs, toolLog *ToolLog, logger *zap.Logger) *YTDLPExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YTDLPExtractor{
		config:  config,
		runner:  runner,
		fs:      fs,
		toolLog: toolLog,
		logger:  logger,
	}
}

// Name returns the wrapped tool name
func (e *YTDLPExtractor) Name() string {
	return "yt-dlp"
}

// BuildArgs returns the yt-dlp arguments used to download url into destDir
func (e *YTDLPExtractor) BuildArgs(url, destDir string) []string {
	format := e.config.Format
	if format == "" {
		format = domain.DefaultVideoFormat
	}
	mergeFormat := e.config.MergeFormat
	if mergeFormat == "" {
		mergeFormat = "mp4"
	}

	return []string{
		"--format", format,
		"--merge-output-format", mergeFormat,
		// Remux only: copy streams instead of re-encoding
		"--postprocessor-args", "ffmpeg:-c:v copy -c:a copy",
		"--no-write-thumbnail",
		"--no-write-info-json",
		"--quiet",
		"--no-warnings",
		"--no-progress",
		"--no-simulate",
		"--dump-json",
		"-o", filepath.Join(destDir, "%(id)s_%(height)sp.%(ext)s"),
		// end of options: url is never parsed as a flag
		"--",
		url,
	}
}

// Extract downloads the video behind url into destDir
func (e *YTDLPExtractor) Extract(ctx context.Context, url, destDir string) (outcome *domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("yt-dlp adapter panicked", zap.Any("panic", r), zap.String("url", url))
			outcome = domain.FailureOutcome(fmt.Sprint(r))
		}
	}()

	if err := e.fs.MkdirAll(destDir, 0755); err != nil {
		return domain.FailureOutcome(fmt.Sprintf("failed to create working directory: %v", err))
	}

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	args := e.BuildArgs(url, destDir)
	transcript := e.toolLog.Begin("Video: "+url, CommandLine(e.config.Binary, args...))

	e.logger.Debug("Running yt-dlp", zap.String("url", url), zap.String("dir", destDir))
	result, err := e.runner.Run(ctx, e.config.Binary, args...)
	if err != nil {
		message := err.Error()
		if errors.Is(err, domain.ErrCommandTimeout) {
			message = fmt.Sprintf("yt-dlp timed out after %v", e.config.Timeout)
		}
		transcript.End(false, message)
		return domain.FailureOutcome(message)
	}
	transcript.Output("stderr", result.Stderr)

	if result.ExitCode != 0 {
		message := strings.TrimSpace(result.Stderr)
		if message == "" {
			message = fmt.Sprintf("yt-dlp exited with code %d", result.ExitCode)
		}
		transcript.End(false, message)
		return domain.FailureOutcome(message)
	}

	info, err := parseYTDLPInfo(result.Stdout)
	if err != nil {
		transcript.End(false, err.Error())
		return domain.FailureOutcome(err.Error())
	}

	path := e.resolveOutputPath(destDir, info)
	video := domain.VideoResult{
		ID:       info.ID,
		Width:    intOrZero(info.Width),
		Height:   intOrZero(info.Height),
		FPS:      info.FPS,
		Ext:      info.Ext,
		FilePath: path,
		SizeMB:   domain.BytesToMB(FileSize(e.fs, path)),
	}

	transcript.End(true, fmt.Sprintf("Downloaded: %s", path))
	return domain.VideoOutcome(video)
}

// resolveOutputPath rebuilds the output path from the template, falling back to the
// paths yt-dlp reported when the rebuilt one does not exist
func (e *YTDLPExtractor) resolveOutputPath(destDir string, info *ytdlpInfo) string {
	height := "NA"
	if info.Height != nil {
		height = strconv.Itoa(*info.Height)
	}
	templated := filepath.Join(destDir, fmt.Sprintf("%s_%sp.%s", info.ID, height, info.Ext))
	if fileExists(e.fs, templated) {
		return templated
	}

	var candidates []string
	for _, d := range info.RequestedDownloads {
		candidates = append(candidates, d.Filepath)
	}
	candidates = append(candidates, info.Filename, info.LegacyFilename)

	for _, candidate := range candidates {
		if candidate != "" && fileExists(e.fs, candidate) {
			return candidate
		}
	}
	return templated
}

// parseYTDLPInfo reads the first info record from --dump-json output.
// Multi-video posts print one record per entry.
func parseYTDLPInfo(stdout string) (*ytdlpInfo, error) {
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var info ytdlpInfo
		if err := json.Unmarshal([]byte(line), &info); err != nil {
			return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
		}
		return &info, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read yt-dlp output: %w", err)
	}
	return nil, fmt.Errorf("yt-dlp reported no media")
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
