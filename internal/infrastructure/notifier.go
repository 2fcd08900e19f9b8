package infrastructure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/x-fetch-go/internal/domain"
)

const notifyTimeout = 5 * time.Second

// Notifier pops a desktop notification when an acquisition finishes
type Notifier struct {
	config *domain.NotificationConfig
	runner domain.CommandRunner
	logger *zap.Logger
}

// NewNotifier creates a new desktop notifier
func NewNotifier(config *domain.NotificationConfig, runner domain.CommandRunner, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		config: config,
		runner: runner,
		logger: logger,
	}
}

// Send shows a notification. Failures are logged, never returned to the caller's flow.
func (n *Notifier) Send(ctx context.Context, title, message string) error {
	if n == nil || !n.config.Enabled {
		return nil
	}

	var binary string
	var args []string
	switch n.config.Method {
	case "osascript":
		binary = "osascript"
		args = []string{"-e", fmt.Sprintf(`display notification "%s" with title "%s"`,
			appleScriptEscape(message), appleScriptEscape(title))}
	case "notify-send":
		binary = "notify-send"
		args = []string{title, message}
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	result, err := n.runner.Run(ctx, binary, args...)
	if err == nil && result.ExitCode != 0 {
		err = fmt.Errorf("%s exited with code %d", binary, result.ExitCode)
	}
	if err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", n.config.Method),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent", zap.String("title", title))
	return nil
}

// NotifyOutcome describes a finished acquisition
func (n *Notifier) NotifyOutcome(ctx context.Context, outcome *domain.Outcome) {
	if n == nil || outcome == nil {
		return
	}

	url := truncateString(outcome.SourceURL, 40)
	switch outcome.Kind() {
	case domain.KindVideo:
		n.Send(ctx, "Video Ready", fmt.Sprintf("%s • %.2f MB: %s", outcome.Video.Resolution(), outcome.Video.SizeMB, url))
	case domain.KindImages:
		n.Send(ctx, "Images Ready", fmt.Sprintf("%d image(s) • %.2f MB: %s", outcome.Images.Count, outcome.Images.SizeMB, url))
	default:
		n.Send(ctx, "Fetch Failed", fmt.Sprintf("%s: %s", url, truncateString(outcome.Error, 80)))
	}
}

func appleScriptEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// truncateString keeps the first maxLen runes of s
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
