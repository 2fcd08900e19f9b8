package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogCategory represents different log categories
type LogCategory string

const (
	CategoryAcquisition LogCategory = "acquisition" // Acquisition lifecycle events (JSON)
	CategoryError       LogCategory = "error"       // Application errors (JSON)
)

// Categories lists every category written by MultiLogger
var Categories = []LogCategory{CategoryAcquisition, CategoryError}

// MultiLogger writes categorized JSON logs to one dated file per category.
// Files roll over to a new name when the day changes.
// Raw yt-dlp/gallery-dl output is not routed through here; the extractors keep their own transcript.
type MultiLogger struct {
	config      MultiLoggerConfig
	level       zapcore.Level
	mu          sync.Mutex
	currentDate string
	loggers     map[LogCategory]*zap.Logger
	files       map[LogCategory]*os.File
	now         func() time.Time
}

// MultiLoggerConfig contains configuration for multi-output logging
type MultiLoggerConfig struct {
	Level   string // debug, info, warn, error
	LogsDir string // Directory for log files
}

// NewMultiLogger creates a new multi-output logger
func NewMultiLogger(config MultiLoggerConfig) (*MultiLogger, error) {
	if config.LogsDir == "" {
		return nil, fmt.Errorf("logs_dir must be specified")
	}

	if err := os.MkdirAll(config.LogsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	level, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	ml := &MultiLogger{
		config: config,
		level:  level,
		now:    time.Now,
	}

	ml.mu.Lock()
	defer ml.mu.Unlock()
	if err := ml.openAll(ml.now().Format("20060102")); err != nil {
		return nil, err
	}
	return ml, nil
}

// openAll (re)creates the per-category loggers for date. Caller holds mu.
func (ml *MultiLogger) openAll(date string) error {
	ml.closeFiles()
	ml.loggers = make(map[LogCategory]*zap.Logger, len(Categories))
	ml.files = make(map[LogCategory]*os.File, len(Categories))

	for _, category := range Categories {
		level := ml.level
		if category == CategoryError {
			level = zapcore.ErrorLevel
		}

		path := filepath.Join(ml.config.LogsDir, CategoryFileName(category, date))
		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			ml.closeFiles()
			return fmt.Errorf("failed to create %s logger: %w", category, err)
		}

		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "ts"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.MessageKey = "msg"
		encoderConfig.LevelKey = "level"
		encoderConfig.CallerKey = ""

		core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(file), level)
		ml.loggers[category] = zap.New(core)
		ml.files[category] = file
	}

	ml.currentDate = date
	return nil
}

func (ml *MultiLogger) closeFiles() {
	for _, logger := range ml.loggers {
		logger.Sync()
	}
	for _, file := range ml.files {
		file.Close()
	}
}

// CategoryFileName returns the file name used for category on date (YYYYMMDD)
func CategoryFileName(category LogCategory, date string) string {
	return fmt.Sprintf("%s-%s.log", category, date)
}

// GetLogsDir returns the logs directory path
func (ml *MultiLogger) GetLogsDir() string {
	return ml.config.LogsDir
}

// GetLogger returns the structured logger for a specific category
func (ml *MultiLogger) GetLogger(category LogCategory) *zap.Logger {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	if today := ml.now().Format("20060102"); today != ml.currentDate {
		if err := ml.openAll(today); err != nil {
			return zap.NewNop()
		}
	}

	if logger, ok := ml.loggers[category]; ok {
		return logger
	}
	if logger, ok := ml.loggers[CategoryError]; ok {
		return logger
	}
	return zap.NewNop()
}

// Acquisition returns the acquisition logger (JSON format)
func (ml *MultiLogger) Acquisition() *zap.Logger {
	return ml.GetLogger(CategoryAcquisition)
}

// Error returns the error logger (JSON format)
func (ml *MultiLogger) Error() *zap.Logger {
	return ml.GetLogger(CategoryError)
}

// LogAppError logs an application-level error (Go errors, panics)
func (ml *MultiLogger) LogAppError(msg string, fields ...zap.Field) {
	if ml == nil {
		return
	}
	ml.Error().Error(msg, fields...)
}

// LogAcquisitionEvent logs an acquisition lifecycle event with structured data
func (ml *MultiLogger) LogAcquisitionEvent(event string, fields ...zap.Field) {
	if ml == nil {
		return
	}
	ml.Acquisition().Info(event, fields...)
}

// Sync flushes all loggers
func (ml *MultiLogger) Sync() error {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	var lastErr error
	for _, logger := range ml.loggers {
		if err := logger.Sync(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Close flushes and closes all log files
func (ml *MultiLogger) Close() error {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	var lastErr error
	for _, logger := range ml.loggers {
		if err := logger.Sync(); err != nil {
			lastErr = err
		}
	}
	for _, file := range ml.files {
		if err := file.Close(); err != nil {
			lastErr = err
		}
	}
	ml.loggers = map[LogCategory]*zap.Logger{}
	ml.files = map[LogCategory]*os.File{}
	return lastErr
}
