package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ToolLog appends raw extractor transcripts to a dated file in the logs directory.
// A ToolLog with an empty directory discards everything.
type ToolLog struct {
	logsDir string
}

// NewToolLog creates a transcript log rooted at logsDir
func NewToolLog(logsDir string) *ToolLog {
	return &ToolLog{logsDir: logsDir}
}

// ToolLogEntry is one open transcript section
type ToolLogEntry struct {
	file *os.File
}

// Begin opens today's transcript file and writes the start marker
func (l *ToolLog) Begin(label, cmdLine string) *ToolLogEntry {
	if l == nil || l.logsDir == "" {
		return &ToolLogEntry{}
	}

	if err := os.MkdirAll(l.logsDir, 0755); err != nil {
		return &ToolLogEntry{}
	}

	dateStr := time.Now().Format("20060102")
	path := filepath.Join(l.logsDir, "tools-"+dateStr+".log")
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return &ToolLogEntry{}
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	file.WriteString(fmt.Sprintf("\n=== [%s] %s ===\n", timestamp, label))
	file.WriteString(fmt.Sprintf("$ %s\n", cmdLine))
	return &ToolLogEntry{file: file}
}

// Output records captured process output
func (e *ToolLogEntry) Output(stream, text string) {
	if e.file == nil || text == "" {
		return
	}
	e.file.WriteString(fmt.Sprintf("--- %s ---\n%s\n", stream, text))
}

// End writes the end marker and closes the file
func (e *ToolLogEntry) End(success bool, message string) {
	if e.file == nil {
		return
	}
	defer e.file.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	e.file.WriteString(fmt.Sprintf("[%s] %s: %s\n", timestamp, status, message))
	e.file.WriteString("=== END ===\n\n")
}
