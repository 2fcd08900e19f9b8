package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/x-fetch-go/internal/domain"
	"github.com/yourusername/x-fetch-go/pkg/logger"
)

// Janitor periodically removes artifacts that were never downloaded
type Janitor struct {
	service     *AcquisitionService
	config      *domain.WorkspaceConfig
	multiLogger *logger.MultiLogger
	mu          sync.RWMutex
	running     bool
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// NewJanitor creates a new janitor
func NewJanitor(service *AcquisitionService, config *domain.WorkspaceConfig, multiLogger *logger.MultiLogger) *Janitor {
	return &Janitor{
		service:     service,
		config:      config,
		multiLogger: multiLogger,
	}
}

// Start starts the sweep loop
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return fmt.Errorf("janitor already running")
	}
	j.running = true
	j.stopChan = make(chan struct{})
	j.mu.Unlock()

	j.multiLogger.LogAcquisitionEvent("janitor_started",
		zap.Duration("ttl", j.config.ArtifactTTL),
		zap.Duration("interval", j.config.SweepInterval))

	j.wg.Add(1)
	go j.run(ctx)

	return nil
}

// Stop stops the sweep loop and waits for it to exit
func (j *Janitor) Stop() error {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return fmt.Errorf("janitor not running")
	}
	j.running = false
	close(j.stopChan)
	j.mu.Unlock()

	j.wg.Wait()
	j.multiLogger.LogAcquisitionEvent("janitor_stopped")
	return nil
}

// IsRunning returns whether the janitor is running
func (j *Janitor) IsRunning() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.running
}

// SweepNow removes every artifact older than the configured TTL
func (j *Janitor) SweepNow() int {
	released, err := j.service.Sweep(time.Now().Add(-j.config.ArtifactTTL))
	if err != nil {
		j.multiLogger.LogAppError("Artifact sweep failed", zap.Error(err))
	}
	if released > 0 {
		j.multiLogger.LogAcquisitionEvent("artifacts_expired", zap.Int("count", released))
	}
	return released
}

func (j *Janitor) run(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.mu.Lock()
			j.running = false
			j.mu.Unlock()
			return
		case <-j.stopChan:
			return
		case <-ticker.C:
			j.SweepNow()
		}
	}
}
