package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/yourusername/x-fetch-go/internal/domain"
	"github.com/yourusername/x-fetch-go/internal/infrastructure"
	"github.com/yourusername/x-fetch-go/pkg/logger"
)

// Acquisition is the result of one submitted URL
type Acquisition struct {
	RequestID string
	Outcome   *domain.Outcome
	Artifacts []*domain.Artifact
}

// AcquisitionService runs acquisitions on behalf of the HTTP layer and tracks the
// produced files until they are served, discarded or expire.
type AcquisitionService struct {
	orchestrator *Orchestrator
	repo         domain.ArtifactRepository
	fs           afero.Fs
	notifier     *infrastructure.Notifier
	multiLogger  *logger.MultiLogger
	logger       *zap.Logger
	semaphore    chan struct{} // one acquisition at a time

	mu     sync.Mutex
	active string // request ID whose directory is being filled
}

// NewAcquisitionService creates a new acquisition service
func NewAcquisitionService(
	orchestrator *Orchestrator,
	repo domain.ArtifactRepository,
	fs afero.Fs,
	notifier *infrastructure.Notifier,
	multiLogger *logger.MultiLogger,
	log *zap.Logger,
) *AcquisitionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AcquisitionService{
		orchestrator: orchestrator,
		repo:         repo,
		fs:           fs,
		notifier:     notifier,
		multiLogger:  multiLogger,
		logger:       log,
		semaphore:    make(chan struct{}, 1),
	}
}

// Acquire fetches url into a private request directory and registers the resulting files.
// A failed acquisition leaves nothing behind on disk.
func (s *AcquisitionService) Acquire(ctx context.Context, url string) (*Acquisition, error) {
	request, err := domain.NewMediaRequest(url)
	if err != nil {
		return nil, err
	}

	select {
	case s.semaphore <- struct{}{}:
		defer func() { <-s.semaphore }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	started := time.Now()
	s.multiLogger.LogAcquisitionEvent("acquisition_started",
		zap.String("request_id", request.ID),
		zap.String("url", request.URL))

	s.setActive(request.ID)
	defer s.setActive("")

	dir := s.requestDir(request.ID)
	outcome := s.orchestrator.AcquireInto(ctx, request.URL, dir)
	s.notifyAsync(outcome)

	if !outcome.Success() {
		if err := s.fs.RemoveAll(dir); err != nil {
			s.logger.Warn("Failed to clean up request directory", zap.String("dir", dir), zap.Error(err))
		}
		s.multiLogger.LogAcquisitionEvent("acquisition_failed",
			zap.String("request_id", request.ID),
			zap.String("url", request.URL),
			zap.String("error", outcome.Error),
			zap.Duration("elapsed", time.Since(started)))
		return &Acquisition{RequestID: request.ID, Outcome: outcome}, nil
	}

	s.pruneExcept(dir, outcome.Files())

	artifacts := make([]*domain.Artifact, 0, len(outcome.Files()))
	for _, path := range outcome.Files() {
		artifacts = append(artifacts, domain.NewArtifact(request.ID, outcome.Kind(), path, infrastructure.FileSize(s.fs, path)))
	}

	if err := s.repo.Create(artifacts); err != nil {
		s.fs.RemoveAll(dir)
		s.multiLogger.LogAppError("Failed to register artifacts",
			zap.String("request_id", request.ID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to register artifacts: %w", err)
	}

	s.multiLogger.LogAcquisitionEvent("acquisition_completed",
		zap.String("request_id", request.ID),
		zap.String("url", request.URL),
		zap.String("kind", string(outcome.Kind())),
		zap.Int("files", len(artifacts)),
		zap.Duration("elapsed", time.Since(started)))

	return &Acquisition{RequestID: request.ID, Outcome: outcome, Artifacts: artifacts}, nil
}

// Drain waits for the running acquisition to finish and keeps new ones from starting.
// It is meant for shutdown; the service accepts no further acquisitions once it returns nil.
func (s *AcquisitionService) Drain(ctx context.Context) error {
	select {
	case s.semaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("acquisition still running: %w", ctx.Err())
	}
}

func (s *AcquisitionService) setActive(requestID string) {
	s.mu.Lock()
	s.active = requestID
	s.mu.Unlock()
}

func (s *AcquisitionService) isActive(requestID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != "" && s.active == requestID
}

func (s *AcquisitionService) notifyAsync(outcome *domain.Outcome) {
	if s.notifier == nil {
		return
	}
	go s.notifier.NotifyOutcome(context.Background(), outcome)
}

func (s *AcquisitionService) requestDir(requestID string) string {
	return filepath.Join(s.orchestrator.WorkDir(), requestID)
}

// Open returns a registered artifact together with its open file.
// The caller closes the file.
func (s *AcquisitionService) Open(id string) (*domain.Artifact, afero.File, error) {
	artifact, err := s.repo.FindByID(id)
	if err != nil {
		return nil, nil, err
	}

	file, err := s.fs.Open(artifact.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.repo.Delete(artifact.ID)
			return nil, nil, domain.ErrArtifactMissing
		}
		return nil, nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	return artifact, file, nil
}

// Release deletes a served artifact's file and forgets it
func (s *AcquisitionService) Release(artifact *domain.Artifact) error {
	if err := s.fs.Remove(artifact.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.multiLogger.LogAppError("Failed to delete artifact",
			zap.String("id", artifact.ID),
			zap.String("path", artifact.Path),
			zap.Error(err))
		return fmt.Errorf("failed to delete artifact: %w", err)
	}

	if err := s.repo.Delete(artifact.ID); err != nil {
		return fmt.Errorf("failed to forget artifact: %w", err)
	}

	s.removeIfEmpty(s.requestDir(artifact.RequestID))
	s.multiLogger.LogAcquisitionEvent("artifact_released",
		zap.String("id", artifact.ID),
		zap.String("request_id", artifact.RequestID))
	return nil
}

// Discard deletes an artifact without serving it
func (s *AcquisitionService) Discard(id string) error {
	artifact, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}
	return s.Release(artifact)
}

// Sweep releases artifacts registered before cutoff and removes request directories
// untouched since then that no registered artifact points into, such as the leftovers
// of a process killed mid-download. It returns the number of expired artifacts.
func (s *AcquisitionService) Sweep(cutoff time.Time) (int, error) {
	expired, err := s.repo.FindCreatedBefore(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired artifacts: %w", err)
	}

	released := 0
	for _, artifact := range expired {
		if err := s.Release(artifact); err != nil {
			s.logger.Warn("Failed to release expired artifact", zap.String("id", artifact.ID), zap.Error(err))
			continue
		}
		released++
	}

	entries, err := afero.ReadDir(s.fs, s.orchestrator.WorkDir())
	if err != nil && !os.IsNotExist(err) {
		return released, fmt.Errorf("failed to list workspace: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() || !entry.ModTime().Before(cutoff) {
			continue
		}
		s.removeOrphan(entry.Name())
	}

	return released, nil
}

// removeOrphan deletes a request directory with no registered artifacts
func (s *AcquisitionService) removeOrphan(requestID string) {
	if s.isActive(requestID) {
		return
	}
	artifacts, err := s.repo.FindByRequest(requestID)
	if err != nil {
		s.logger.Warn("Failed to look up request artifacts", zap.String("request_id", requestID), zap.Error(err))
		return
	}
	dir := s.requestDir(requestID)
	if len(artifacts) > 0 {
		s.removeIfEmpty(dir)
		return
	}
	if err := s.fs.RemoveAll(dir); err != nil {
		s.logger.Warn("Failed to remove orphaned request directory", zap.String("dir", dir), zap.Error(err))
		return
	}
	s.multiLogger.LogAcquisitionEvent("orphan_removed", zap.String("request_id", requestID))
}

// Pending returns the number of artifacts waiting to be served
func (s *AcquisitionService) Pending() (int64, error) {
	return s.repo.Count()
}

// pruneExcept deletes leftovers of the failed video attempt so only the artifacts remain
func (s *AcquisitionService) pruneExcept(dir string, keep []string) {
	snapshot, err := infrastructure.SnapshotDir(s.fs, dir)
	if err != nil {
		return
	}
	kept := make(map[string]bool, len(keep))
	for _, path := range keep {
		kept[filepath.Clean(path)] = true
	}
	for name := range snapshot {
		path := filepath.Join(dir, name)
		if !kept[path] {
			s.fs.Remove(path)
		}
	}
}

func (s *AcquisitionService) removeIfEmpty(dir string) {
	empty, err := afero.IsEmpty(s.fs, dir)
	if err != nil || !empty {
		return
	}
	s.fs.Remove(dir)
}
