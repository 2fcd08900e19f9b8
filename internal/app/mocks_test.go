package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yourusername/x-fetch-go/internal/domain"
)

// fakeExtractor counts calls and delegates to extract
type fakeExtractor struct {
	name    string
	mu      sync.Mutex
	calls   int
	dirs    []string
	extract func(ctx context.Context, url, destDir string) *domain.Outcome
}

func (f *fakeExtractor) Name() string { return f.name }

func (f *fakeExtractor) Extract(ctx context.Context, url, destDir string) *domain.Outcome {
	f.mu.Lock()
	f.calls++
	f.dirs = append(f.dirs, destDir)
	f.mu.Unlock()
	return f.extract(ctx, url, destDir)
}

func (f *fakeExtractor) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func failing(message string) *fakeExtractor {
	return &fakeExtractor{
		name: "failing",
		extract: func(ctx context.Context, url, destDir string) *domain.Outcome {
			return domain.FailureOutcome(message)
		},
	}
}

// mockArtifactRepo implements domain.ArtifactRepository for testing
type mockArtifactRepo struct {
	mu        sync.Mutex
	artifacts map[string]*domain.Artifact
	createErr error
}

func newMockArtifactRepo() *mockArtifactRepo {
	return &mockArtifactRepo{artifacts: make(map[string]*domain.Artifact)}
}

func (m *mockArtifactRepo) Create(artifacts []*domain.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, a := range artifacts {
		m.artifacts[a.ID] = a
	}
	return nil
}

func (m *mockArtifactRepo) FindByID(id string) (*domain.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.artifacts[id]; ok {
		return a, nil
	}
	return nil, domain.ErrArtifactNotFound
}

func (m *mockArtifactRepo) FindByRequest(requestID string) ([]*domain.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found []*domain.Artifact
	for _, a := range m.artifacts {
		if a.RequestID == requestID {
			found = append(found, a)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })
	return found, nil
}

func (m *mockArtifactRepo) FindCreatedBefore(cutoff time.Time) ([]*domain.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found []*domain.Artifact
	for _, a := range m.artifacts {
		if a.CreatedAt.Before(cutoff) {
			found = append(found, a)
		}
	}
	return found, nil
}

func (m *mockArtifactRepo) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.artifacts, id)
	return nil
}

func (m *mockArtifactRepo) Count() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.artifacts)), nil
}
