package app

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/x-fetch-go/internal/domain"
	"github.com/yourusername/x-fetch-go/pkg/logger"
)

func TestJanitor_StartStop(t *testing.T) {
	service := newTestService(afero.NewMemMapFs(), newMockArtifactRepo(), failing("x"), failing("y"))
	janitor := NewJanitor(service, &domain.WorkspaceConfig{ArtifactTTL: time.Minute, SweepInterval: time.Hour}, nil)

	assert.False(t, janitor.IsRunning())
	require.NoError(t, janitor.Start(context.Background()))
	assert.True(t, janitor.IsRunning())

	err := janitor.Start(context.Background())
	assert.EqualError(t, err, "janitor already running")

	require.NoError(t, janitor.Stop())
	assert.False(t, janitor.IsRunning())
	assert.EqualError(t, janitor.Stop(), "janitor not running")

	// restartable
	require.NoError(t, janitor.Start(context.Background()))
	require.NoError(t, janitor.Stop())
}

func TestJanitor_StopsWithContext(t *testing.T) {
	service := newTestService(afero.NewMemMapFs(), newMockArtifactRepo(), failing("x"), failing("y"))
	janitor := NewJanitor(service, &domain.WorkspaceConfig{ArtifactTTL: time.Minute, SweepInterval: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, janitor.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !janitor.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestJanitor_SweepsExpiredArtifacts(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo := newMockArtifactRepo()
	service := newTestService(fs, repo, writingVideo(t, fs), failing("unused"))

	acquisition, err := service.Acquire(context.Background(), testURL)
	require.NoError(t, err)
	acquisition.Artifacts[0].CreatedAt = time.Now().Add(-time.Hour)

	multiLogger, err := logger.NewMultiLogger(logger.MultiLoggerConfig{Level: "info", LogsDir: t.TempDir()})
	require.NoError(t, err)
	defer multiLogger.Close()

	janitor := NewJanitor(service, &domain.WorkspaceConfig{ArtifactTTL: 15 * time.Minute, SweepInterval: 10 * time.Millisecond}, multiLogger)
	require.NoError(t, janitor.Start(context.Background()))
	defer janitor.Stop()

	assert.Eventually(t, func() bool {
		count, _ := repo.Count()
		return count == 0
	}, 2*time.Second, 10*time.Millisecond)

	exists, _ := afero.Exists(fs, acquisition.Artifacts[0].Path)
	assert.False(t, exists)
}

func TestJanitor_SweepNowKeepsFreshArtifacts(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo := newMockArtifactRepo()
	service := newTestService(fs, repo, writingVideo(t, fs), failing("unused"))

	_, err := service.Acquire(context.Background(), testURL)
	require.NoError(t, err)

	janitor := NewJanitor(service, &domain.WorkspaceConfig{ArtifactTTL: 15 * time.Minute, SweepInterval: time.Minute}, nil)
	assert.Equal(t, 0, janitor.SweepNow())

	count, _ := repo.Count()
	assert.Equal(t, int64(1), count)
}
