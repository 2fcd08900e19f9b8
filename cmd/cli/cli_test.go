package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/x-fetch-go/api/handlers"
	"github.com/yourusername/x-fetch-go/internal/app"
	"github.com/yourusername/x-fetch-go/internal/domain"
)

const testURL = "https://x.com/user/status/1790000000000000000"

type stubExtractor func(ctx context.Context, url, destDir string) *domain.Outcome

func (s stubExtractor) Name() string { return "stub" }

func (s stubExtractor) Extract(ctx context.Context, url, destDir string) *domain.Outcome {
	return s(ctx, url, destDir)
}

func TestFetchClient_SavesArtifacts(t *testing.T) {
	served := map[string]string{
		"/api/v1/artifacts/a1": "first",
		"/api/v1/artifacts/a2": "second",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/api/v1/acquisitions" {
			var req handlers.AcquireRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, testURL, req.URL)

			json.NewEncoder(w).Encode(handlers.AcquireResponse{
				Success: true,
				Type:    "images",
				SizeMB:  0.5,
				Count:   2,
				Artifacts: []handlers.ArtifactView{
					{ID: "a1", Name: "twitter_1_1.jpg", DownloadURL: "/api/v1/artifacts/a1"},
					{ID: "a2", Name: `what?"2".png`, DownloadURL: "/api/v1/artifacts/a2"},
				},
			})
			return
		}
		body, ok := served[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	defer server.Close()

	fs := afero.NewMemMapFs()
	client := newFetchClient(server.URL+"/", fs)

	result, err := client.Fetch(context.Background(), testURL, "/out")
	require.NoError(t, err)
	assert.Equal(t, domain.KindImages, result.Kind)
	assert.Equal(t, []string{"/out/twitter_1_1.jpg", "/out/what2.png"}, result.Files)
	assert.Equal(t, "2 image(s) downloaded successfully! (0.50 MB)", result.Summary())

	content, err := afero.ReadFile(fs, "/out/what2.png")
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))
}

func TestFetchClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"failed outcome", http.StatusUnprocessableEntity, `{"success": false, "error": "No images found"}`, "No images found"},
		{"bad request", http.StatusBadRequest, `{"error": "Please enter a URL"}`, "Please enter a URL"},
		{"not json", http.StatusBadGateway, "upstream down", "unexpected response (502): upstream down"},
		{"opaque failure", http.StatusInternalServerError, `{}`, "server returned 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newFetchClient(server.URL, afero.NewMemMapFs()).Fetch(context.Background(), testURL, "/out")
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestFetchClient_ArtifactGone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(handlers.AcquireResponse{
				Success:    true,
				Type:       "video",
				Resolution: "1280x720",
				Artifacts:  []handlers.ArtifactView{{ID: "v", Name: "v.mp4", DownloadURL: "/api/v1/artifacts/v"}},
			})
			return
		}
		w.WriteHeader(http.StatusGone)
	}))
	defer server.Close()

	fs := afero.NewMemMapFs()
	_, err := newFetchClient(server.URL, fs).Fetch(context.Background(), testURL, "/out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server returned 410")

	exists, _ := afero.Exists(fs, "/out/v.mp4")
	assert.False(t, exists)
}

func TestAcquireLocal_Video(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/out", 0755))

	video := stubExtractor(func(ctx context.Context, url, destDir string) *domain.Outcome {
		path := filepath.Join(destDir, "1790_720p.mp4")
		require.NoError(t, afero.WriteFile(fs, path, []byte("mp4"), 0644))
		require.NoError(t, afero.WriteFile(fs, path+".part", []byte("partial"), 0644))
		return domain.VideoOutcome(domain.VideoResult{Width: 1280, Height: 720, FilePath: path, SizeMB: 1.25})
	})
	images := stubExtractor(func(ctx context.Context, url, destDir string) *domain.Outcome {
		t.Fatal("images must not run after a video success")
		return nil
	})

	result, err := acquireLocal(context.Background(), fs, app.NewOrchestrator(video, images, "/out", nil), testURL, "/out")
	require.NoError(t, err)
	assert.Equal(t, []string{"/out/1790_720p.mp4"}, result.Files)
	assert.Equal(t, "Video downloaded successfully! (1280x720 • 1.25 MB)", result.Summary())

	entries, err := afero.ReadDir(fs, "/out")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1790_720p.mp4", entries[0].Name())
}

func TestAcquireLocal_FailureLeavesNothing(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/out", 0755))

	video := stubExtractor(func(ctx context.Context, url, destDir string) *domain.Outcome {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(destDir, "x.mp4.part"), []byte("partial"), 0644))
		return domain.FailureOutcome("no video")
	})
	images := stubExtractor(func(ctx context.Context, url, destDir string) *domain.Outcome {
		return domain.FailureOutcome(domain.NoImagesFoundMessage)
	})

	_, err := acquireLocal(context.Background(), fs, app.NewOrchestrator(video, images, "/out", nil), testURL, "/out")
	require.Error(t, err)
	assert.Equal(t, domain.NoImagesFoundMessage, err.Error())

	entries, err := afero.ReadDir(fs, "/out")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAcquireLocal_RejectsInvalidURL(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/out", 0755))

	called := false
	extractor := stubExtractor(func(ctx context.Context, url, destDir string) *domain.Outcome {
		called = true
		return domain.FailureOutcome("unused")
	})

	_, err := acquireLocal(context.Background(), fs, app.NewOrchestrator(extractor, extractor, "/out", nil), "-i/etc/passwd", "/out")
	assert.ErrorIs(t, err, domain.ErrInvalidURL)
	assert.False(t, called)

	entries, _ := afero.ReadDir(fs, "/out")
	assert.Empty(t, entries)
}

func TestServerHealth(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer healthy.Close()

	health := newServerHealth(healthy.URL)
	assert.True(t, health.Running())
	assert.NoError(t, health.WaitReady(context.Background()))

	unhealthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer unhealthy.Close()

	health = newServerHealth(unhealthy.URL)
	assert.False(t, health.Running())

	ctx, cancel := context.WithTimeout(context.Background(), 3*serverPollInterval)
	defer cancel()
	start := time.Now()
	assert.Error(t, health.WaitReady(ctx))
	assert.Less(t, time.Since(start), 5*time.Second)
}
