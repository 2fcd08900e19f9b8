package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/yourusername/x-fetch-go/api/handlers"
	"github.com/yourusername/x-fetch-go/internal/domain"
)

// fetchResult is what a fetch saved locally
type fetchResult struct {
	Kind       domain.MediaKind
	Resolution string
	SizeMB     float64
	Files      []string
}

// Summary renders the result the way the web page banner does
func (r *fetchResult) Summary() string {
	if r.Kind == domain.KindVideo {
		return fmt.Sprintf("Video downloaded successfully! (%s • %.2f MB)", r.Resolution, r.SizeMB)
	}
	return fmt.Sprintf("%d image(s) downloaded successfully! (%.2f MB)", len(r.Files), r.SizeMB)
}

// fetchClient drives an acquisition on the server and pulls the artifacts down
type fetchClient struct {
	baseURL string
	http    *http.Client
	fs      afero.Fs
}

func newFetchClient(baseURL string, fs afero.Fs) *fetchClient {
	return &fetchClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		// yt-dlp is allowed minutes per attempt
		http: &http.Client{Timeout: 30 * time.Minute},
		fs:   fs,
	}
}

// Fetch acquires url on the server and saves every artifact into dir
func (c *fetchClient) Fetch(ctx context.Context, url, dir string) (*fetchResult, error) {
	response, err := c.acquire(ctx, url)
	if err != nil {
		return nil, err
	}

	result := &fetchResult{
		Kind:       domain.MediaKind(response.Type),
		Resolution: response.Resolution,
		SizeMB:     response.SizeMB,
	}
	for _, artifact := range response.Artifacts {
		path, err := c.download(ctx, artifact, dir)
		if err != nil {
			return result, err
		}
		result.Files = append(result.Files, path)
	}
	return result, nil
}

func (c *fetchClient) acquire(ctx context.Context, url string) (*handlers.AcquireResponse, error) {
	payload, _ := json.Marshal(handlers.AcquireRequest{URL: url})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/acquisitions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var response handlers.AcquireResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("unexpected response (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if !response.Success {
		if response.Error == "" {
			// 400 carries its message under "error" too; anything else is opaque
			return nil, fmt.Errorf("server returned %d", resp.StatusCode)
		}
		return nil, errors.New(response.Error)
	}
	return &response, nil
}

// download saves one artifact under its sanitized name. The server deletes it afterwards.
func (c *fetchClient) download(ctx context.Context, artifact handlers.ArtifactView, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+artifact.DownloadURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download %s: server returned %d", artifact.Name, resp.StatusCode)
	}

	path := filepath.Join(dir, domain.SanitizeFilename(artifact.Name))
	file, err := c.fs.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		c.fs.Remove(path)
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}
	return path, nil
}
