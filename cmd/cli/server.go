package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

const (
	serverBinary       = "xfetch-server"
	serverStartTimeout = 10 * time.Second
	serverPollInterval = 200 * time.Millisecond
)

// serverHealth answers whether an X-Fetch server is up at baseURL
type serverHealth struct {
	baseURL string
	client  *http.Client
}

func newServerHealth(baseURL string) *serverHealth {
	return &serverHealth{
		baseURL: baseURL,
		client:  &http.Client{Timeout: time.Second},
	}
}

// Running checks /health
func (p *serverHealth) Running() bool {
	resp, err := p.client.Get(p.baseURL + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// WaitReady polls until the server answers or ctx expires
func (p *serverHealth) WaitReady(ctx context.Context) error {
	ticker := time.NewTicker(serverPollInterval)
	defer ticker.Stop()

	for {
		if p.Running() {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("server did not start: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// serverCandidates lists where the server binary is looked for, in order
func serverCandidates() []string {
	var candidates []string
	if execPath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(execPath), serverBinary))
	}
	if path, err := exec.LookPath(serverBinary); err == nil {
		candidates = append(candidates, path)
	}
	home := os.Getenv("HOME")
	return append(candidates,
		"/usr/local/bin/"+serverBinary,
		"/usr/bin/"+serverBinary,
		filepath.Join(home, "go/bin", serverBinary),
		filepath.Join(home, ".local/bin", serverBinary),
	)
}

// findServerBinary returns the first candidate that exists
func findServerBinary() (string, error) {
	for _, candidate := range serverCandidates() {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s binary not found", serverBinary)
}

// startServerBackground starts the server as a detached background process
func startServerBackground() error {
	serverPath, err := findServerBinary()
	if err != nil {
		return err
	}

	cmd := exec.Command(serverPath)
	setSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	go cmd.Wait()
	return nil
}

// ensureServerRunning starts the server when nothing answers at serverURL
func ensureServerRunning() error {
	health := newServerHealth(serverURL)
	if health.Running() {
		return nil
	}

	fmt.Println("Server not running, starting...")

	if err := startServerBackground(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), serverStartTimeout)
	defer cancel()
	if err := health.WaitReady(ctx); err != nil {
		return err
	}

	fmt.Println("Server started successfully")
	return nil
}
