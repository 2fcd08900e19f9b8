package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	shutdownGrace = 30 * time.Second
	drainTimeout  = 10 * time.Second
)

// drainer is satisfied by app.AcquisitionService
type drainer interface {
	Drain(ctx context.Context) error
}

// newHTTPServer derives every request context from ctx, so cancelling ctx aborts
// running acquisitions and kills their tool processes.
func newHTTPServer(ctx context.Context, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

// shutdown stops accepting requests and lets running ones finish within grace.
// Whatever is still running afterwards is cancelled, and shutdown waits for the
// acquisition slot to free up so no tool is still writing into the workspace.
func shutdown(server *http.Server, cancel context.CancelFunc, service drainer, grace time.Duration, log *zap.Logger) {
	ctx, done := context.WithTimeout(context.Background(), grace)
	defer done()

	if err := server.Shutdown(ctx); err != nil {
		log.Warn("Grace period over, cancelling running requests", zap.Error(err))
	}
	cancel()

	drainCtx, drainDone := context.WithTimeout(context.Background(), drainTimeout)
	defer drainDone()
	if err := service.Drain(drainCtx); err != nil {
		log.Error("Acquisition did not stop", zap.Error(err))
	}
}
