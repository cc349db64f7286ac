package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"leadqual_backend/platform/logger"
)

func TestRunServerDrainsOnContextCancel(t *testing.T) {
	srv := &http.Server{
		Addr:    "127.0.0.1:0",
		Handler: http.NewServeMux(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runServer(ctx, logger.New("test"), srv)
	}()

	// Give the listener a moment to come up before signalling shutdown.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runServer() = %v, want nil after graceful shutdown", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runServer did not return after context cancellation")
	}
}

func TestRunServerReturnsListenError(t *testing.T) {
	srv := &http.Server{
		Addr:    "127.0.0.1:-1",
		Handler: http.NewServeMux(),
	}

	ctx := context.Background()
	done := make(chan error, 1)
	go func() {
		done <- runServer(ctx, logger.New("test"), srv)
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("runServer() = nil, want listen error for invalid address")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runServer did not surface the listen error")
	}
}
