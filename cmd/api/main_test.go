package main

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/logging"
)

func TestRunServerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- runServer(ctx, srv) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runServer did not return after cancel")
	}
}

type recordingSubscriber struct {
	disconnected chan struct{}
}

func (r *recordingSubscriber) Disconnect() { close(r.disconnected) }

func TestRunTelemetryDisconnectsBeforeDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &recordingSubscriber{disconnected: make(chan struct{})}

	done := runTelemetry(ctx, func(context.Context) (disconnecter, error) { return sub, nil }, logging.Discard())

	select {
	case <-done:
		t.Fatal("telemetry stopped before cancel")
	case <-time.After(20 * time.Millisecond):
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("runTelemetry did not finish after cancel")
	}
	select {
	case <-sub.disconnected:
	default:
		t.Fatal("done closed before the subscriber disconnected")
	}
}

func TestRunTelemetryStartFailure(t *testing.T) {
	done := runTelemetry(context.Background(), func(context.Context) (disconnecter, error) {
		return nil, errors.New("broker unreachable")
	}, logging.Discard())

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("runTelemetry did not finish after a failed start")
	}
}
