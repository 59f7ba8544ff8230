// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/leaguesync/internal/config"
)

type fakeHTTPServer struct {
	listenErr   error
	shutdownErr error
	stopped     chan struct{}
	once        sync.Once
	shutdowns   atomic.Int32
	closes      atomic.Int32
	// hang keeps ListenAndServe running through Shutdown, like a server
	// stuck on a long batch request.
	hang bool
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{stopped: make(chan struct{})}
}

func (f *fakeHTTPServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stopped
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(ctx context.Context) error {
	f.shutdowns.Add(1)
	if f.hang {
		<-ctx.Done()
		return ctx.Err()
	}
	f.once.Do(func() { close(f.stopped) })
	return f.shutdownErr
}

func (f *fakeHTTPServer) Close() error {
	f.closes.Add(1)
	f.once.Do(func() { close(f.stopped) })
	return nil
}

func TestHTTPServerServiceShutsDownOnCancel(t *testing.T) {
	srv := newFakeHTTPServer()
	svc := NewHTTPServerService(srv, &config.ServerConfig{ShutdownTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	if srv.shutdowns.Load() != 1 {
		t.Errorf("Shutdown called %d times, want 1", srv.shutdowns.Load())
	}
	if srv.closes.Load() != 0 {
		t.Errorf("Close called %d times after a clean drain", srv.closes.Load())
	}
}

// A shutdown that outlives the drain window must not leave connections open.
func TestHTTPServerServiceForceClosesAfterDrainWindow(t *testing.T) {
	srv := newFakeHTTPServer()
	srv.hang = true
	svc := NewHTTPServerService(srv, &config.ServerConfig{ShutdownTimeout: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after the drain window")
	}
	if srv.shutdowns.Load() != 1 {
		t.Errorf("Shutdown called %d times, want 1", srv.shutdowns.Load())
	}
	if srv.closes.Load() != 1 {
		t.Errorf("Close called %d times, want 1", srv.closes.Load())
	}
}

func TestHTTPServerServiceListenFailure(t *testing.T) {
	srv := newFakeHTTPServer()
	srv.listenErr = errors.New("address in use")
	svc := NewHTTPServerService(srv, &config.ServerConfig{Port: 8080})

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, srv.listenErr) {
		t.Errorf("Serve() error = %v, want wrapped listen error", err)
	}
}

func TestHTTPServerServiceDefaultTimeout(t *testing.T) {
	svc := NewHTTPServerService(newFakeHTTPServer(), &config.ServerConfig{Host: "127.0.0.1", Port: 8080})
	if svc.drain != config.DefaultShutdownTimeout {
		t.Errorf("drain = %v, want %v", svc.drain, config.DefaultShutdownTimeout)
	}
	if svc.addr != "127.0.0.1:8080" {
		t.Errorf("addr = %q", svc.addr)
	}
	if svc.String() != "http-server" {
		t.Errorf("String() = %q", svc.String())
	}
}

type fakeScheduler struct {
	startErr error
	starts   atomic.Int32
	stops    atomic.Int32
}

func (f *fakeScheduler) Start(ctx context.Context) error {
	f.starts.Add(1)
	return f.startErr
}

func (f *fakeScheduler) Stop() error {
	f.stops.Add(1)
	return nil
}

func TestSchedulerServiceLifecycle(t *testing.T) {
	sched := &fakeScheduler{}
	svc := NewSchedulerService(sched)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.Now().Add(time.Second)
	for sched.starts.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	if sched.starts.Load() != 1 || sched.stops.Load() != 1 {
		t.Errorf("starts=%d stops=%d, want 1/1", sched.starts.Load(), sched.stops.Load())
	}
}

func TestSchedulerServiceStartFailure(t *testing.T) {
	sched := &fakeScheduler{startErr: errors.New("boom")}
	err := NewSchedulerService(sched).Serve(context.Background())
	if err == nil || !errors.Is(err, sched.startErr) {
		t.Errorf("Serve() error = %v, want wrapped start error", err)
	}
	if sched.stops.Load() != 0 {
		t.Error("Stop should not run when Start failed")
	}
}
