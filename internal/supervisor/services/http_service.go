// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/leaguesync/internal/config"
	"github.com/tomtom215/leaguesync/internal/logging"
)

// HTTPServer is the part of *http.Server the service drives.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
	Close() error
}

// HTTPServerService runs the API server until its context ends. On stop it
// drains in-flight requests (a batch trigger can hold one open for the whole
// batch) and force-closes whatever is left when the drain window runs out.
type HTTPServerService struct {
	server HTTPServer
	addr   string
	drain  time.Duration
}

// NewHTTPServerService wraps server using the drain window from cfg.
func NewHTTPServerService(server HTTPServer, cfg *config.ServerConfig) *HTTPServerService {
	drain := cfg.ShutdownTimeout
	if drain <= 0 {
		drain = config.DefaultShutdownTimeout
	}
	return &HTTPServerService{server: server, addr: cfg.Addr(), drain: drain}
}

// Serve implements suture.Service.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	listenErr := make(chan error, 1)
	go func() {
		err := h.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		listenErr <- err
	}()
	logging.Info().Str("addr", h.addr).Msg("HTTP server listening")

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("http server on %s: %w", h.addr, err)
		}
		return errors.New("http server stopped unexpectedly")
	case <-ctx.Done():
	}

	started := time.Now()
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.drain)
	defer cancel()
	if err := h.server.Shutdown(drainCtx); err != nil {
		logging.Warn().Err(err).Dur("drain", h.drain).Msg("HTTP drain window elapsed, closing open connections")
		if cerr := h.server.Close(); cerr != nil {
			return fmt.Errorf("force close http server: %w", cerr)
		}
	}
	<-listenErr
	logging.Info().Dur("elapsed", time.Since(started)).Msg("HTTP server stopped")
	return ctx.Err()
}

func (h *HTTPServerService) String() string { return "http-server" }
