package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftsync/go/internal/draft/inspect"
)

// startInspectServer serves the JSON state view; nil when addr is empty
func startInspectServer(addr string, view inspect.SessionView) *http.Server {
	if addr == "" {
		return nil
	}

	server := inspect.NewServer(addr, view)
	server.ReadTimeout = 10 * time.Second
	server.WriteTimeout = 10 * time.Second
	server.IdleTimeout = 120 * time.Second

	go func() {
		log.Info().Str("addr", server.Addr).Msg("inspect server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("inspect server failed")
		}
	}()
	return server
}

func stopInspectServer(server *http.Server) {
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("inspect server shutdown failed")
	}
}
