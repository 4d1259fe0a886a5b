package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftsync/go/internal/draft/countdown"
	"github.com/mcdev12/draftsync/go/internal/identity"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	zerolog.SetGlobalLevel(level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("draftsync failed")
	}
	log.Info().Msg("draftsync shutdown complete")
}

func run(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	api := cfg.APIClient()
	ids := identity.NewFileStore(cfg.IdentityFile)
	reader := bufio.NewReader(in)

	local, users, err := join(ctx, api, ids, cfg.EventID, reader, out)
	if err != nil {
		return fmt.Errorf("join draft: %w", err)
	}

	players, err := api.ListEventPlayers(ctx, local.EventID)
	if err != nil {
		log.Warn().Err(err).Int("event_id", local.EventID).Msg("failed to load event players, using full pool")
		if players, err = api.ListPlayers(ctx); err != nil {
			return fmt.Errorf("load players: %w", err)
		}
	}

	log.Info().
		Int("event_id", local.EventID).
		Int("user_id", local.UserID).
		Int("users", len(users)).
		Int("players", len(players)).
		Str("channel_url", cfg.ChannelURL).
		Msg("starting draft client")

	services := setupServices(cfg, api, local, out)
	defer services.Close()
	services.Load(users, players)

	inspectServer := startInspectServer(cfg.InspectAddr, services.Session)
	defer stopInspectServer(inspectServer)

	ticker := countdown.NewTicker(clockwork.NewRealClock(), services.Store, countdown.DefaultInterval, services.Renderer.OnCountdown)
	go ticker.Run(ctx)

	services.Session.Connect()

	fmt.Fprintln(out, helpText)
	return NewConsole(services.Session, out).Run(ctx, reader)
}
