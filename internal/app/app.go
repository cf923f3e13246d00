package app

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireboard/internal/auth"
	"github.com/vovakirdan/wireboard/internal/board"
	"github.com/vovakirdan/wireboard/internal/config"
	"github.com/vovakirdan/wireboard/internal/core"
	transporthttp "github.com/vovakirdan/wireboard/internal/transport/http"
)

const ticketIssuer = "wireboard"

// App wires together the board store, hub and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	boards          *board.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	boards := board.NewStore(board.WithCapacity(cfg.MaxSegments, cfg.EvictBatch))

	var tickets *auth.TicketConfig
	if cfg.TicketSecret != "" {
		tickets = &auth.TicketConfig{
			Secret: []byte(cfg.TicketSecret),
			Issuer: ticketIssuer,
			TTL:    cfg.TicketTTL,
		}
		logger.Info().Dur("ttl", cfg.TicketTTL).Msg("room tickets enabled")
	}

	hub := core.NewHub(boards, tickets, logger)
	server := transporthttp.NewServer(hub, boards, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		boards:          boards,
		log:             logger,
	}, nil
}

// Handler exposes the HTTP handler, mostly for tests.
func (a *App) Handler() stdhttp.Handler {
	return a.server.Handler
}

// RunHub runs only the hub loop, for callers that serve Handler themselves.
func (a *App) RunHub(ctx context.Context) {
	a.hub.Run(ctx)
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Int("rooms", a.boards.Len()).Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-serverErr
	}
}
