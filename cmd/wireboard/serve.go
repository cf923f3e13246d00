package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wireboard/internal/app"
	"github.com/vovakirdan/wireboard/internal/config"
	"github.com/vovakirdan/wireboard/internal/log"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var overrides config.Config

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the whiteboard HTTP and websocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides.LogLevel = root.logLevel
			overrides.LogFormat = root.logFormat

			bootLogger := log.New(firstNonEmpty(root.logLevel, "info"), firstNonEmpty(root.logFormat, "console"))
			cfg, path, err := config.Load(bootLogger, root.configPath)
			if err != nil {
				return err
			}
			cfg.UpdateFrom(overrides)

			logger := log.New(cfg.LogLevel, cfg.LogFormat)
			logger.Info().Str("config", path).Str("addr", cfg.Addr).Msg("starting wireboard server")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(&cfg, logger)
			if err != nil {
				return err
			}
			if err := application.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("server exited with error")
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&overrides.Addr, "addr", "", "HTTP listen address")
	flags.DurationVar(&overrides.ReadHeaderTimeout, "read-header-timeout", 0, "HTTP read header timeout")
	flags.DurationVar(&overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")
	flags.StringSliceVar(&overrides.AllowedOrigins, "allowed-origin", nil, "allowed browser origin (repeatable)")
	flags.StringVar(&overrides.StaticDir, "static-dir", "", "directory served at / for the browser client")
	flags.Float64Var(&overrides.DrawRateLimit, "draw-rate-limit", 0, "draw messages per second per connection (0 disables)")

	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

