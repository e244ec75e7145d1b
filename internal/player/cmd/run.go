package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/narabyte/pantalla-signage/internal/player/assets"
	"github.com/narabyte/pantalla-signage/internal/player/client"
	"github.com/narabyte/pantalla-signage/internal/player/session"
	"github.com/narabyte/pantalla-signage/internal/player/store"
	"github.com/narabyte/pantalla-signage/internal/player/weather"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the display session until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sess, err := buildSession()
			if err != nil {
				return err
			}

			if cfg.ControlChannel {
				listener, err := session.NewControlListener(sess, cfg.Server, cfg.TerminalID, logger)
				if err != nil {
					return err
				}
				go listener.Run(ctx)
			}

			logger.Info().
				Str("server", cfg.Server).
				Str("terminal", cfg.TerminalID).
				Msg("starting display session")

			if err := sess.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			logger.Info().Msg("display session stopped")
			return nil
		},
	}
}

// buildSession wires the session from the effective configuration
func buildSession() (*session.Session, error) {
	providerClient, err := client.New(cfg.Server)
	if err != nil {
		return nil, err
	}

	fileStore, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	opts := session.Options{
		TerminalID:      cfg.TerminalID,
		Fetcher:         providerClient,
		Store:           fileStore,
		RefreshInterval: cfg.RefreshInterval,
		TickInterval:    cfg.TickInterval,
		Logger:          logger,
	}

	if cfg.Weather {
		opts.Weather = weather.NewOpenMeteo()
	}

	cache, err := assets.NewDiskCache(cfg.CacheDir, providerClient.BaseURL(), logger)
	if err != nil {
		// A screen without an asset cache still works online
		logger.Warn().Err(err).Msg("asset cache unavailable")
	} else {
		opts.Assets = cache
	}

	return session.New(opts)
}
