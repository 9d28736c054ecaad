package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lockbox/internal/app"
	"lockbox/internal/catalog"
	"lockbox/internal/clock"
	"lockbox/internal/config"
	"lockbox/internal/profile"
	httpTransport "lockbox/internal/transport/http"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the game server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func runServe(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := newLogger(cfg, stdout)

	logger.Info("starting lockbox server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	c, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	logger.Info("catalog loaded", "packs", len(c.Packs()), "items", len(c.All()))

	lobby := cfg.LobbySettings()
	if !c.Has(lobby.ContentPack) {
		return fmt.Errorf("DEFAULT_PACK %q is not in the catalog", lobby.ContentPack)
	}

	// --- Preferences ---
	var store profile.Store
	if cfg.Store.Enabled {
		db, err := profile.OpenDB(ctx, cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("opening preferences database: %w", err)
		}
		defer db.Close()
		store = profile.NewSQLiteStore(db, logger)
		logger.Info("connected to sqlite", "path", cfg.Store.Path)
	}

	hub := app.NewGameHub(logger, app.HubOptions{
		Scheduler:       clock.Real{},
		Content:         catalog.NewSelector(c, nil),
		Store:           store,
		Lobby:           lobby,
		RoomCodeLength:  cfg.Game.RoomCodeLength,
		StaleTimeout:    cfg.Game.StaleGameTimeout,
		CleanupInterval: cfg.Game.CleanupInterval,
	})
	defer hub.Close()

	srv := httpTransport.NewServer(cfg, hub, c, store, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		return srv.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
