package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tetris-web/achievements/internal/achievement"
	"github.com/tetris-web/achievements/internal/gamification"
	"github.com/tetris-web/achievements/internal/metrics"
	"github.com/tetris-web/achievements/internal/mock"
	"github.com/tetris-web/achievements/internal/persistence"
	"github.com/tetris-web/achievements/internal/progress"
	"github.com/tetris-web/achievements/internal/ws"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the websocket and REST server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "Override server port")
	serveCmd.Flags().Bool("mock", false, "Drive a simulated game loop into the profile")
	serveCmd.Flags().String("player", mock.Steady.Name, "Simulated player model: casual, steady or expert")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	store, err := persistence.Open(cfg.Storage.Driver, cfg.Storage.Dir, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := gamification.NewHub(ctx, achievement.Default(), store, gamification.Options{
		Logger:       logger,
		Metrics:      m,
		SaveInterval: cfg.Storage.SaveInterval,
	})
	broadcaster := ws.NewBroadcaster(cfg.Server.BroadcastThrottle, cfg.Server.MaxConns, logger, m)
	hub.OnUnlock(broadcaster.PublishUnlocks)
	hub.OnStats(broadcaster.QueueStats)

	// Load the default profile up front so a broken store fails fast.
	if _, err := hub.Get(cfg.Profile); err != nil {
		return fmt.Errorf("load profile %s: %w", cfg.Profile, err)
	}

	if mockMode, _ := cmd.Flags().GetBool("mock"); mockMode {
		name, _ := cmd.Flags().GetString("player")
		player, ok := mock.PlayerByName(name)
		if !ok {
			return fmt.Errorf("unknown player model %q", name)
		}
		gen := mock.NewGenerator(cfg.Mock.Seed, player)
		profile := cfg.Profile
		go gen.Run(ctx, cfg.Mock.Interval, func(ctx context.Context, ev progress.Event) error {
			_, err := hub.Submit(ctx, profile, ev)
			return err
		}, logger.Named("mock"))
	}

	server := ws.NewServer(hub, broadcaster, cfg.Server, cfg.Profile, logger, m)
	logger.Info("starting achievements server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("profile", cfg.Profile),
		zap.String("storage", cfg.Storage.Driver),
	)
	err = ws.ListenAndServe(ctx, cfg.Server.Addr(), server.Handler(), logger)

	stop()
	hub.Wait()
	logger.Info("shutdown complete")
	return err
}
