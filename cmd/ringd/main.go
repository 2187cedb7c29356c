// Package main provides the combat server binary: it loads the character
// catalog, connects the leaderboard database, and serves matches over
// WebSocket.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ringsidegames/ringd/internal/config"
	"github.com/ringsidegames/ringd/internal/game/character"
	"github.com/ringsidegames/ringd/internal/gameserver"
	"github.com/ringsidegames/ringd/internal/observability"
	"github.com/ringsidegames/ringd/internal/server"
	"github.com/ringsidegames/ringd/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting combat server",
		zap.String("addr", cfg.Server.Addr()),
		zap.Int("tick_rate", cfg.Sim.TickRate),
	)

	// Load the character catalog
	contentStart := time.Now()
	chars, err := character.LoadFromDir(cfg.Content.CharactersDir)
	if err != nil {
		logger.Fatal("loading characters", zap.Error(err))
	}
	registry, err := character.NewRegistry(chars)
	if err != nil {
		logger.Fatal("building character registry", zap.Error(err))
	}
	logger.Info("characters loaded",
		zap.Int("count", registry.Count()),
		zap.Strings("ids", registry.IDs()),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	// Connect to PostgreSQL for the leaderboard
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)
	leaderboard := postgres.NewLeaderboardRepository(pool.DB())

	ticks := gameserver.NewMatchTickManager(cfg.Sim.TickInterval())

	svc := gameserver.NewService(registry, ticks, leaderboard, gameserver.ServiceConfig{
		TickRate:         cfg.Sim.TickRate,
		SnapshotInterval: cfg.Sim.SnapshotInterval,
		MaxTicks:         cfg.Sim.MaxTicks,
		SpawnGap:         cfg.Sim.SpawnGap,
	}, logger.Named("gameserver"))

	mux := http.NewServeMux()
	mux.Handle("/play", svc)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Health(r.Context(), 2*time.Second); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: mux,
	}

	tickCtx, stopTicks := context.WithCancel(ctx)
	dbDone := make(chan struct{})

	// Stop order is the reverse of Add order: http first, then the tick
	// manager, the database last.
	lifecycle := server.NewLifecycle(logger, cfg.Server.ShutdownTimeout)
	lifecycle.Add("database", &server.FuncService{
		StartFn: func() error { <-dbDone; return nil },
		StopFn: func(context.Context) {
			pool.Close()
			close(dbDone)
		},
	})
	lifecycle.Add("tick-manager", &server.FuncService{
		StartFn: func() error {
			ticks.Start(tickCtx)
			<-tickCtx.Done()
			return nil
		},
		StopFn: func(context.Context) { stopTicks() },
	})
	lifecycle.Add("http", &server.FuncService{
		StartFn: func() error {
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
		StopFn: func(stopCtx context.Context) {
			_ = httpSrv.Shutdown(stopCtx)
		},
	})

	logger.Info("server assembled", zap.Duration("startup", time.Since(start)))
	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("lifecycle error", zap.Error(err))
	}
}
