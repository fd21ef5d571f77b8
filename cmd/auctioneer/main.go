package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gavelpoint/auctioneer/internal/announce"
	"github.com/gavelpoint/auctioneer/internal/auction"
	"github.com/gavelpoint/auctioneer/internal/broadcast"
	"github.com/gavelpoint/auctioneer/internal/clock"
	"github.com/gavelpoint/auctioneer/internal/config"
	"github.com/gavelpoint/auctioneer/internal/health"
	"github.com/gavelpoint/auctioneer/internal/leader"
	"github.com/gavelpoint/auctioneer/internal/server"
	"github.com/gavelpoint/auctioneer/internal/store"
	"github.com/gavelpoint/auctioneer/internal/telemetry"

	// Register store drivers so they are available via store.Open.
	_ "github.com/gavelpoint/auctioneer/internal/store/memstore"
	_ "github.com/gavelpoint/auctioneer/internal/store/postgres"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := run(*configPath); err != nil {
		slog.Error("fatal error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup telemetry.
	tp, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		slog.Warn("telemetry setup failed, continuing without OTEL export", slog.Any("error", err))
		tp = telemetry.NewNopProvider()
	}
	defer func() {
		if shutdownErr := tp.Shutdown(context.Background()); shutdownErr != nil {
			slog.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	logger := tp.Logger
	clk := clock.Real{}

	// Open the journal using the configured driver (memory or postgres).
	repos, err := store.Open(ctx, cfg.Database, clk)
	if err != nil {
		return fmt.Errorf("opening store (driver=%s): %w", cfg.Database.Driver, err)
	}
	defer repos.Closer.Close()

	logger.InfoContext(ctx, "journal opened", slog.String("driver", cfg.Database.Driver))

	// The hub's snapshot closure runs only once the engine is serving, so the
	// late assignment below is safe.
	var engine *auction.Engine
	hub := broadcast.NewHub(func() any { return engine.Snapshot() }, logger)
	defer hub.Close()

	gateway := broadcast.Gateway(hub)
	var announcer *announce.Announcer
	if cfg.Announcer.Enabled {
		announcer, err = announce.New(cfg.Announcer, logger)
		if err != nil {
			return fmt.Errorf("creating announcer: %w", err)
		}
		gateway = broadcast.Multi{hub, announcer}
	}

	engine, err = auction.NewEngine(cfg.Auction, repos.Events, gateway, logger, tp.TracerProvider, clk)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	// Setup health checks.
	healthHandler := health.NewHandler(clk,
		health.Checker{
			Name:  "journal",
			Check: repos.Ping,
		},
	)

	// One HTTP server carries the API, the spectator stream and the health
	// endpoints. It runs on all replicas; readiness tracks leadership.
	apiServer := server.New(engine, hub, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthHandler.LivenessHandler())
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler())
	mux.Handle("/", apiServer.Handler())

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.InfoContext(ctx, "starting http server", slog.Int("port", cfg.Server.Port))
		if listenErr := httpServer.ListenAndServe(); listenErr != nil && listenErr != http.ErrServerClosed {
			logger.ErrorContext(ctx, "http server error", slog.Any("error", listenErr))
		}
	}()

	// serve is the work only the leader should do: replay the journal,
	// connect the announcer and mark this replica ready.
	serve := func(ctx context.Context) {
		if n, recoverErr := engine.Recover(ctx); recoverErr != nil {
			logger.ErrorContext(ctx, "journal recovery failed", slog.Any("error", recoverErr))
		} else if n > 0 {
			logger.InfoContext(ctx, "recovered auction state", slog.Int("events", n))
		}

		if announcer != nil {
			if startErr := announcer.Start(ctx); startErr != nil {
				logger.ErrorContext(ctx, "starting announcer failed", slog.Any("error", startErr))
			}
		}

		healthHandler.SetReady(true)
		logger.InfoContext(ctx, "auctioneer is running", slog.String("version", version))

		// Block until leadership is lost or the process is shutting down.
		<-ctx.Done()

		healthHandler.SetReady(false)
		if announcer != nil {
			if stopErr := announcer.Stop(); stopErr != nil {
				logger.Error("announcer shutdown error", slog.Any("error", stopErr))
			}
		}
	}

	if cfg.LeaderElection.Enabled {
		logger.InfoContext(ctx, "leader election enabled, waiting for leadership...")

		if leaderErr := leader.Run(ctx, cfg.LeaderElection, logger, serve, func() {
			logger.Info("lost leadership, shutting down...")
			cancel()
		}); leaderErr != nil {
			return fmt.Errorf("leader election: %w", leaderErr)
		}
	} else {
		serve(ctx)
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}
