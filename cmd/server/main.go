package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/fincept/autotrade-bridge/internal/clientdata"
	"github.com/fincept/autotrade-bridge/internal/clients/autotrade"
	"github.com/fincept/autotrade-bridge/internal/clients/trader"
	"github.com/fincept/autotrade-bridge/internal/config"
	"github.com/fincept/autotrade-bridge/internal/database"
	"github.com/fincept/autotrade-bridge/internal/domain"
	"github.com/fincept/autotrade-bridge/internal/events"
	"github.com/fincept/autotrade-bridge/internal/modules/performance"
	"github.com/fincept/autotrade-bridge/internal/modules/portfolio"
	"github.com/fincept/autotrade-bridge/internal/modules/positions"
	"github.com/fincept/autotrade-bridge/internal/modules/screener"
	"github.com/fincept/autotrade-bridge/internal/modules/status"
	"github.com/fincept/autotrade-bridge/internal/modules/strategies"
	"github.com/fincept/autotrade-bridge/internal/reliability"
	"github.com/fincept/autotrade-bridge/internal/scheduler"
	"github.com/fincept/autotrade-bridge/internal/server"
	"github.com/fincept/autotrade-bridge/internal/snapshots"
	"github.com/fincept/autotrade-bridge/pkg/logger"
)

func main() {
	// Load configuration first so the logger honors LOG_LEVEL
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting autotrade bridge")

	// Databases: payload cache (speed profile) and snapshot history (durable)
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "client_data.db"),
		Profile: database.ProfileCache,
		Name:    "client_data",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open payload cache database")
	}
	defer cacheDB.Close()

	snapshotDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "snapshots.db"),
		Profile: database.ProfileStandard,
		Name:    "snapshots",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open snapshot database")
	}
	defer snapshotDB.Close()

	cacheRepo := clientdata.NewRepository(cacheDB.Conn())
	if err := cacheRepo.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize payload cache schema")
	}

	snapshotRepo := snapshots.NewRepository(snapshotDB.Conn())
	if err := snapshotRepo.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize snapshot schema")
	}

	// Event bus
	bus := events.NewBus()
	eventMgr := events.NewManager(bus, log)

	// Clients and adapter
	bridge := autotrade.NewBridge(cfg.AutotradeAPIURL, cfg.BridgeTimeout, cacheRepo, log)
	bridge.SetCacheTTL(cfg.StalePayloadTTL)
	adapter := autotrade.NewAdapter(bridge, log)
	backend := trader.NewClient(cfg.TraderAPIURL, 10*time.Second, log)

	session, err := adapter.Authenticate(context.Background(), domain.Credentials{
		AccountID: cfg.DefaultAccountID,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to establish adapter session")
	}

	// Scheduler (before services: the screener binds to its lifetime context)
	sched := scheduler.New(log)

	// Services
	portfolioService := portfolio.NewService(adapter, log)
	performanceService := performance.NewService(adapter, log)
	statusService := status.NewService(backend, eventMgr, log)
	strategiesService := strategies.NewService(backend, eventMgr, log)
	positionsService := positions.NewService(backend, eventMgr, log)
	screenerService := screener.NewService(backend, eventMgr, sched.Context(), log)

	// Background jobs
	statusSchedule := fmt.Sprintf("@every %s", cfg.StatusPollInterval)
	positionsSchedule := fmt.Sprintf("@every %s", cfg.PositionsPollInterval)

	mustAddJob(sched, log, statusSchedule, status.NewRefreshJob(statusService))
	mustAddJob(sched, log, statusSchedule, strategies.NewRefreshJob(strategiesService))
	mustAddJob(sched, log, positionsSchedule, positions.NewRefreshJob(positionsService))
	mustAddJob(sched, log, positionsSchedule, snapshots.NewJob(portfolioService, snapshotRepo, session, eventMgr, log))
	mustAddJob(sched, log, "@every 10m", clientdata.NewCleanupJob(cacheRepo, log))

	if cfg.Backup != nil && cfg.Backup.Enabled {
		store, err := reliability.NewS3Client(
			cfg.Backup.Endpoint,
			cfg.Backup.AccessKeyID,
			cfg.Backup.SecretKey,
			cfg.Backup.Bucket,
			log,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create backup storage client")
		}

		backupService := reliability.NewBackupService(store, cfg.DataDir, []string{"client_data", "snapshots"}, log)
		mustAddJob(sched, log, "@daily", reliability.NewJob(backupService, cfg.Backup.RetentionDays))
	}

	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Log:      log,
		Config:   cfg,
		EventBus: bus,
		Handlers: server.Handlers{
			Portfolio:   portfolio.NewHandler(portfolioService, session, log),
			Performance: performance.NewHandler(performanceService, session, log),
			Positions:   positions.NewHandler(positionsService, log),
			Strategies:  strategies.NewHandler(strategiesService, log),
			Screener:    screener.NewHandler(screenerService, log),
			Status:      status.NewHandler(statusService, log),
			System:      server.NewSystemHandlers(snapshotRepo, session.AccountID, log),
		},
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Str("account", session.AccountID).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func mustAddJob(sched *scheduler.Scheduler, log zerolog.Logger, schedule string, job scheduler.Job) {
	if err := sched.AddJob(schedule, job); err != nil {
		log.Fatal().Err(err).Str("job", job.Name()).Msg("Failed to register job")
	}
}
