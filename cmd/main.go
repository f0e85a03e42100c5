package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"travelsure/internal/config"
	"travelsure/internal/custody"
	"travelsure/internal/database/postgres"
	redisdb "travelsure/internal/database/redis"
	"travelsure/internal/event"
	"travelsure/internal/handlers"
	"travelsure/internal/repository"
	"travelsure/internal/services"
	"travelsure/internal/verifier"

	"github.com/gofiber/fiber/v3"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("/travelsure", "log", "insurance_service")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	logFileName := fmt.Sprintf("log_%s.log", time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(logDir, logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(file, nil)))
	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Printf("failed to set up file logging, using stderr: %v", err)
	} else {
		defer logFile.Close()
	}

	cfg := config.New()

	// Engine state shared by every mutating service: one mutex, one clock,
	// one runtime config.
	state := services.NewEngineState(services.NewRealClock(), cfg.OperatorID, services.ProtocolConfig{
		ExpiryWindow:         time.Duration(cfg.EngineCfg.ExpiryWindowSeconds) * time.Second,
		CorrelationNamespace: cfg.EngineCfg.CorrelationNamespace,
		ResponseBudget:       cfg.EngineCfg.ResponseBudget,
		VerifierNetworkID:    cfg.VerifierCfg.NetworkID,
	})

	var (
		policyStore  services.PolicyStore  = repository.NewMemoryPolicyStore()
		tierStore    services.TierStore    = repository.NewMemoryTierStore()
		requestStore services.RequestStore = repository.NewMemoryRequestStore()
		ledger       services.CustodyLedger
		notifier     services.PolicyNotifier
	)

	if cfg.PostgresCfg.Enabled {
		db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			go postgres.RetryConnectOnFailed(30*time.Second, &db, cfg.PostgresCfg)
		}
		if db != nil {
			policyStore = repository.NewPolicyRepository(db)
			tierStore = repository.NewTierRepository(db)
			requestStore = repository.NewRequestRepository(db)
		}
	}

	if cfg.RedisCfg.Enabled {
		redisClient, err := redisdb.NewRedisClient(cfg.RedisCfg)
		if err != nil {
			slog.Error("failed to connect to redis, using in-memory custody", "error", err)
			ledger = custody.NewMemoryLedger()
		} else {
			defer redisClient.Close()
			ledger = custody.NewRedisLedger(redisClient.GetClient(), cfg.EngineCfg.CorrelationNamespace)
			// Postgres keeps pending requests durable; the TTL'd Redis store
			// only backs storage-less runs.
			if !cfg.PostgresCfg.Enabled {
				requestStore = repository.NewRedisRequestStore(redisClient.GetClient(), cfg.EngineCfg.CorrelationNamespace, services.MaxExpiryWindow)
			}
		}
	} else {
		ledger = custody.NewMemoryLedger()
	}

	if cfg.RabbitMQCfg.Enabled {
		rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
		if err != nil {
			slog.Error("failed to connect to RabbitMQ, lifecycle events disabled", "error", err)
		} else {
			defer rabbitConn.Close()
			notifier = event.NewPolicyPublisher(rabbitConn)
		}
	}

	statusClient := verifier.NewHTTPStatusClient(cfg.VerifierCfg.BaseURL, time.Duration(cfg.VerifierCfg.TimeoutSeconds)*time.Second)
	dispatcher := verifier.NewLocalDispatcher(statusClient, time.Duration(cfg.VerifierCfg.TimeoutSeconds)*time.Second)

	tierService := services.NewTierService(state, tierStore)
	policyService := services.NewPolicyService(state, policyStore, tierService, ledger, notifier)
	verificationService := services.NewVerificationService(state, policyStore, requestStore, ledger, dispatcher, notifier)
	dispatcher.Bind(verificationService)

	sweepInterval := time.Duration(cfg.EngineCfg.SweepIntervalSeconds) * time.Second
	expirationService := services.NewExpirationService(state, policyStore, notifier, sweepInterval)
	adminService := services.NewAdminService(state, ledger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := tierService.Seed(ctx); err != nil {
		slog.Error("failed to seed tier catalog", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := expirationService.StartSweeper(ctx); err != nil && err != context.Canceled {
			slog.Error("expiry sweeper exited", "error", err)
		}
	}()

	app := fiber.New()
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("TravelSure insurance service is healthy")
	})

	handlers.NewTierHandler(tierService).Register(app)
	handlers.NewPolicyHandler(policyService, verificationService, expirationService).Register(app)
	handlers.NewVerificationHandler(verificationService, cfg.APIKey).Register(app)
	handlers.NewAdminHandler(adminService).Register(app)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", "error", err)
			cancel()
		}
	}()
	slog.Info("TravelSure insurance service started", "port", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	expirationService.Stop()
	if err := app.Shutdown(); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}
}
