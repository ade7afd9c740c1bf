package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/careloop/emr-gateway/internal/config"
	"github.com/careloop/emr-gateway/internal/emr"
	"github.com/careloop/emr-gateway/internal/handler"
	encounterHandler "github.com/careloop/emr-gateway/internal/handler/encounter"
	patientHandler "github.com/careloop/emr-gateway/internal/handler/patient"
	webhookHandler "github.com/careloop/emr-gateway/internal/handler/webhook"
	"github.com/careloop/emr-gateway/internal/middleware"
	"github.com/careloop/emr-gateway/internal/repository/memory"
	"github.com/careloop/emr-gateway/internal/router"
	alertService "github.com/careloop/emr-gateway/internal/service/alert"
	encounterService "github.com/careloop/emr-gateway/internal/service/encounter"
	eventService "github.com/careloop/emr-gateway/internal/service/event"
	notifyService "github.com/careloop/emr-gateway/internal/service/notify"
	patientService "github.com/careloop/emr-gateway/internal/service/patient"
	"github.com/careloop/emr-gateway/pkg/logger"
	"github.com/careloop/emr-gateway/pkg/messaging"
	redisBroker "github.com/careloop/emr-gateway/pkg/messaging/redis"
	"github.com/careloop/emr-gateway/pkg/metrics"
	"golang.org/x/time/rate"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:  logger.ParseLevel(cfg.Server.LogLevel),
		Pretty: cfg.Server.PrettyLogs,
		Output: os.Stdout,
	})

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics("emr_gateway", registry)

	// In-memory mock store, seeded with demo records.
	store := memory.NewStore()
	if err := store.Seed(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to seed mock store")
	}
	patientRepo := memory.NewPatientRepository(store)
	encounterRepo := memory.NewEncounterRepository(store)
	medicationRepo := memory.NewMedicationRepository(store)

	// Event broker: redis when configured, otherwise a no-op.
	var broker messaging.Broker = messaging.NopBroker{}
	if cfg.Redis.URL != "" {
		broker, err = redisBroker.NewRedisBroker(redisBroker.Config{
			URL:        cfg.Redis.URL,
			MaxRetries: 3,
		}, appLogger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
	}
	defer broker.Close()

	emrClient := emr.NewClient(emr.Config{
		BaseURL:  cfg.EMR.BaseURL,
		Token:    cfg.EMR.Token,
		Timeout:  time.Duration(cfg.EMR.TimeoutSeconds) * time.Second,
		CacheTTL: time.Duration(cfg.EMR.CacheTTLSeconds) * time.Second,
	}, m, appLogger)

	eventSvc := eventService.NewService(broker, cfg.Redis.Channel, appLogger)
	notifier := notifyService.NewService(notifyService.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		To:       cfg.SMTP.To,
	}, m, appLogger)

	patientSvc := patientService.NewService(emrClient, patientRepo, eventSvc, m, appLogger, cfg.EMR.MockMode)
	encounterSvc := encounterService.NewService(emrClient, encounterRepo, medicationRepo, eventSvc, m, appLogger, cfg.EMR.MockMode)
	alertSvc := alertService.NewService(cfg.Rules, medicationRepo, notifier, m, appLogger)

	handler.RegisterValidators()

	h := handler.NewHandler(cfg.EMR.MockMode)
	patientH := patientHandler.NewHandler(patientSvc, encounterSvc, alertSvc, medicationRepo)
	encounterH := encounterHandler.NewHandler(encounterSvc, patientSvc, alertSvc, appLogger)
	webhookH := webhookHandler.NewHandler(eventSvc, appLogger)

	r := router.NewRouter(router.Config{
		RateLimit: rate.Limit(cfg.RateLimit.RPS),
		RateBurst: cfg.RateLimit.Burst,
		CORS:      middleware.DefaultCORSConfig(),
	}, patientH, encounterH, webhookH, h, m, registry, appLogger)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		appLogger.Info().
			Int("port", cfg.Server.Port).
			Bool("mock_mode", cfg.EMR.MockMode).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server exited properly")
}
