package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/mamadbah2/aquafarm/internal/config"
	"github.com/mamadbah2/aquafarm/internal/metrics"
	"github.com/mamadbah2/aquafarm/internal/repository/mongodb"
	"github.com/mamadbah2/aquafarm/internal/repository/sheets"
	"github.com/mamadbah2/aquafarm/internal/scheduler"
	"github.com/mamadbah2/aquafarm/internal/server/handlers"
	"github.com/mamadbah2/aquafarm/internal/server/router"
	commandsvc "github.com/mamadbah2/aquafarm/internal/service/commands"
	insightssvc "github.com/mamadbah2/aquafarm/internal/service/insights"
	recordssvc "github.com/mamadbah2/aquafarm/internal/service/records"
	whatsappsvc "github.com/mamadbah2/aquafarm/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/aquafarm/pkg/clients/whatsapp"
	"github.com/mamadbah2/aquafarm/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	mongoRepo, err := mongodb.NewMongoDBRepository(startCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongodb"))
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := mongoRepo.EnsureIndexes(startCtx); err != nil {
		baseLogger.Fatal("failed to create mongodb indexes", zap.Error(err))
	}

	var exporter insightssvc.Exporter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(startCtx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter = sheets.NewInsightsExporter(sheetsRepo)
		baseLogger.Info("google sheets export enabled")
	} else {
		baseLogger.Warn("google sheets credentials missing, spreadsheet export disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	insightsMetrics, err := metrics.NewInsights(registry)
	if err != nil {
		baseLogger.Fatal("failed to register metrics", zap.Error(err))
	}

	insightsService := insightssvc.NewService(mongoRepo, exporter, insightsMetrics, baseLogger.Named("svc.insights"))
	recordsService := recordssvc.NewService(mongoRepo, baseLogger.Named("svc.records"))

	var (
		webhookHandler *handlers.WebhookHandler
		notifier       scheduler.Notifier
	)
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		commandDispatcher := commandsvc.NewService(insightsService, baseLogger.Named("svc.commands"))
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, baseLogger.Named("svc.whatsapp"))
		webhookHandler = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
		notifier = messagingSvc
		baseLogger.Info("whatsapp integration enabled")
	} else {
		baseLogger.Warn("whatsapp credentials missing, chat commands and digests disabled")
	}

	engine := router.New(
		handlers.NewInsightsHandler(insightsService, baseLogger.Named("handlers.insights")),
		handlers.NewRecordsHandler(recordsService, baseLogger.Named("handlers.records")),
		webhookHandler,
		registry,
		baseLogger.Named("router"),
	)

	sched, err := scheduler.NewScheduler(*cfg, insightsService, notifier, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
