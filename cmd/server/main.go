package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/harshg28/stockroom/internal/config"
	"github.com/harshg28/stockroom/internal/repository/mongodb"
	"github.com/harshg28/stockroom/internal/repository/sheets"
	"github.com/harshg28/stockroom/internal/scheduler"
	"github.com/harshg28/stockroom/internal/server/handlers"
	"github.com/harshg28/stockroom/internal/server/router"
	"github.com/harshg28/stockroom/internal/service/importer"
	inventorysvc "github.com/harshg28/stockroom/internal/service/inventory"
	issuancesvc "github.com/harshg28/stockroom/internal/service/issuance"
	"github.com/harshg28/stockroom/pkg/clients/mailer"
	"github.com/harshg28/stockroom/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := mongodb.NewStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var notifier issuancesvc.Notifier
	if cfg.Mail.Enabled() {
		notifier = mailer.NewClient(cfg.Mail)
		baseLogger.Info("mail notifier enabled", zap.String("head", cfg.Mail.HeadAddress))
	} else {
		baseLogger.Warn("mail api key missing, notifications disabled")
	}

	inventorySvc := inventorysvc.NewService(store, baseLogger.Named("svc.inventory"))
	issuanceSvc := issuancesvc.NewService(store, notifier, baseLogger.Named("svc.issuance"))

	var importSvc *importer.Service
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		importSvc = importer.NewService(sheetsRepo, inventorySvc, baseLogger.Named("svc.importer"))
		baseLogger.Info("sheet import enabled", zap.String("spreadsheet", cfg.Sheets.SpreadsheetID))
	} else {
		baseLogger.Warn("sheets credentials missing, bulk import disabled")
	}

	itemHandler := handlers.NewItemHandler(inventorySvc, baseLogger.Named("handlers.items"))
	issuanceHandler := handlers.NewIssuanceHandler(issuanceSvc, baseLogger.Named("handlers.issuances"))
	importHandler := handlers.NewImportHandler(importSvc, baseLogger.Named("handlers.import"))
	engine := router.New(itemHandler, issuanceHandler, importHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, inventorySvc, notifier, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
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
