package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/messaging"
	"bitbucket.org/flact/governance_backend/models"
	"bitbucket.org/flact/governance_backend/shortener"
	"bitbucket.org/flact/governance_backend/workflow"
)

func main() {
	godotenv.Load()
	logger := config.GetLogger()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	if err := models.MigrateTable(); err != nil {
		logger.Fatal("migration failed: " + err.Error())
	}

	ctx := context.Background()
	bus, err := messaging.NewPubSubBus(ctx, logger)
	if err != nil {
		logger.Fatal("message bus init failed: " + err.Error())
	}

	ledger := messaging.NewLedgerClient(bus)
	mailer := messaging.NewEmailClient(bus)
	links := shortener.NewHTTPShortener(logger)
	files := workflow.NewDiskFileRemover(logger)

	notifications := workflow.NewNotificationService(logger, mailer)
	resolutions := workflow.NewResolutionService(logger, ledger, notifications, links, files)
	events := workflow.NewCompanyEventService(logger, notifications)

	if err := RunEventWorkflow(eventHandlers{resolutions: resolutions, events: events}); err != nil {
		logger.Fatal("event workflow failed to start: " + err.Error())
	}
	logger.Info("governance backend worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
}
