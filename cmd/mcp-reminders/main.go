// Command mcp-reminders serves the payment reminder tools over MCP stdio.
//
// It shares the service's configuration and database. Writes made through a
// tool are published on NATS so the long-running service schedules their
// alarms; without NATS_URL the service only sees them on its next restore.
//
// Usage:
//
//	./mcp-reminders          # Start MCP server (stdio)
//	./mcp-reminders --help   # Show help
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-payment-reminder/internal/app"
	"github.com/KasumiMercury/primind-payment-reminder/internal/config"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/alarm"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/mcpserver"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/notify"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/pubsub"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/repository"
	"github.com/KasumiMercury/primind-payment-reminder/internal/observability/logging"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()

			return
		}
	}

	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)

		return 1
	}

	// stdout carries the protocol
	logging.Setup(os.Stderr, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger: logging.NewGormLogger(cfg.Database.SlowQueryThreshold, cfg.Log.Level),
	})
	if err != nil {
		slog.Error("failed to open database", "error", err)

		return 1
	}

	if err := repository.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)

		return 1
	}

	reminderRepo := repository.NewReminderRepository(db)

	var publisher pubsub.Publisher
	if cfg.Events.NATSURL != "" {
		natsPublisher, err := pubsub.NewNATSPublisherWithStream(ctx, pubsub.NATSPublisherConfig{
			URL:    cfg.Events.NATSURL,
			MaxAge: cfg.Events.MaxAge,
			Origin: "mcp-reminders",
		})
		if err != nil {
			slog.Error("failed to create event publisher", "error", err)

			return 1
		}
		defer func() {
			if err := natsPublisher.Close(); err != nil {
				slog.Warn("failed to close publisher", "error", err)
			}
		}()

		publisher = natsPublisher
	} else {
		slog.Warn("NATS_URL not set, the service will not see tool writes until it restarts")
	}

	clock := alarm.NewClock()
	defer clock.Stop()

	tray := notify.NewTray()
	presenter := app.NewNotificationPresenter(tray, app.WithCurrency(cfg.Notify.Currency))
	scheduler := app.NewNotificationScheduler(clock, tray, presenter)
	dispatcher := app.NewActionDispatcher(scheduler, reminderRepo, notify.LogMessenger{},
		app.WithDispatchTimeout(cfg.Dispatch.Timeout),
		app.WithDispatchPublisher(publisher),
	)

	defer func() {
		if err := dispatcher.Shutdown(context.Background()); err != nil {
			slog.Warn("failed to drain pending actions", "error", err)
		}
	}()

	tools := mcpserver.NewServer(app.NewReminderUseCase(reminderRepo, scheduler, publisher), dispatcher,
		mcpserver.WithActionWait(cfg.Dispatch.ActionWait),
		mcpserver.WithCurrency(cfg.Notify.Currency),
	)

	if err := server.ServeStdio(tools.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)

		return 1
	}

	return 0
}

func printHelp() {
	fmt.Println(`MCP Payment Reminder Server - payment reminders via MCP protocol

USAGE:
    mcp-reminders          Start MCP server (communicates via stdio)
    mcp-reminders --help   Show this help

ENVIRONMENT:
    POSTGRES_DSN     PostgreSQL connection string (required)
    CONFIG_FILE      Optional YAML configuration file
    NATS_URL         NATS server; hands tool writes to the running service
    CURRENCY_CODE    Currency shown next to amounts (default: VND)

TOOLS:
    list_reminders       List reminders (optional status: pending, completed)
    schedule_reminder    Create a reminder and schedule its alarms
    mark_reminder_paid   Mark a reminder as paid`)
}
