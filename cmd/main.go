package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-payment-reminder/internal/app"
	"github.com/KasumiMercury/primind-payment-reminder/internal/config"
	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/alarm"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/handler"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/mcpserver"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/notify"
	"github.com/KasumiMercury/primind-payment-reminder/internal/infra/repository"
	"github.com/KasumiMercury/primind-payment-reminder/internal/observability"
	"github.com/KasumiMercury/primind-payment-reminder/internal/observability/logging"
	"github.com/KasumiMercury/primind-payment-reminder/internal/observability/middleware"
)

// Version is set at build time.
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)

		return 1
	}

	logging.Setup(os.Stdout, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs, err := observability.Init(ctx, observability.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: Version,
		Environment:    cfg.Telemetry.Environment,
		SamplingRate:   cfg.Telemetry.SamplingRate,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		MetricInterval: cfg.Telemetry.MetricInterval,
	})
	if err != nil {
		slog.Error("failed to initialize observability", "error", err)

		return 1
	}

	db, err := initDatabase(cfg.Database, cfg.Log.Level)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)

		return 1
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("failed to get underlying sql.DB", "error", err)

		return 1
	}

	publisher, err := initPublisher(ctx, cfg)
	if err != nil {
		slog.Error("failed to create event publisher", "error", err)

		return 1
	}

	backend, err := initNotifyBackend(cfg.Notify)
	if err != nil {
		slog.Error("failed to initialize notification backend", "error", err)

		return 1
	}

	reminderRepo := repository.NewReminderRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	clock := alarm.NewClock()
	inbox := notify.NewInbox(cfg.Notify.InboxSize)
	messenger := notify.Fanout(append([]notify.Messenger{notify.LogMessenger{}, inbox}, backend.messages...)...)

	presenter := app.NewNotificationPresenter(backend.facility,
		app.WithCurrency(cfg.Notify.Currency),
		app.WithPresenterPublisher(publisher),
		app.WithPresenterMetrics(obs.ReminderMetrics),
	)
	scheduler := app.NewNotificationScheduler(clock, backend.facility, presenter,
		app.WithSchedulerMetrics(obs.ReminderMetrics),
	)
	dispatcher := app.NewActionDispatcher(scheduler, reminderRepo, messenger,
		app.WithDispatchTimeout(cfg.Dispatch.Timeout),
		app.WithDispatchPublisher(publisher),
		app.WithDispatchMetrics(obs.ReminderMetrics),
	)

	if _, err := scheduler.Restore(ctx, reminderRepo, cfg.Scheduler.RestoreLookback); err != nil {
		slog.Error("failed to restore reminder alarms", "error", err)

		return 1
	}

	subscriber, err := initSubscriber(cfg, app.NewReminderSync(reminderRepo, scheduler))
	if err != nil {
		slog.Error("failed to create event subscriber", "error", err)

		return 1
	}

	reminderUseCase := app.NewReminderUseCase(reminderRepo, scheduler, publisher)
	categoryService := app.NewCategoryService(categoryRepo)

	tools := mcpserver.NewServer(reminderUseCase, dispatcher,
		mcpserver.WithActionWait(cfg.Dispatch.ActionWait),
		mcpserver.WithCurrency(cfg.Notify.Currency),
	)

	router := setupRouter(obs,
		tools.HTTPHandler(),
		handler.NewReminderHandler(reminderUseCase, dispatcher, cfg.Dispatch.ActionWait),
		handler.NewCategoryHandler(categoryService),
		handler.NewNotificationHandler(backend.visible, inbox),
	)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "address", cfg.Server.Address())

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	if backend.dbus != nil {
		g.Go(func() error {
			return backend.dbus.Listen(gctx, func(ctx context.Context, event domain.ActionEvent) {
				dispatcher.Dispatch(ctx, event)
			})
		})
	}

	if subscriber != nil {
		g.Go(func() error {
			return subscriber.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		slog.Info("shutting down server")

		if subscriber != nil {
			if err := subscriber.Close(); err != nil {
				slog.Warn("failed to close subscriber", "error", err)
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		return shutdown(shutdownCtx, srv, dispatcher, clock)
	})

	exitCode := 0
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server exited with error", "error", err)

		exitCode = 1
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			slog.Warn("failed to close publisher", "error", err)
		}
	}

	if backend.dbus != nil {
		if err := backend.dbus.Close(); err != nil {
			slog.Warn("failed to close session bus", "error", err)
		}
	}

	if err := sqlDB.Close(); err != nil {
		slog.Error("failed to close database connection", "error", err)
	}

	if err := obs.Shutdown(closeCtx); err != nil {
		slog.Warn("failed to flush telemetry", "error", err)
	}

	slog.Info("server exited properly")

	return exitCode
}

// shutdown stops taking requests first, then lets in-flight actions finish
// before the alarm clock goes away.
func shutdown(ctx context.Context, srv *http.Server, dispatcher *app.ActionDispatcher, clock *alarm.Clock) error {
	defer clock.Stop()

	return errors.Join(
		srv.Shutdown(ctx),
		dispatcher.Shutdown(ctx),
	)
}

func initDatabase(cfg config.DatabaseConfig, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logging.NewGormLogger(cfg.SlowQueryThreshold, logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := repository.Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

type routeRegistrar interface {
	RegisterRoutes(router *gin.RouterGroup)
}

func setupRouter(obs *observability.Resources, mcpHandler http.Handler, handlers ...routeRegistrar) *gin.Engine {
	router := gin.New()

	router.Use(middleware.PanicRecoveryGin())
	router.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths: []string{"/ping"},
		ModuleByPrefix: map[string]logging.Module{
			"/api/v1/reminders":     logging.ModuleReminder,
			"/api/v1/notifications": logging.ModuleScheduler,
			"/api/v1/messages":      logging.ModuleDispatch,
			"/api/v1/categories":    logging.ModuleCategory,
			"/mcp":                  logging.ModuleMCP,
		},
		TracerName:  "primind-payment-reminder/http",
		HTTPMetrics: obs.HTTPMetrics,
	}))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.Any("/mcp", gin.WrapH(mcpHandler))

	v1 := router.Group("/api/v1")
	for _, h := range handlers {
		h.RegisterRoutes(v1)
	}

	return router
}
