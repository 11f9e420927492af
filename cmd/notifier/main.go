package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coparent_notification_service/internal/app"
	"coparent_notification_service/internal/domain/event"
	domainPush "coparent_notification_service/internal/domain/push"
	"coparent_notification_service/internal/infra/changefeed"
	"coparent_notification_service/internal/infra/config"
	idb "coparent_notification_service/internal/infra/database"
	"coparent_notification_service/internal/infra/logger"
	infraPush "coparent_notification_service/internal/infra/push"
	"coparent_notification_service/internal/infra/scheduler"
	"coparent_notification_service/internal/transport/httpserver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Component("main")
	log.Infof("configuration loaded (environment: %s, push driver: %s)", cfg.Environment, cfg.PushDriver)

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("database connection established")

	familyRepo := idb.NewPostgresFamilyRepository(db)
	userRepo := idb.NewPostgresUserRepository(db)
	reminderRepo := idb.NewPostgresReminderRepository(db)

	var pushClient domainPush.Client
	if cfg.PushDriver == config.PushDriverFCM {
		pushClient, err = infraPush.NewFCMClient(context.Background(), cfg.FCMCredentialsFile)
		if err != nil {
			log.Fatalf("could not initialize FCM client: %v", err)
		}
		log.Info("FCM push client initialized")
	} else {
		pushClient = infraPush.NewLogClient(logger.Component("push"))
		log.Info("log push driver initialized, notifications will not be sent")
	}

	audienceResolver := app.NewAudienceResolver(familyRepo, logger.Component("audience"))
	pushService := app.NewPushService(userRepo, pushClient, logger.Component("push_gateway"))
	reminderService := app.NewReminderService(reminderRepo, pushService, logger.Component("reminders"))
	reactor := app.NewReactor(audienceResolver, pushService, reminderService, logger.Component("reactor"))

	feed := changefeed.NewListener(cfg.DatabaseURL, cfg.ChangefeedChannel, func(ch event.Change) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		reactor.HandleChange(ctx, ch)
	}, logger.Component("changefeed"))
	if err := feed.Start(); err != nil {
		log.Fatalf("could not start changefeed listener: %v", err)
	}

	dispatchScheduler := scheduler.NewDispatchScheduler(
		reminderService,
		logger.Component("scheduler"),
		cfg.CronSpecDispatch,
		cfg.DispatchBatchLimit,
	)
	if err := dispatchScheduler.Start(); err != nil {
		log.Fatalf("could not start dispatch scheduler: %v", err)
	}

	router := httpserver.NewRouter(db, reminderService.DispatchDue, cfg.DispatchBatchLimit, logger.Component("http"))
	srv := httpserver.New(cfg.HTTPListenAddr, router)
	go func() {
		log.Infof("ops HTTP server listening on %s", cfg.HTTPListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	log.Info("application setup complete")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down application...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnf("HTTP server shutdown: %v", err)
	}
	dispatchScheduler.Stop()
	feed.Stop()
	log.Info("application shut down gracefully")
}
