package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/sfgs/mail-dispatch/internal/config"
	"github.com/sfgs/mail-dispatch/internal/content"
	"github.com/sfgs/mail-dispatch/internal/handler"
	"github.com/sfgs/mail-dispatch/internal/infra/postgresql"
	"github.com/sfgs/mail-dispatch/internal/infra/postgresql/migrations"
	infraredis "github.com/sfgs/mail-dispatch/internal/infra/redis"
	"github.com/sfgs/mail-dispatch/internal/mailer"
	"github.com/sfgs/mail-dispatch/internal/observability"
	"github.com/sfgs/mail-dispatch/internal/repository"
	"github.com/sfgs/mail-dispatch/internal/service"
	"github.com/sfgs/mail-dispatch/internal/storage"
	"github.com/sfgs/mail-dispatch/internal/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	if err := os.MkdirAll(cfg.UploadDir, 0o750); err != nil {
		logger.Fatal("upload directory init failed", zap.Error(err))
	}

	messageRepo := repository.NewGormMessageRepo(db)
	studentRepo := repository.NewGormStudentRepo(db)
	fileRepo := repository.NewGormUploadedFileRepo(db)
	settingsRepo := repository.NewGormSettingsRepo(db)

	tickGuard, err := infraredis.NewRedisTickGuard(rdb)
	if err != nil {
		logger.Fatal("tick guard initialization failed", zap.Error(err))
	}

	brevo, err := mailer.NewBrevoMailer(cfg.BrevoAPIURL, cfg.BrevoAPIKey, cfg.SenderName, cfg.SenderEmail)
	if err != nil {
		logger.Fatal("mailer initialization failed", zap.Error(err))
	}

	renderer := content.NewRenderer(cfg.SchoolName)

	resolver, err := storage.NewLocalResolver(fileRepo)
	if err != nil {
		logger.Fatal("attachment resolver initialization failed", zap.Error(err))
	}

	enqueueService, err := service.NewEnqueueService(messageRepo, logger)
	if err != nil {
		logger.Fatal("enqueue service initialization failed", zap.Error(err))
	}

	dispatcher, err := service.NewDispatcher(
		messageRepo,
		studentRepo,
		settingsRepo,
		tickGuard,
		brevo,
		renderer,
		resolver,
		cfg.SendConcurrency,
		logger,
	)
	if err != nil {
		logger.Fatal("dispatcher initialization failed", zap.Error(err))
	}

	recoveryService, err := service.NewRecoveryService(messageRepo, logger)
	if err != nil {
		logger.Fatal("recovery service initialization failed", zap.Error(err))
	}

	uploadService, err := service.NewUploadService(fileRepo, studentRepo, enqueueService, logger)
	if err != nil {
		logger.Fatal("upload service initialization failed", zap.Error(err))
	}

	birthdayService, err := service.NewBirthdayService(studentRepo, enqueueService, logger)
	if err != nil {
		logger.Fatal("birthday service initialization failed", zap.Error(err))
	}

	sweeper, err := service.NewStaleSweeper(messageRepo, 0, 0, logger)
	if err != nil {
		logger.Fatal("stale sweeper initialization failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher.SetMetrics(metrics)
	enqueueService.SetMetrics(metrics)

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(transport.CorrelationMiddleware())
	app.Use(metrics.HTTPMiddleware())
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	if err := handler.RegisterMessageRoutes(app, messageRepo, recoveryService); err != nil {
		logger.Fatal("message routes registration failed", zap.Error(err))
	}
	if err := handler.RegisterDispatchRoutes(app, dispatcher, birthdayService); err != nil {
		logger.Fatal("dispatch routes registration failed", zap.Error(err))
	}
	if err := handler.RegisterSettingsRoutes(app, settingsRepo); err != nil {
		logger.Fatal("settings routes registration failed", zap.Error(err))
	}
	if err := handler.RegisterUploadRoutes(app, uploadService, cfg.UploadDir); err != nil {
		logger.Fatal("upload routes registration failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("mail-dispatch api started", zap.Int("port", cfg.APIPort))
		return app.Listen(fmt.Sprintf(":%d", cfg.APIPort))
	})

	g.Go(func() error {
		return dispatcher.Start(gCtx)
	})

	g.Go(func() error {
		return sweeper.Start(gCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server terminated", zap.Error(err))
	}
}
