package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/app"
	"github.com/Freeeeeet/tutor_market/internal/config"
	"github.com/Freeeeeet/tutor_market/internal/controller"
	"github.com/Freeeeeet/tutor_market/internal/notify"
	"github.com/Freeeeeet/tutor_market/internal/policy"
	"github.com/Freeeeeet/tutor_market/internal/repository"
	"github.com/Freeeeeet/tutor_market/internal/service"
	"github.com/Freeeeeet/tutor_market/migrations"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting tutor market",
		zap.String("environment", cfg.Environment),
		zap.Int("max_daily_booking_minutes", cfg.MaxDailyBookingMinutes),
		zap.Int("cancel_lock_minutes", cfg.CancelLockMinutes),
		zap.String("timezone", cfg.Location.String()))

	// Подключение к БД
	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	logger.Info("✅ Connected to database")

	// Миграции
	migrator, err := app.NewMigrator(pool, migrations.FS, logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if err := migrator.Run(ctx); err != nil {
		return err
	}
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		return nil
	}

	// Репозитории
	repos := service.NewRepositories(pool, logger)
	users := repository.NewUserRepository(pool)
	messages := repository.NewMessageRepository(pool)

	// Уведомления о бронировании
	notifier := notify.NewMulti(logger, notify.NewMessageNotifier(messages))

	if cfg.TelegramToken != "" {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			logger.Warn("Telegram notifications disabled", zap.Error(err))
		} else {
			notifier.Add(notify.NewTelegramNotifier(b, users, logger))
			logger.Info("✅ Telegram notifications enabled")
		}
	}

	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL, nats.Name("tutor-market"))
		if err != nil {
			logger.Warn("NATS events disabled", zap.String("url", cfg.NATSURL), zap.Error(err))
		} else {
			defer nc.Drain()
			notifier.Add(notify.NewEventNotifier(nc))
			logger.Info("✅ Connected to NATS", zap.String("url", cfg.NATSURL))
		}
	}

	// Сервис занятий
	sessions := service.NewSessionService(
		service.NewTransactor(pool, logger),
		repos,
		notifier,
		service.SessionConfig{
			Limits: policy.Limits{
				MaxDailyBookingMinutes: cfg.MaxDailyBookingMinutes,
				CancelLockMinutes:      cfg.CancelLockMinutes,
			},
			Location: cfg.Location,
		},
		logger,
	)

	// Фоновая сверка рейтингов
	scheduler := app.NewScheduler(sessions, cfg.ReconcileInterval, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// HTTP
	server := controller.NewServer(sessions, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(fmt.Sprintf(":%d", cfg.HTTPPort))
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
