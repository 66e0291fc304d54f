package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"frontdesk/internal/checkin"
	"frontdesk/internal/clock"
	"frontdesk/internal/config"
	"frontdesk/internal/db"
	"frontdesk/internal/guest"
	"frontdesk/internal/gymclass"
	"frontdesk/internal/keylock"
	"frontdesk/internal/ledger"
	"frontdesk/internal/logger"
	"frontdesk/internal/member"
	"frontdesk/internal/notify"
	"frontdesk/internal/scheduling"
	"frontdesk/internal/seed"
	"frontdesk/internal/server"
	"frontdesk/internal/trainer"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type repositories struct {
	classes  gymclass.Repository
	members  member.Repository
	guests   guest.Repository
	trainers trainer.Repository
	ledger   ledger.Repository
}

func memoryRepositories() repositories {
	return repositories{
		classes:  gymclass.NewMemoryRepository(),
		members:  member.NewMemoryRepository(),
		guests:   guest.NewMemoryRepository(),
		trainers: trainer.NewMemoryRepository(),
		ledger:   ledger.NewMemoryRepository(),
	}
}

func postgresRepositories(database *sqlx.DB) repositories {
	return repositories{
		classes:  gymclass.NewRepository(database),
		members:  member.NewRepository(database),
		guests:   guest.NewRepository(database),
		trainers: trainer.NewRepository(database),
		ledger:   ledger.NewRepository(database),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init()
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Info("Starting front desk", "storage", cfg.StorageBackend, "timezone", cfg.Location.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clk := clock.NewSystem(cfg.Location)
	locks := keylock.New()

	repos := memoryRepositories()
	health := server.HealthCheck{Storage: cfg.StorageBackend}
	if cfg.StorageBackend == config.StoragePostgres {
		logger.Info("Connecting to database...")
		database, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()

		if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}
		logger.Info("Migrations completed")

		repos = postgresRepositories(database)
		health.Ping = func(ctx context.Context) error { return db.Ping(ctx, database) }
	}

	// A nil *notify.Notifier must not reach the scheduling engine as a
	// non-nil interface.
	var notifier scheduling.Notifier
	if cfg.NotificationsEnabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		queue := notify.NewQueue(rdb, notify.NewSMTPSender(
			cfg.EmailFrom,
			cfg.EmailFromName,
			cfg.SMTPHost,
			cfg.SMTPPort,
			cfg.SMTPUser,
			cfg.SMTPPass,
		))
		defer queue.Close()
		go queue.Start(ctx)
		notifier = notify.NewNotifier(queue, notify.NewRepoDirectory(repos.members, repos.guests), cfg.Location)
		logger.Info("Notifications enabled", "redis", cfg.RedisAddr)
	}

	memberSvc := member.NewService(repos.members, clk, locks, cfg.Location)
	ledgerSvc := ledger.NewService(repos.ledger, repos.members, clk)
	checkinSvc := checkin.NewService(repos.members, repos.guests, ledgerSvc, clk, locks, checkin.Policy{
		ExpiringSoonDays: cfg.ExpiringSoonDays,
		WaiverTag:        cfg.WaiverTag,
		Location:         cfg.Location,
	})
	schedulingSvc := scheduling.NewService(repos.classes, repos.trainers, clk, locks, notifier, scheduling.Options{
		WaitlistDefault:            cfg.WaitlistDefaultEnabled,
		EnforceTrainerAvailability: cfg.EnforceTrainerAvailability,
		Location:                   cfg.Location,
	})

	if cfg.SeedDemoData {
		target := seed.Target{
			Members:    repos.members,
			Guests:     repos.guests,
			Trainers:   repos.trainers,
			Ledger:     ledgerSvc,
			Scheduling: schedulingSvc,
		}
		if err := seed.Load(ctx, target, clk.Now(), cfg.Location); err != nil {
			logger.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	go memberSvc.RunExpirySweeper(ctx, cfg.ExpirySweepInterval)

	srv := server.New(cfg, server.Handlers{
		Scheduling: scheduling.NewHandler(schedulingSvc),
		CheckIn:    checkin.NewHandler(checkinSvc),
		Members:    member.NewHandler(memberSvc),
		Guests:     guest.NewHandler(repos.guests, clk),
		Trainers:   trainer.NewHandler(repos.trainers, clk),
		Ledger:     ledger.NewHandler(ledgerSvc),
	}, health)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
