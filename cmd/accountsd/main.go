package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	accounts "github.com/primesoft-in/go-accounts"
)

func main() {
	cfg := accounts.LoadConfig()

	if cfg.SigningKey == "" {
		log.Fatal("JWT_SIGNING_KEY is required")
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	ctx := context.Background()
	if err := accounts.CreateSchema(ctx, db); err != nil {
		log.Fatalf("create schema: %v", err)
	}

	repo := accounts.NewRepositoryManager(db)
	repo.MustValidate()

	notifier := buildNotifier(cfg)

	commands := accounts.NewCommands(repo, notifier, cfg)
	auther := accounts.NewAuthenticator(repo, cfg)

	app := fiber.New(fiber.Config{
		AppName: "accountsd",
	})

	controller := accounts.NewController(repo, commands, auther, cfg)
	controller.RegisterRoutes(app)

	go func() {
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("shutdown: %v", err)
	}

	if closer, ok := notifier.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Printf("notifier close: %v", err)
		}
	}
}

func buildNotifier(cfg accounts.Config) accounts.Notifier {
	if cfg.KafkaBroker != "" && cfg.KafkaTopic != "" {
		return accounts.NewKafkaNotifier(cfg.KafkaBroker, cfg.KafkaTopic, cfg.KafkaUsername, cfg.KafkaPassword)
	}

	if cfg.NotificationURL != "" {
		return accounts.NewWebhookNotifier(cfg.NotificationURL, cfg.NotificationAuthHeader)
	}

	log.Println("no notifier configured, notifications disabled")
	return accounts.NoopNotifier{}
}
