package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/database"
	"github.com/example/storefront/internal/handlers"
	"github.com/example/storefront/internal/routes"
	"github.com/example/storefront/internal/services"
)

func main() {
	cfg := config.MustLoad()
	db := database.Connect(cfg.DatabaseURL, cfg.DBLogLevel)

	if err := database.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to seed admin user: %v", err)
	}

	var events services.OrderEventPublisher = services.NopOrderPublisher{}
	if cfg.KafkaEnabled() {
		publisher, err := services.NewKafkaOrderPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		if err != nil {
			log.Fatalf("failed to start order event publisher: %v", err)
		}
		events = publisher
	} else {
		log.Println("KAFKA_BROKERS not set, order events are disabled")
	}

	app := fiber.New(fiber.Config{
		AppName:      "Storefront Backend",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, cfg, events)

	go func() {
		log.Printf("Starting server on :%s", cfg.AppPort)
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			log.Fatalf("fiber.Listen error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	if err := events.Close(); err != nil {
		log.Printf("order event publisher close error: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("Server stopped")
}
