package main

import (
	"context"
	"log"
	"time"
	_ "time/tzdata"

	"github.com/Eursukkul/booth-festa/config"
	"github.com/Eursukkul/booth-festa/internal/consumer"
	"github.com/Eursukkul/booth-festa/internal/handler"
	"github.com/Eursukkul/booth-festa/internal/middleware"
	"github.com/Eursukkul/booth-festa/internal/repository"
	"github.com/Eursukkul/booth-festa/internal/service"
	"github.com/Eursukkul/booth-festa/internal/snapshotfile"
	"github.com/Eursukkul/booth-festa/pkg/cache"
	"github.com/Eursukkul/booth-festa/pkg/database"
	"github.com/Eursukkul/booth-festa/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg := config.Load()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("invalid timezone: %v", err)
	}

	db, err := database.Open(cfg.DSN(), database.Pool{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	repo := repository.NewSnapshotRepository(db)

	var snapshots service.SnapshotCache
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		snapshots = cache.NewSnapshotCache(rdb, cfg.CacheTTL)
	}

	svc := service.NewApplyService(repo, snapshots)

	if cfg.SeedSnapshot != "" {
		seed(svc, cfg.SeedSnapshot)
	}

	// RabbitMQ consumer: sync configurations saved in the admin service
	if cfg.RabbitURL != "" {
		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL, cfg.ConsumerQueue, rabbitmq.RoutingKeyConfigUpdated)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer mqConsumer.Close()

		msgs, err := mqConsumer.Consume()
		if err != nil {
			log.Fatalf("failed to start consuming: %v", err)
		}
		consumer.NewConfigConsumer(svc).Start(msgs)
	} else {
		log.Println("[Apply] RABBITMQ_URL is not set; serving stored snapshots only")
	}

	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())
	e.Use(echoMw.CORSWithConfig(echoMw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "apply-service"})
	})

	api := e.Group("/api/v1")
	handler.NewApplyHandler(svc, loc).RegisterRoutes(api)

	log.Printf("Apply Service starting on :%s", cfg.ApplyPort)
	e.Logger.Fatal(e.Start(":" + cfg.ApplyPort))
}

func seed(svc service.ApplyService, path string) {
	snap, err := snapshotfile.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to read seed snapshot: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := svc.Seed(ctx, snap)
	if err != nil {
		log.Fatalf("failed to seed snapshot: %v", err)
	}
	if created {
		log.Printf("[Apply] seeded version %s from %s", snap.Version, path)
	}
}
