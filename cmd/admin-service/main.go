package main

import (
	"log"
	"os"

	"github.com/Eursukkul/booth-festa/config"
	"github.com/Eursukkul/booth-festa/internal/contentstore"
	"github.com/Eursukkul/booth-festa/internal/deploy"
	"github.com/Eursukkul/booth-festa/internal/handler"
	"github.com/Eursukkul/booth-festa/internal/middleware"
	"github.com/Eursukkul/booth-festa/internal/service"
	"github.com/Eursukkul/booth-festa/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg := config.Load()

	if cfg.AdminPassword == "" {
		log.Println("[Admin] ADMIN_PASSWORD is not set; every admin request will be rejected")
	}

	store := newStore(cfg)

	var trigger deploy.Trigger = deploy.Noop{}
	if cfg.DeployHookURL != "" {
		trigger = deploy.NewWebhook(cfg.DeployHookURL, cfg.DeployHookToken)
	}

	// RabbitMQ publisher: announce saved configurations to the apply service
	var publisher service.Publisher
	if cfg.RabbitURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer p.Close()
		publisher = p
	} else {
		log.Println("[Admin] RABBITMQ_URL is not set; saves will not be announced")
	}

	svc := service.NewAdminService(store, cfg.ConfigPath, trigger, publisher)

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
	e.Use(echoMw.CORSWithConfig(echoMw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  []string{echo.HeaderContentType, echo.HeaderAuthorization, "If-Match"},
		ExposeHeaders: []string{"ETag"},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "admin-service"})
	})

	admin := e.Group("/api/v1/admin", middleware.AdminAuth(cfg.AdminPassword))
	handler.NewAdminHandler(svc).RegisterRoutes(admin)

	log.Printf("Admin Service starting on :%s", cfg.AdminPort)
	e.Logger.Fatal(e.Start(":" + cfg.AdminPort))
}

func newStore(cfg *config.Config) contentstore.Store {
	switch cfg.ContentStore {
	case "memory":
		store := contentstore.NewMemoryStore()
		if cfg.MemorySeedLiteral != "" {
			text, err := os.ReadFile(cfg.MemorySeedLiteral)
			if err != nil {
				log.Fatalf("failed to read memory seed: %v", err)
			}
			store.Put(cfg.ConfigPath, string(text))
			log.Printf("[Admin] memory store seeded from %s", cfg.MemorySeedLiteral)
		}
		return store
	case "github":
		store, err := contentstore.NewGitHubStore(contentstore.GitHubConfig{
			BaseURL:       cfg.GitHubAPIURL,
			Repo:          cfg.GitHubRepo,
			Branch:        cfg.GitHubBranch,
			Token:         cfg.GitHubToken,
			CommitMessage: cfg.CommitMessage,
		})
		if err != nil {
			log.Fatalf("failed to configure GitHub store: %v", err)
		}
		return store
	default:
		log.Fatalf("unknown CONTENT_STORE %q (want github or memory)", cfg.ContentStore)
		return nil
	}
}
