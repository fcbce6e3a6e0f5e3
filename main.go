package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"leasedesk/internal/handlers"
	"leasedesk/internal/middleware"
	"leasedesk/internal/models"
	"leasedesk/internal/repositories"
	"leasedesk/internal/services"
	"leasedesk/pkg/historycache"
	"leasedesk/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DSN", "host=localhost user=leasedesk password=leasedesk dbname=leasedesk port=5432 sslmode=disable")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	jwtSecret := viper.GetString("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// --- Database ---
	db, err := gorm.Open(postgres.Open(viper.GetString("DATABASE_DSN")), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.AuditSnapshot{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if url := viper.GetString("RABBITMQ_URL"); url != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: url})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	} else {
		log.Println("RABBITMQ_URL not set, event publishing disabled")
	}

	// --- Redis history cache (optional) ---
	var cache *historycache.Cache
	if addr := viper.GetString("REDIS_ADDR"); addr != "" {
		cache, err = historycache.New(historycache.Config{
			Addr:     addr,
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		})
		if err != nil {
			log.Fatalf("Failed to initialize Redis cache: %v", err)
		}
		defer cache.Close()
	} else {
		log.Println("REDIS_ADDR not set, history caching disabled")
	}

	// Nil-able infra is passed through typed interface variables so a
	// disabled dependency stays a nil interface in the services.
	var publisher services.EventPublisher
	if mqClient != nil {
		publisher = mqClient
	}
	var trailCache services.TrailCache
	if cache != nil {
		trailCache = cache
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	clientRepo := repositories.NewGORMClientRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	auditRepo := repositories.NewGORMAuditRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, jwtSecret)
	clientService := services.NewClientService(clientRepo)
	productService := services.NewProductService(productRepo, publisher, trailCache)
	orderService := services.NewOrderService(orderRepo, productRepo, publisher, trailCache)
	historyService := services.NewHistoryService(auditRepo, trailCache)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	clientHandler := handlers.NewClientHandler(clientService)
	productHandler := handlers.NewProductHandler(productService, historyService)
	orderHandler := handlers.NewOrderHandler(orderService, clientService)

	// --- Fiber App ---
	app := fiber.New()
	app.Use(logger.New())

	apiV1 := app.Group("/api/v1")

	// Authentication routes (public)
	authHandler.RegisterRoutes(apiV1)

	// Business routes require a valid operator token; the token's username
	// becomes the createdBy/updatedBy actor on every write.
	protected := apiV1.Group("", middleware.AuthRequired(authService))
	clientHandler.RegisterRoutes(protected)
	productHandler.RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Event consumer ---
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for leasedesk events...")
			err := mqClient.ConsumeEvents(func(msg amqp.Delivery) error {
				log.Printf("Received %s event (tag %d): %s", msg.Type, msg.DeliveryTag, string(msg.Body))
				return nil
			})
			if err != nil {
				log.Printf("RabbitMQ consumer stopped: %v", err)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
