package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendorapi/internal/config"
	"vendorapi/internal/database"
	"vendorapi/internal/logger"
	"vendorapi/internal/models"
	"vendorapi/internal/repositories"
	"vendorapi/internal/server"
	"vendorapi/internal/services"
	"vendorapi/pkg/rabbitmq"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		// The logger is configured from cfg, so fall back to a plain one here.
		l := logger.New("info", true)
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.LogPretty)
	log.Info().Str("env", cfg.Env).Str("driver", cfg.DatabaseDriver).Msg("starting vendorapi")

	// --- Repositories ---
	var (
		db          *gorm.DB
		productRepo repositories.ProductRepository
		userRepo    repositories.UserRepository
	)
	if cfg.DatabaseDriver == config.DriverMemory {
		productRepo = repositories.NewMemoryProductRepository()
		userRepo = repositories.NewMemoryUserRepository()
		log.Warn().Msg("using in-memory store, data is lost on restart")
	} else {
		db, err = database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize database")
		}
		productRepo = repositories.NewGORMProductRepository(db)
		userRepo = repositories.NewGORMUserRepository(db)
	}

	// --- Redis read-through cache (optional) ---
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, product cache disabled")
			if err := redisClient.Close(); err != nil {
				log.Error().Err(err).Msg("error closing redis client")
			}
			redisClient = nil
		} else {
			productRepo = repositories.NewCachedProductRepository(productRepo, redisClient, cfg.CacheTTL, log)
			log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("product cache enabled")
		}
	}

	// --- RabbitMQ product events (optional) ---
	var (
		mqClient  *rabbitmq.Client
		publisher services.EventPublisher
	)
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ unavailable, product events disabled")
		} else {
			publisher = mqClient
			if err := mqClient.ConsumeProductEvents(auditProductEvent(log)); err != nil {
				log.Error().Err(err).Msg("failed to start product event consumer")
			}
		}
	}

	// --- Services ---
	productService := services.NewProductService(productRepo, publisher, log)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)

	// --- HTTP server ---
	app := server.NewApp(server.Options{
		Logger:         log,
		ProductService: productService,
		AuthService:    authService,
		DB:             db,
		EventsEnabled:  publisher != nil,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.AppPort).Msg("HTTP server listening")
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("error during fiber shutdown")
	}
	if mqClient != nil {
		if err := mqClient.Close(); err != nil {
			log.Error().Err(err).Msg("error closing RabbitMQ client")
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis client")
		}
	}
	if db != nil {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("error closing database")
		}
	}
	log.Info().Msg("server gracefully stopped")
}

// auditProductEvent writes every consumed product event to the log.
func auditProductEvent(log zerolog.Logger) func(models.ProductEvent) error {
	auditLog := log.With().Str("component", "product_audit").Logger()
	return func(event models.ProductEvent) error {
		raw, err := json.Marshal(event)
		if err != nil {
			return err
		}
		auditLog.Info().
			Str("event", event.Type).
			Str("product_id", event.ProductID).
			Str("vendor_id", event.VendorID).
			Time("occurred_at", event.OccurredAt).
			RawJSON("payload", raw).
			Msg("product event received")
		return nil
	}
}
