// File: /main.go
package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"bragforgood-api/ai"
	"bragforgood-api/config"
	"bragforgood-api/database"
	"bragforgood-api/jobs"
	"bragforgood-api/middleware"
	"bragforgood-api/ratelimit"
	"bragforgood-api/routes"
	"bragforgood-api/services"
	"bragforgood-api/storage"
	"bragforgood-api/utils"
)

func setupLogging(cfg *config.Config) {
	log.SetOutput(os.Stdout)
	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.AppLogLevel)
	if err != nil {
		log.WithError(err).Warn("Unknown APP_LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	setupLogging(cfg)

	loc, err := cfg.Location()
	if err != nil {
		log.WithError(err).Fatal("Invalid APP_TIMEZONE")
	}

	// Initialize database
	db, err := database.Initialize(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	if cfg.SeedExamples {
		if err := database.SeedExamples(db); err != nil {
			log.WithError(err).Warn("Failed to seed example deeds")
		}
	}

	scheduler, err := jobs.NewScheduler(cfg.RateLimitSweep, loc)
	if err != nil {
		log.WithError(err).Fatal("Invalid RATE_LIMIT_SWEEP")
	}

	// Action limiter
	var limiter ratelimit.Limiter
	switch cfg.RateLimitBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to redis")
		}
		limiter = ratelimit.NewRedisLimiter(client, "bragforgood:rl:")
	default:
		memory := ratelimit.NewMemoryLimiter()
		scheduler.Add("action-limiter", memory.Sweep)
		limiter = memory
	}

	if cfg.LLMAPIKey == "" {
		log.Warn("LLM_API_KEY is empty, moderation will reject every submission")
	}
	llm := ai.NewClient(ai.Options{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	})

	infra := routes.Infra{
		Limiter:    limiter,
		Moderator:  ai.FailClosed(llm),
		Translator: llm,
		Email:      services.NewEmailService(cfg, loc),
		Sessions:   sessions.NewCookieStore([]byte(cfg.SessionSecret)),
		Location:   loc,
	}

	if cfg.StorageEnabled() {
		infra.Photos = storage.NewPhotoStore(storage.Options{
			Endpoint:        cfg.StorageEndpoint,
			Region:          cfg.StorageRegion,
			Bucket:          cfg.StorageBucket,
			AccessKeyID:     cfg.StorageAccessKey,
			SecretAccessKey: cfg.StorageSecretKey,
			PublicURL:       cfg.StoragePublicURL,
			PresignTTL:      cfg.StoragePresignTTL,
			MaxPhotoBytes:   cfg.StorageMaxPhotoSize,
		})
	} else {
		log.Warn("Photo storage is not configured, presigned uploads are disabled")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	utils.RegisterValidators()

	ipLimiter := middleware.NewRateLimiter(cfg.APIRequestsPerMinute, cfg.APIBurst)
	scheduler.Add("ip-limiter", func() int { return ipLimiter.CleanupLimiters(10 * time.Minute) })

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.CORSOrigin))
	router.Use(middleware.RateLimit(ipLimiter))
	router.Use(middleware.ValidateJSON())
	router.Use(middleware.ErrorHandler())

	routes.SetupRoutes(router, db, cfg, infra)

	if err := scheduler.Start(); err != nil {
		log.WithError(err).Fatal("Failed to start scheduler")
	}
	defer scheduler.Stop()

	log.WithFields(log.Fields{"port": cfg.Port, "env": cfg.AppEnv}).Info("Starting bragforgood API server")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}
