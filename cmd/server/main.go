package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/batting-order-system/internal/admin"
	"github.com/batting-order-system/internal/auth"
	"github.com/batting-order-system/internal/battingorder"
	"github.com/batting-order-system/internal/config"
	"github.com/batting-order-system/internal/middleware"
	"github.com/batting-order-system/internal/roster"
	"github.com/batting-order-system/internal/router"
	"github.com/batting-order-system/pkg/database"
	"github.com/batting-order-system/pkg/events"
	"github.com/batting-order-system/pkg/jwt"
	"github.com/batting-order-system/pkg/redis"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "batting-order-api")
	middleware.InitMetrics()
	log := middleware.Logger

	if envErr != nil {
		log.Info().Msg(".env file not found, using process environment")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Redis
	redisOpts, err := goredis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid REDIS_URL")
	}
	redisOpts.DialTimeout = cfg.RedisConnectTimeout
	redisClient := goredis.NewClient(redisOpts)
	store := redis.NewStore(redisClient, cfg.RedisMaxRetries)
	defer store.Close()

	// Kafka
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaClient(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("kafka: publishing events")
	}
	defer publisher.Close()

	// MySQL reset archive
	var archiver admin.Archiver
	if cfg.MySQLHost != "" {
		db, err := database.NewMySQLDB(cfg.MySQLHost, cfg.MySQLPort, cfg.MySQLUser, cfg.MySQLPassword, cfg.MySQLDatabase)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()
		archiver = db
		log.Info().Str("host", cfg.MySQLHost).Msg("mysql: reset archive enabled")
	}

	// Session tokens
	var (
		tokens      *jwt.Manager
		authHandler *auth.Handler
	)
	if cfg.JWTSecret != "" {
		tokens = jwt.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTExpirationHours)*time.Hour)
		authHandler = auth.NewHandler(tokens, cfg.IsProduction())
	}

	rosterService := roster.NewService(store, publisher)
	orderService := battingorder.NewService(store, publisher)
	adminService := admin.NewService(store, archiver, publisher)

	engine := router.New(router.Deps{
		Store:         store,
		Tokens:        tokens,
		CORSOrigins:   cfg.CORSOrigins,
		AdminToken:    cfg.AdminToken,
		StaticDir:     cfg.StaticDir,
		BattingOrders: battingorder.NewHandler(orderService),
		Roster:        roster.NewHandler(rosterService),
		Admin:         admin.NewHandler(adminService),
		Auth:          authHandler,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
