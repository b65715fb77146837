package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/levelup-gamer/storefront/internal/auth"
	"github.com/levelup-gamer/storefront/internal/cart"
	"github.com/levelup-gamer/storefront/internal/catalog"
	"github.com/levelup-gamer/storefront/internal/checkout"
	"github.com/levelup-gamer/storefront/internal/httpapi"
	"github.com/levelup-gamer/storefront/internal/sales"
	"github.com/levelup-gamer/storefront/internal/storage"
)

type Config struct {
	HTTPPort        string
	BackendURL      string
	RedisAddr       string
	RedisPassword   string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "3000"),
		BackendURL:      getEnv("BACKEND_URL", "http://localhost:8080"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if errEnv := godotenv.Load(); errEnv != nil && !os.IsNotExist(errEnv) {
		logger.Warn("could not load .env file", zap.Error(errEnv))
	}
	cfg := loadConfig()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv := storage.NewRedisKV(redisClient)
	if errPing := kv.Ping(ctx); errPing != nil {
		logger.Fatal("redis connection failed", zap.Error(errPing))
	}
	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	carts := cart.NewService(kv, cart.WithPublisher(kv))
	keeper := auth.NewKeeper(kv)
	salesClient := sales.NewClient(cfg.BackendURL)
	coordinator := checkout.NewCoordinator(carts, salesClient, keeper)
	catalogSvc := catalog.NewService(
		catalog.NewClient(cfg.BackendURL),
		catalog.NewRedisCache(redisClient),
		logger,
	)

	// Relay cart changes announced by other storefront instances to this
	// instance's subscribers.
	go func() {
		errListen := kv.ListenUpdates(ctx, carts.NotifyLocal)
		if errListen != nil && !errors.Is(errListen, context.Canceled) {
			logger.Warn("cart update listener stopped", zap.Error(errListen))
		}
	}()

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Carts:          carts,
		Coordinator:    coordinator,
		Catalog:        catalogSvc,
		Sales:          salesClient,
		Auth:           auth.NewLoginClient(cfg.BackendURL),
		Keeper:         keeper,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
	})

	// No WriteTimeout: the cart event stream stays open indefinitely.
	srv := &http.Server{
		Addr:        ":" + cfg.HTTPPort,
		Handler:     otelhttp.NewHandler(router, "storefront"),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("storefront listening", zap.String("port", cfg.HTTPPort))
		if errServe := srv.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(errServe))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
		logger.Error("graceful shutdown failed", zap.Error(errShutdown))
	}
}
