// Command homi-proxy is a caching browse proxy in front of the Homi API.
// Equivalent filter queries are normalized so they share one Redis cache
// entry.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/homi-client/internal/config"
	"github.com/Sternrassler/homi-client/pkg/client"
	"github.com/Sternrassler/homi-client/pkg/logging"
)

func main() {
	envHelp := flag.Bool("env-help", false, "print the HOMI_* environment variables and exit")
	flag.Parse()
	if *envHelp {
		if err := config.Usage(os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("Failed to print usage")
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logger := logging.Setup(logging.Config{
		Level:   logging.LogLevel(cfg.LogLevel),
		Pretty:  cfg.LogPretty,
		Service: "homi-proxy",
		Output:  os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
		}
		logger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")
	} else {
		logger.Warn().Msg("HOMI_REDIS_ADDR not set, running without cache")
	}

	clientCfg := client.DefaultConfig(cfg.APIURL, redisClient)
	clientCfg.UserAgent = "homi-proxy/0.1.0"
	clientCfg.Timeout = cfg.HTTPTimeout
	clientCfg.CacheTTL = cfg.CacheTTL
	clientCfg.MaxRetries = cfg.MaxRetries

	apiClient, err := client.New(clientCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create API client")
	}
	defer apiClient.Close()
	apiClient.SetLogger(logging.NewLogger("homi-client"))

	srv := &server{
		client:   apiClient,
		redis:    redisClient,
		pageSize: cfg.PageSize,
		timeout:  cfg.HTTPTimeout,
		logger:   logging.NewLogger("homi-proxy"),
	}

	httpServer := &http.Server{
		Addr:              cfg.ProxyAddr,
		Handler:           srv.routes(cfg.ProxyRate),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	logger.Info().
		Str("addr", cfg.ProxyAddr).
		Str("upstream", cfg.APIURL).
		Int("rate_per_minute", cfg.ProxyRate).
		Msg("Starting browse proxy")

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Server failed")
	}
	logger.Info().Msg("Proxy stopped")
}
