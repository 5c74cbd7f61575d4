// Command quotaguardd runs the rate-limit decision service: the HTTP
// charge endpoint, the decision engine, and the background window-trim
// worker, sharing one store connection and one shutdown broadcast.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/samir-okafor/quotaguard/pkg/cleanup"
	"github.com/samir-okafor/quotaguard/pkg/config"
	"github.com/samir-okafor/quotaguard/pkg/events"
	"github.com/samir-okafor/quotaguard/pkg/events/adapters/memory"
	"github.com/samir-okafor/quotaguard/pkg/logger"
	"github.com/samir-okafor/quotaguard/pkg/ratelimit"
	"github.com/samir-okafor/quotaguard/pkg/ratelimit/catalogfile"
	"github.com/samir-okafor/quotaguard/pkg/ratelimit/store"
	redisstore "github.com/samir-okafor/quotaguard/pkg/ratelimit/store/adapters/redis"
	"github.com/samir-okafor/quotaguard/pkg/resilience"
	"github.com/samir-okafor/quotaguard/pkg/telemetry"

	"github.com/samir-okafor/quotaguard/internal/httpapi"
)

// appConfig is the process-level configuration, loaded once at startup from
// environment variables (and an optional .env file). The store, catalog,
// listen and block-timeout fields are required; absence terminates startup.
// The logging and telemetry fields fall back to their defaults.
type appConfig struct {
	RedisURI              string  `env:"REDIS_URI" validate:"required"`
	ConfigFilePath        string  `env:"CONFIG_FILE_PATH" validate:"required"`
	ListenIP              string  `env:"LISTEN_IP" validate:"required"`
	ListenPort            int     `env:"LISTEN_PORT" validate:"required"`
	ShortBlockTimeoutSecs int     `env:"SHORT_BLOCK_TIMEOUT_SECS" validate:"required"`
	LongBlockTimeoutSecs  int     `env:"LONG_BLOCK_TIMEOUT_SECS" validate:"required"`
	LogLevel              string  `env:"LOG_LEVEL" env-default:"INFO"`
	LogFormat             string  `env:"LOG_FORMAT" env-default:"JSON"`
	OTelEndpoint          string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4317"`
	SamplingRate          float64 `env:"LOG_SAMPLING_RATE" env-default:"1.0"`
}

func main() {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Config{
		Level:        cfg.LogLevel,
		Format:       cfg.LogFormat,
		SamplingRate: cfg.SamplingRate,
		Async:        true,
		Redact:       true,
	})

	shutdownTelemetry, err := telemetry.Init(telemetry.Config{
		ServiceName: "quotaguard",
		Endpoint:    cfg.OTelEndpoint,
	})
	if err != nil {
		log.Error("telemetry init failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	catalog, err := catalogfile.Load(cfg.ConfigFilePath)
	if err != nil {
		log.Error("catalog load failed", "error", err)
		os.Exit(1)
	}

	redisClient := goredis.NewClient(&goredis.Options{Addr: cfg.RedisURI})
	defer redisClient.Close()

	var st store.Store = redisstore.New(redisClient)
	st = store.Instrument(st, log)
	st = store.Resilient(st,
		resilience.DefaultCircuitBreakerConfig("ratelimit-store"),
		resilience.DefaultRetryConfig(),
	)

	policy := ratelimit.NewStaticBlockPolicy(
		time.Duration(cfg.ShortBlockTimeoutSecs)*time.Second,
		time.Duration(cfg.LongBlockTimeoutSecs)*time.Second,
	)
	engine := ratelimit.NewEngine(catalog, st, policy)

	bus := memory.New()

	server := httpapi.New(engine, log)
	worker := cleanup.NewWorker(catalog, st, bus, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.SubscribeShutdown(ctx, bus); err != nil {
		log.Error("failed to subscribe http server to shutdown", "error", err)
		os.Exit(1)
	}

	go worker.Run(ctx)

	addr := fmt.Sprintf("%s:%d", cfg.ListenIP, cfg.ListenPort)
	go func() {
		if err := server.ListenAndServe(addr); err != nil {
			log.Info("http server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownEvent := events.Event{
		ID:        uuid.NewString(),
		Type:      "shutdown.requested",
		Source:    "quotaguardd",
		Timestamp: time.Now(),
	}
	if err := bus.Publish(context.Background(), "shutdown", shutdownEvent); err != nil {
		log.Error("failed to broadcast shutdown", "error", err)
		os.Exit(1)
	}

	time.Sleep(shutdownDrain)
}

const shutdownDrain = 500 * time.Millisecond
