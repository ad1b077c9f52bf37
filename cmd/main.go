package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/storelink/relay/internal/infrastructure/backend"
	"github.com/storelink/relay/internal/infrastructure/configs"
	"github.com/storelink/relay/internal/infrastructure/events"
	"github.com/storelink/relay/internal/infrastructure/logbuf"
	"github.com/storelink/relay/internal/infrastructure/logging"
	"github.com/storelink/relay/internal/infrastructure/messaging"
	"github.com/storelink/relay/internal/infrastructure/ratelimiter"
	"github.com/storelink/relay/internal/infrastructure/registry"
	"github.com/storelink/relay/internal/infrastructure/tasks"
	"github.com/storelink/relay/internal/infrastructure/tracing"
	"github.com/storelink/relay/internal/infrastructure/ws"
	"github.com/storelink/relay/internal/presentation/api"
	configHandler "github.com/storelink/relay/internal/presentation/handler/config"
	"github.com/storelink/relay/internal/presentation/handler/health"
	logsHandler "github.com/storelink/relay/internal/presentation/handler/logs"
	"github.com/storelink/relay/internal/presentation/handler/socket"
)

const (
	serviceName = "storelink-relay"
)

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logBuffer := logbuf.New(cfg.LogBuffer.Capacity)

	loggerCfg := logging.NewDefaultConfig()
	loggerCfg.Mirror = logBuffer
	logger := logging.NewLogger(loggerCfg)

	settings := configs.NewSettingsStore(configs.BackendSettings{
		BaseURL:      cfg.Backend.BaseURL,
		Token:        cfg.Backend.Token,
		MessagesPath: cfg.Backend.MessagesPath,
	})

	backendClient := backend.NewClient(settings, cfg.Backend.Timeout, logger)
	roomRegistry := registry.New()
	roomManager := ws.NewManager()
	runner := tasks.NewRunner(logger, cfg.Backend.Timeout)

	// Optional analytics mirror: only wired when an AMQP URI is configured
	var actionPublisher ws.ActionPublisher
	if cfg.AMQP.URI != "" {
		rabbitmq, err := messaging.NewRabbitMQ(cfg.AMQP.URI)
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitmq.Close()

		logger.Info(logging.RabbitMQ, logging.Startup, "RabbitMQ connected", nil)

		actionPublisher = events.NewActionPublisher(rabbitmq)

		actionConsumer := events.NewActionConsumer(rabbitmq, logger)
		go func() {
			if err := actionConsumer.Listen(); err != nil {
				logger.Error(logging.RabbitMQ, logging.ExternalService, "action consumer stopped", map[logging.ExtraKey]any{
					logging.ErrorMessage: err.Error(),
				})
			}
		}()
	}

	relay := ws.NewRelay(roomRegistry, roomManager, backendClient, runner, actionPublisher, logger)

	heartbeat := ws.NewHeartbeatTicker(roomManager, cfg.Heartbeat.Interval, logger)
	go heartbeat.Run(ctx)

	socketHandler := socket.NewHandler(roomManager, relay, logger)
	healthHandler := health.NewHandler()
	cfgHandler := configHandler.NewHandler(settings, logger)
	logHandler := logsHandler.NewHandler(logBuffer)

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		IdleTTL:          cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})

	app := api.NewApplication(*cfg, *socketHandler, *healthHandler, *cfgHandler, *logHandler, logger, rl)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}
