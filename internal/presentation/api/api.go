package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/storelink/relay/internal/infrastructure/configs"
	"github.com/storelink/relay/internal/infrastructure/logging"
	"github.com/storelink/relay/internal/infrastructure/ratelimiter"
	configHandler "github.com/storelink/relay/internal/presentation/handler/config"
	healthHandler "github.com/storelink/relay/internal/presentation/handler/health"
	logsHandler "github.com/storelink/relay/internal/presentation/handler/logs"
	socketHandler "github.com/storelink/relay/internal/presentation/handler/socket"
)

type Application struct {
	config        configs.Config
	socketHandler socketHandler.Handler
	healthHandler healthHandler.Handler
	configHandler configHandler.Handler
	logsHandler   logsHandler.Handler
	logger        logging.Logger
	ratelimiter   ratelimiter.Limiter
}

func NewApplication(
	config configs.Config,
	socketHandler socketHandler.Handler,
	healthHandler healthHandler.Handler,
	configHandler configHandler.Handler,
	logsHandler logsHandler.Handler,
	logger logging.Logger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	return &Application{
		config:        config,
		socketHandler: socketHandler,
		healthHandler: healthHandler,
		configHandler: configHandler,
		logsHandler:   logsHandler,
		logger:        logger,
		ratelimiter:   ratelimiter,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(app.rateLimiterMiddleware)
	r.Use(app.enableCors)

	// The websocket handshake must not sit behind the request timeout:
	// upgraded connections outlive any sane HTTP deadline
	r.Get("/ws", app.socketHandler.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(app.loggerMiddleware)

		r.Route("/config", func(r chi.Router) {
			r.Get("/", app.configHandler.GetConfig)
			r.Put("/", app.configHandler.UpdateConfig)
		})

		r.Get("/logs", app.logsHandler.GetLogs)

		r.Get("/health", app.healthHandler.GetHealth)
	})

	r.Get("/healthz", app.healthHandler.GetHealth)
	r.Get("/ready", app.healthHandler.GetHealth)
	r.Get("/live", app.healthHandler.GetHealth)

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		// Fail health checks first so traffic drains before the listener dies
		healthHandler.SetHealthy(false)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Info(logging.General, logging.Shutdown, "signal caught", map[logging.ExtraKey]any{
			"signal": s.String(),
		})

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	return nil
}
