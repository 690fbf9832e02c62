package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "InsiderPulse/internal/domain/repository"
	mid "InsiderPulse/internal/middleware"
	"InsiderPulse/internal/service/ratelimit"
	"InsiderPulse/pkg/config"
	xhttp "InsiderPulse/pkg/http"
	pkgkafka "InsiderPulse/pkg/kafka"
	applogger "InsiderPulse/pkg/logger"
)

// Ingest is the consumer side: Kafka messages flow through the handler into
// the pipeline and on to the store. Every field may be nil.
type Ingest struct {
	Pipeline *mid.IngestPipeline
	Consumer *pkgkafka.Consumer
	Handler  pkgkafka.MessageHandler
}

type Options struct {
	Store       domrepo.TransactionWriter
	Limiter     *ratelimit.Limiter
	LogProducer *pkgkafka.Producer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	ingest     Ingest
	opts       Options
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, h xhttp.Handler, ingest Ingest, opts Options) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, log: l, handler: h, ingest: ingest, opts: opts}
}

// Run starts the application and blocks until interrupted or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.Logging.Collector.Enabled && a.opts.LogProducer != nil {
		a.log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   a.cfg.Logging.Collector.Interval,
			CountThreshold: a.cfg.Logging.Collector.Threshold,
			Topic:          a.cfg.Kafka.LogTopic,
			Publisher:      a.opts.LogProducer,
		})
		a.log.Info("log collector started", applogger.String("topic", a.cfg.Kafka.LogTopic))
	}

	// ingest runs on its own context so shutdown can drain it after HTTP stops
	ingestCtx, cancelIngest := context.WithCancel(context.Background())
	defer cancelIngest()
	if a.ingest.Pipeline != nil {
		a.ingest.Pipeline.Start(ingestCtx)
	}
	if a.ingest.Consumer != nil && a.ingest.Handler != nil && a.ingest.Pipeline != nil {
		a.ingest.Consumer.RegisterHandler(a.ingest.Handler)
		if err := a.ingest.Consumer.Start(ingestCtx); err != nil {
			a.log.Error("kafka consumer start error", applogger.Error(err))
			return err
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.ingest.Handler.Topic()))
	}

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.log),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithCORSOrigins(a.cfg.Server.CORSOrigins...),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	if a.opts.Limiter != nil {
		go a.pruneLimiter(ctx)
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case runErr = <-a.httpServer.Errors():
	}
	if err := a.shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (a *App) pruneLimiter(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			n := a.opts.Limiter.Prune(10 * time.Minute)
			a.log.Debug("rate limiter pruned", applogger.Int("clients", n))
		case <-ctx.Done():
			return
		}
	}
}

// shutdown stops intake first, then drains the pipeline into the store.
func (a *App) shutdown() error {
	a.log.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}

	if a.ingest.Consumer != nil {
		if err := a.ingest.Consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	if a.ingest.Pipeline != nil {
		a.ingest.Pipeline.Stop()
	}

	// flushes pending aggregated entries
	a.log.RemoveCollector()

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
