package di

import (
	"context"
	"fmt"
	"time"

	domrepo "InsiderPulse/internal/domain/repository"
	"InsiderPulse/internal/handler/api"
	mid "InsiderPulse/internal/middleware"
	internalrepo "InsiderPulse/internal/repository"
	icache "InsiderPulse/internal/service/cache"
	"InsiderPulse/internal/service/ratelimit"
	"InsiderPulse/internal/services/analytics"
	"InsiderPulse/internal/usecase"
	pkgch "InsiderPulse/pkg/clickhouse"
	"InsiderPulse/pkg/config"
	pkgkafka "InsiderPulse/pkg/kafka"
	applogger "InsiderPulse/pkg/logger"
	"InsiderPulse/pkg/metrics"
	"InsiderPulse/pkg/server"

	"github.com/shopspring/decimal"
)

// Analytics bundles the read side for commands that do not serve HTTP.
type Analytics struct {
	Sentiment *usecase.SentimentUseCase
	Ticker    *usecase.TickerUseCase
	Dashboard *usecase.DashboardUseCase
}

// ProvideLogger builds the application logger from the logging section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideRepository opens the configured backend and ensures its schema.
func ProvideRepository(cfg *config.Config, l *applogger.Logger) (domrepo.TransactionRepository, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var (
		repo    domrepo.TransactionRepository
		cleanup = func() {}
	)
	switch cfg.Backend.Type {
	case "clickhouse":
		client, err := pkgch.NewClient(
			pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithMaxConnections(10, 5),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		repo = internalrepo.NewCHTransactionStore(client, cfg.ClickHouse.Table, l)
		cleanup = func() {
			if err := client.Close(); err != nil {
				l.Warn("clickhouse close error", applogger.Error(err))
			}
		}
	case "postgres":
		pool, err := internalrepo.NewPostgresPool(ctx, cfg.Postgres.DSN,
			cfg.Postgres.MaxConns, cfg.Postgres.MinConns, cfg.Postgres.MaxConnLifetime)
		if err != nil {
			return nil, nil, err
		}
		repo = internalrepo.NewPGTransactionStore(pool, l)
		cleanup = func() { _ = repo.Close() }
	case "memory":
		if cfg.Backend.SeedFile == "" {
			repo = internalrepo.NewMemoryStore()
			break
		}
		ms, err := internalrepo.LoadMemoryStore(cfg.Backend.SeedFile)
		if err != nil {
			return nil, nil, err
		}
		l.Info("memory store seeded", applogger.String("file", cfg.Backend.SeedFile), applogger.Int("transactions", ms.Len()))
		repo = ms
	default:
		return nil, nil, fmt.Errorf("unknown backend: %s", cfg.Backend.Type)
	}

	if err := repo.Init(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("%s schema: %w", cfg.Backend.Type, err)
	}
	l.Info("transaction store ready", applogger.String("backend", cfg.Backend.Type))
	return repo, cleanup, nil
}

// ProvideQueryStore puts the circuit breaker in front of reads.
func ProvideQueryStore(repo domrepo.TransactionRepository, cfg *config.Config, l *applogger.Logger) domrepo.TransactionStore {
	if !cfg.Breaker.Enabled {
		return repo
	}
	return internalrepo.NewBreakerStore(repo, cfg.Breaker.MaxFailures, cfg.Breaker.HalfOpenMax, cfg.Breaker.OpenTimeout, l)
}

func ProvideAnalyticsConfig(cfg *config.Config) analytics.Config {
	a := cfg.Analytics
	return analytics.Config{
		ShortWindowDays:     a.ShortWindowDays,
		ReferenceDays:       a.ReferenceDays,
		BarometerScale:      a.BarometerScale,
		HighVolumeThreshold: decimal.NewFromFloat(a.HighVolumeThreshold),
		MomentumThreshold:   a.MomentumThreshold,
		TrendWindows:        a.TrendWindows,
		TrendSmoothingDays:  a.TrendSmoothingDays,
		TopActiveCompanies:  a.TopActiveCompanies,
		DedupPolicy:         analytics.DedupPolicy(a.DedupPolicy),
	}
}

func ProvideLimits(cfg *config.Config) usecase.Limits {
	return usecase.Limits{
		MinWindowDays: cfg.Analytics.MinWindowDays,
		MaxWindowDays: cfg.Analytics.MaxWindowDays,
		QueryTimeout:  cfg.Server.RequestTimeout,
	}
}

func ProvideDashboardUseCase(s *usecase.SentimentUseCase, cfg *config.Config, l *applogger.Logger) *usecase.DashboardUseCase {
	return usecase.NewDashboardUseCase(s, usecase.DefaultDashboard(), cfg.Server.RequestTimeout, l)
}

func ProvideAnalytics(s *usecase.SentimentUseCase, t *usecase.TickerUseCase, d *usecase.DashboardUseCase) *Analytics {
	return &Analytics{Sentiment: s, Ticker: t, Dashboard: d}
}

// ProvideResponseCache returns Redis when enabled, otherwise an in-process
// TTL cache. A nil cache disables response caching.
func ProvideResponseCache(cfg *config.Config, l *applogger.Logger) (icache.BytesCache, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, func() {}, nil
	}
	if cfg.Redis.Enabled {
		rc, err := icache.NewRedisCache(context.Background(), icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: 10,
			Prefix:   "insiderpulse:",
		})
		if err != nil {
			return nil, nil, err
		}
		l.Info("response cache: redis", applogger.String("addr", cfg.Redis.Addr))
		return rc, func() { _ = rc.Close() }, nil
	}
	l.Info("response cache: in-process")
	return icache.NewTTLCache(1024), func() {}, nil
}

func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

func ProvideHTTPHandler(
	l *applogger.Logger,
	s *usecase.SentimentUseCase,
	t *usecase.TickerUseCase,
	d *usecase.DashboardUseCase,
	cache icache.BytesCache,
	limiter *ratelimit.Limiter,
	repo domrepo.TransactionRepository,
	cfg *config.Config,
) *api.InsiderEchoHandler {
	return api.NewInsiderEchoHandler(l, s, t, d, api.Options{
		Cache:      cache,
		CacheTTL:   cfg.Cache.TTL,
		CurrentTTL: cfg.Cache.CurrentTTL,
		Limiter:    limiter,
		Health:     repo.Health,
	})
}

// ProvideKafkaProducer creates a producer when brokers are configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideTransactionPublisher is nil without a producer.
func ProvideTransactionPublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewTransactionPublisher(producer, cfg.Kafka.Topic)
}

func ProvideTransactionProcessor(pub domrepo.Publisher, repo domrepo.TransactionRepository, m domrepo.Metrics, cfg *config.Config) *usecase.TransactionProcessor {
	backend := usecase.BackendStore
	if pub != nil {
		backend = usecase.BackendKafka
	}
	return usecase.NewTransactionProcessor(pub, repo, m, backend, cfg.Backend.BatchSize)
}

func ProvideIngestPipeline(repo domrepo.TransactionRepository, m domrepo.Metrics, l *applogger.Logger, cfg *config.Config) *mid.IngestPipeline {
	return mid.NewIngestPipeline(repo, m, l.With(applogger.String("component", "ingest")),
		mid.WithBatchSize(cfg.Backend.BatchSize),
		mid.WithFlushInterval(cfg.Backend.BatchTimeout),
		mid.WithWriteRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
	)
}

// ProvideKafkaConsumer is nil unless the consumer is enabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	c := cfg.Kafka.Consumer
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(c.GroupID),
		pkgkafka.WithConsumerWorkers(c.Workers),
		pkgkafka.WithConsumerBufferSize(c.BufferSize),
		pkgkafka.WithConsumerRetry(c.RetryMax, c.BackoffMin, c.BackoffMax),
		pkgkafka.WithConsumerDLQ(c.DLQTopic),
		pkgkafka.WithConsumerFetch(c.MinBytes, c.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.LoggingHook{Log: l})
	return consumer, nil
}

func ProvideTransactionsHandler(p *mid.IngestPipeline, m domrepo.Metrics, cfg *config.Config) *usecase.KafkaTransactionsHandler {
	return usecase.NewKafkaTransactionsHandler(cfg.Kafka.Topic, p, m)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	h *api.InsiderEchoHandler,
	repo domrepo.TransactionRepository,
	limiter *ratelimit.Limiter,
	pipeline *mid.IngestPipeline,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaTransactionsHandler,
	producer *pkgkafka.Producer,
) *server.App {
	return server.New(cfg, l, h, server.Ingest{
		Pipeline: pipeline,
		Consumer: consumer,
		Handler:  kh,
	}, server.Options{
		Store:       repo,
		Limiter:     limiter,
		LogProducer: producer,
	})
}
