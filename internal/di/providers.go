package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"UKPredict/internal/domain/repository"
	"UKPredict/internal/domain/service"
	"UKPredict/internal/handler/api"
	internalrepo "UKPredict/internal/repository"
	"UKPredict/internal/services/features"
	"UKPredict/internal/services/inference/native"
	"UKPredict/internal/services/inference/sidecar"
	"UKPredict/internal/usecase"
	pkgcache "UKPredict/pkg/cache"
	pkgch "UKPredict/pkg/clickhouse"
	"UKPredict/pkg/config"
	xhttp "UKPredict/pkg/http"
	xmw "UKPredict/pkg/http/middleware"
	pkgkafka "UKPredict/pkg/kafka"
	applogger "UKPredict/pkg/logger"
	"UKPredict/pkg/metrics"
	"UKPredict/pkg/server"
	"UKPredict/pkg/util"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// ProvideRegistry creates the registry served on the metrics path.
func ProvideRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when disabled.
func ProvideClickHouseClient(ctx context.Context, cfg *config.Config) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}
	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideKafkaProducer creates a Kafka producer when events or the error-log
// collector need one, nil otherwise.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Events.Enabled && !cfg.Log.Collector.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideEventPublisher returns nil when events are disabled.
func ProvideEventPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.EventPublisher {
	if !cfg.Events.Enabled || producer == nil {
		return nil
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Events.Topic)
}

// ProvideCacheService builds the configured cache backend, or nil for "none".
func ProvideCacheService(ctx context.Context, cfg *config.Config) (pkgcache.Service, func(), error) {
	redis := func() (*pkgcache.RedisCache, error) {
		return pkgcache.NewRedisCache(ctx,
			pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
			pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
			pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
			pkgcache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
	}

	var svc pkgcache.Service
	switch cfg.Cache.Backend {
	case "memory":
		svc = pkgcache.NewMemoryCache(
			pkgcache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize),
			pkgcache.WithMemoryTTL(cfg.Cache.TTL),
		)
	case "redis":
		rc, err := redis()
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		svc = rc
	case "layered":
		rc, err := redis()
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		svc = pkgcache.NewLayeredCache(rc,
			pkgcache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
			pkgcache.WithLayeredMemoryTTL(cfg.Cache.TTL),
		)
	default:
		return nil, func() {}, nil
	}
	return svc, func() { _ = svc.Close() }, nil
}

// ProvidePredictionCache returns nil when caching is disabled.
func ProvidePredictionCache(cfg *config.Config, svc pkgcache.Service) repository.PredictionCache {
	if svc == nil {
		return nil
	}
	return internalrepo.NewPredictionCache(svc, cfg.Cache.TTL)
}

// ProvideSeriesSource returns nil when history.source is "none".
func ProvideSeriesSource(ctx context.Context, cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) (repository.SeriesSource, error) {
	switch cfg.History.Source {
	case "file":
		return internalrepo.NewFileSeriesSource(cfg.History.Paths, l), nil
	case "clickhouse":
		if ch == nil {
			return nil, fmt.Errorf("history source clickhouse: client not configured")
		}
		if err := ch.InitSchema(ctx, pkgch.DemandDDL(cfg.History.Table)); err != nil {
			return nil, fmt.Errorf("clickhouse demand schema: %w", err)
		}
		return internalrepo.NewCHSeriesSource(ch, cfg.History.Table, l), nil
	default:
		return nil, nil
	}
}

// ProvideModelContext loads the model artifact and the history in parallel.
// A missing or failing artifact is fatal; missing history only degrades the
// electricity encoder to the demand profile.
func ProvideModelContext(ctx context.Context, cfg *config.Config, src repository.SeriesSource, l *applogger.Logger) (*usecase.ModelContext, func(), error) {
	path, ok := util.FirstExisting(cfg.Model.Paths)
	if !ok {
		return nil, nil, fmt.Errorf("model artifact not found, tried %v", cfg.Model.Paths)
	}
	mc := &usecase.ModelContext{Artifact: path}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		reg, err := newRegressor(gctx, cfg, path, l)
		if err != nil {
			return fmt.Errorf("load model %s: %w", path, err)
		}
		mc.Regressor = reg
		l.Info("model loaded",
			applogger.String("path", path),
			applogger.String("backend", reg.Backend()),
			applogger.Duration("took_ms", time.Since(start)),
		)
		return nil
	})
	if src != nil {
		g.Go(func() error {
			lctx := gctx
			if cfg.History.LoadTimeout > 0 {
				var cancel context.CancelFunc
				lctx, cancel = context.WithTimeout(gctx, cfg.History.LoadTimeout)
				defer cancel()
			}
			series, err := src.Load(lctx)
			switch {
			case errors.Is(err, repository.ErrNoHistory):
				l.Warn("historical data not found, predictions use the demand profile", applogger.String("source", src.Describe()))
			case err != nil:
				l.Warn("historical data failed to load, predictions use the demand profile",
					applogger.String("source", src.Describe()),
					applogger.Error(err),
				)
			default:
				mc.Series = series
				mc.SeriesSource = src.Describe()
				l.Info("historical data loaded",
					applogger.String("source", src.Describe()),
					applogger.Int("records", series.Len()),
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if mc.Regressor != nil {
			_ = mc.Regressor.Close()
		}
		return nil, nil, err
	}
	return mc, func() { _ = mc.Regressor.Close() }, nil
}

func newRegressor(ctx context.Context, cfg *config.Config, path string, l *applogger.Logger) (service.Regressor, error) {
	switch cfg.Model.Backend {
	case sidecar.Backend:
		sc := cfg.Model.Sidecar
		s := &sidecar.Sidecar{
			Add: sc.Host,
			Cli: &http.Client{Timeout: sc.RequestTimeout},
			Log: l.With(applogger.String("component", "sidecar")),
			Pat: path,
			Por: sc.Port,
			Pyt: sc.Python,
			Pol: sc.PollInterval,
		}
		rctx := ctx
		if sc.StartupTimeout > 0 {
			var cancel context.CancelFunc
			rctx, cancel = context.WithTimeout(ctx, sc.StartupTimeout)
			defer cancel()
		}
		if err := s.Restore(rctx); err != nil {
			_ = s.Sigkill()
			return nil, err
		}
		return s, nil
	default:
		return native.NewRegressor(path)
	}
}

func predictorDeps(cfg *config.Config, c repository.PredictionCache, ev repository.EventPublisher, m repository.Metrics, l *applogger.Logger) usecase.PredictorDeps {
	return usecase.PredictorDeps{
		Cache:        c,
		Events:       ev,
		Metrics:      m,
		Logger:       l,
		EventTimeout: cfg.Events.Timeout,
	}
}

func ProvideHousingPredictor(
	cfg *config.Config,
	mc *usecase.ModelContext,
	c repository.PredictionCache,
	ev repository.EventPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.HousingPredictor {
	return usecase.NewHousingPredictor(mc, predictorDeps(cfg, c, ev, m, l))
}

func ProvideElectricityPredictor(
	cfg *config.Config,
	mc *usecase.ModelContext,
	c repository.PredictionCache,
	ev repository.EventPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.ElectricityPredictor {
	l.Info("bank holiday flags are limited to the built-in table",
		applogger.Int("first_year", features.HolidayFirstYear),
		applogger.Int("last_year", features.HolidayLastYear),
	)
	return usecase.NewElectricityPredictor(mc, predictorDeps(cfg, c, ev, m, l))
}

func handlerOptions(cfg *config.Config) []api.HandlerOption {
	opts := []api.HandlerOption{api.WithVersion(cfg.Service.Version)}
	if rl := cfg.Server.RateLimit; rl.Enabled {
		opts = append(opts, api.WithRateLimit(xmw.NewLimiter(rl.Capacity, rl.RefillPerSec)))
	}
	return opts
}

func ProvideHousingHandler(cfg *config.Config, l *applogger.Logger, p *usecase.HousingPredictor) xhttp.Handler {
	return api.NewHousingHandler(l, p, handlerOptions(cfg)...)
}

func ProvideElectricityHandler(cfg *config.Config, l *applogger.Logger, p *usecase.ElectricityPredictor) xhttp.Handler {
	return api.NewElectricityHandler(l, p, handlerOptions(cfg)...)
}

// ProvideHTTPServer creates the echo server for handler.
func ProvideHTTPServer(cfg *config.Config, handler xhttp.Handler, reg *prometheus.Registry, l *applogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithLogger(l),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(reg, cfg.Metrics.Path))
	}
	return xhttp.NewServer(handler, opts...)
}

// ProvideLogCollector ships aggregated error logs to Kafka when enabled. The
// returned cleanup flushes pending entries.
func ProvideLogCollector(cfg *config.Config, l *applogger.Logger, producer *pkgkafka.Producer) (LogCollector, func()) {
	if !cfg.Log.Collector.Enabled || producer == nil {
		return LogCollector{}, func() {}
	}
	l.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   cfg.Log.Collector.Interval,
		CountThreshold: cfg.Log.Collector.CountThreshold,
		Topic:          cfg.Log.Collector.Topic,
		Publisher:      producer,
	})
	return LogCollector{Enabled: true}, l.RemoveCollector
}

// LogCollector marks that the error-log collector has been attached.
type LogCollector struct {
	Enabled bool
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, _ LogCollector) *server.App {
	return server.New(cfg.Service.Name, l, srv, server.WithShutdownTimeout(cfg.Server.ShutdownTimeout))
}

// ProvidePredictionStore creates the ClickHouse audit table.
func ProvidePredictionStore(ctx context.Context, cfg *config.Config, ch *pkgch.Client) (repository.PredictionStore, error) {
	if ch == nil {
		return nil, fmt.Errorf("prediction store: clickhouse not configured")
	}
	store := internalrepo.NewCHPredictionStore(ch, cfg.Recorder.Table)
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("prediction store schema: %w", err)
	}
	return store, nil
}

// ProvideRecorderHandler consumes the prediction events topic.
func ProvideRecorderHandler(cfg *config.Config, store repository.PredictionStore, m repository.Metrics) *usecase.RecorderHandler {
	return usecase.NewRecorderHandler(cfg.Events.Topic, store, m)
}

// ProvideKafkaConsumer creates a Kafka consumer with h registered.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger, h *usecase.RecorderHandler) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.RegisterHandler(h)
	consumer.WithConsumerHook(pkgkafka.TracingHook())
	return consumer, nil
}

func ProvideRecorderHTTPHandler(store repository.PredictionStore) xhttp.Handler {
	return api.NewRecorderStatusHandler(store)
}

// ProvideRecorderApp runs the consumer next to a health and metrics server.
func ProvideRecorderApp(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, consumer *pkgkafka.Consumer, _ LogCollector) *server.App {
	return server.New(cfg.Service.Name, l, srv,
		server.WithConsumer(consumer),
		server.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
	)
}
