package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"TrendLens/internal/dashboard"
	"TrendLens/internal/domain/repository"
	"TrendLens/internal/handler/api"
	"TrendLens/internal/handler/web"
	internalrepo "TrendLens/internal/repository"
	"TrendLens/internal/scheduler"
	icache "TrendLens/internal/service/cache"
	"TrendLens/internal/service/ratelimit"
	"TrendLens/internal/service/yahoo"
	"TrendLens/internal/usecase"
	pkgcache "TrendLens/pkg/cache"
	pkgch "TrendLens/pkg/clickhouse"
	"TrendLens/pkg/config"
	xhttp "TrendLens/pkg/http"
	pkgkafka "TrendLens/pkg/kafka"
	applogger "TrendLens/pkg/logger"
	"TrendLens/pkg/metrics"
	"TrendLens/pkg/queue"
	"TrendLens/pkg/server"
	"TrendLens/pkg/util"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache creates the price history cache; nil when caching is off.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	switch cfg.Cache.Type {
	case "redis":
		c, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisAddr(cfg.Cache.Redis.Addr),
			pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
			pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
			pkgcache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
			pkgcache.WithRedisPool(cfg.Cache.Redis.PoolSize, cfg.Cache.Redis.MinIdleConns, cfg.Cache.Redis.PoolTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	case "memory":
		return pkgcache.NewMemoryCache(
			pkgcache.WithMemoryMaxSize(cfg.Cache.Size),
			pkgcache.WithMemoryCleanup(cfg.Cache.CleanupInterval),
		), nil
	default:
		return nil, nil
	}
}

// ProvidePriceSource creates the Yahoo price source behind the cache.
func ProvidePriceSource(cfg *config.Config, c pkgcache.Service, l *applogger.Logger, m repository.Metrics) (repository.PriceSource, error) {
	hc, err := yahoo.NewHTTPClient(cfg.Yahoo.Timeout, cfg.Yahoo.Proxy)
	if err != nil {
		return nil, fmt.Errorf("yahoo client: %w", err)
	}
	src := yahoo.New(yahoo.WithBaseURL(cfg.Yahoo.BaseURL), yahoo.WithHTTPClient(hc))
	return icache.NewCachedPriceSource(src, c, cfg.Cache.TTL, l, m), nil
}

// ProvideRunRecorder creates the configured prediction run recorder, behind
// the redis work queue when it is enabled.
func ProvideRunRecorder(cfg *config.Config, l *applogger.Logger) (repository.RunRecorder, error) {
	rec, err := provideBaseRecorder(cfg, l)
	if err != nil {
		return nil, err
	}
	if !cfg.Recorder.Queue.Enabled {
		return rec, nil
	}

	qc := cfg.Recorder.Queue
	client := redis.NewClient(&redis.Options{Addr: qc.RedisAddr})
	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:       qc.Workers,
		RetryLimit:    qc.RetryLimit,
		RetryDelay:    qc.RetryDelay,
		HandleTimeout: qc.HandleTimeout,
	}, client, queue.WithKeyPrefix(qc.Prefix))
	q.RegisterJob(internalrepo.NewRecordRunJob(rec))
	if err := q.Start(); err != nil {
		_ = client.Close()
		_ = rec.Close()
		return nil, fmt.Errorf("run queue: %w", err)
	}
	return internalrepo.NewQueuedRunRecorder(q, &closingRecorder{RunRecorder: rec, client: client}), nil
}

// closingRecorder releases the queue's redis client with the recorder.
type closingRecorder struct {
	repository.RunRecorder
	client *redis.Client
}

func (c *closingRecorder) Close() error {
	return errors.Join(c.RunRecorder.Close(), c.client.Close())
}

func provideBaseRecorder(cfg *config.Config, l *applogger.Logger) (repository.RunRecorder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rc := cfg.Recorder
	switch rc.Type {
	case "sqlite":
		rec, err := internalrepo.NewSQLiteRecorder(ctx, rc.SQLite.Path, l)
		if err != nil {
			return nil, fmt.Errorf("sqlite recorder: %w", err)
		}
		return rec, nil
	case "clickhouse":
		client, err := pkgch.NewClient(
			pkgch.WithAddr(rc.ClickHouse.Host, rc.ClickHouse.Port),
			pkgch.WithDatabase(rc.ClickHouse.Database),
			pkgch.WithCredentials(rc.ClickHouse.User, rc.ClickHouse.Password),
			pkgch.WithHTTP(rc.ClickHouse.UseHTTP),
			pkgch.WithTimeouts(rc.ClickHouse.DialTimeout, rc.ClickHouse.ReadTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}
		rec, err := internalrepo.NewCHRunRecorder(ctx, client, l)
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		return rec, nil
	case "kafka":
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(rc.Kafka.Brokers),
			pkgkafka.WithCompression(rc.Kafka.Compression),
			pkgkafka.WithRequiredAcks(rc.Kafka.RequiredAcks),
			pkgkafka.WithWriteTimeout(rc.Kafka.WriteTimeout),
			pkgkafka.WithAsync(rc.Kafka.Async),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		return internalrepo.NewKafkaRunRecorder(producer, rc.Kafka.Topic), nil
	default:
		return internalrepo.NewNoopRecorder(), nil
	}
}

// ProvideRunLister exposes run history when the recorder can read it back.
func ProvideRunLister(rec repository.RunRecorder) repository.RunLister {
	if q, ok := rec.(*internalrepo.QueuedRunRecorder); ok {
		rec = q.Unwrap()
	}
	if c, ok := rec.(*closingRecorder); ok {
		rec = c.RunRecorder
	}
	if lister, ok := rec.(repository.RunLister); ok {
		return lister
	}
	return nil
}

// ProvidePredictorUseCase creates the prediction use case.
func ProvidePredictorUseCase(cfg *config.Config, src repository.PriceSource, rec repository.RunRecorder, m repository.Metrics, l *applogger.Logger) *usecase.PredictorUseCase {
	start, _ := util.ParseDate(cfg.Predictor.Start)
	end, _ := util.ParseDate(cfg.Predictor.End)
	return usecase.NewPredictorUseCase(src, rec, m, l, usecase.PredictorConfig{
		Start:      start,
		End:        end,
		Interval:   repository.DefaultInterval(),
		TrainRatio: cfg.Predictor.TrainRatio,
		MinPoints:  cfg.Predictor.MinPoints,
	})
}

// ProvideRateLimiter creates the per-client limiter for POST /predict.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Predictor.RateLimit.Burst, cfg.Predictor.RateLimit.PerSecond)
}

// ProvidePredictHandler creates the prediction API handler.
func ProvidePredictHandler(l *applogger.Logger, uc *usecase.PredictorUseCase, limiter *ratelimit.Limiter, runs repository.RunLister) *api.PredictHandler {
	return api.NewPredictHandler(l, uc, limiter, runs)
}

// ProvideDashboardHandler creates the web dashboard. Without a prediction_url
// sessions call the predict handler in-process, each with its own rate limit key.
func ProvideDashboardHandler(cfg *config.Config, l *applogger.Logger, m repository.Metrics, predict *api.PredictHandler) *web.DashboardHandler {
	var remote dashboard.PredictionAPI
	if cfg.Dashboard.PredictionURL != "" {
		remote = dashboard.NewHTTPPredictionAPI(cfg.Dashboard.PredictionURL, xhttp.NewClient(xhttp.WithTimeout(0)))
	}
	charts := dashboard.ImageChartFactory{Width: cfg.Dashboard.ChartWidth, Height: cfg.Dashboard.ChartHeight}
	return web.NewDashboardHandler(l, cfg.Dashboard.SessionTTL, func(id string) *dashboard.Dashboard {
		predictAPI := remote
		if predictAPI == nil {
			predictAPI = predict.Local("session:" + id)
		}
		return dashboard.New(predictAPI, charts,
			dashboard.WithLogger(l),
			dashboard.WithMetrics(m),
			dashboard.WithRequestTimeout(cfg.Dashboard.RequestTimeout),
		)
	})
}

// ProvideScheduler starts periodic housekeeping; nil when no cron spec is set.
func ProvideScheduler(cfg *config.Config, l *applogger.Logger, limiter *ratelimit.Limiter, dash *web.DashboardHandler) (*scheduler.Scheduler, error) {
	if cfg.Housekeeping.Cron == "" {
		return nil, nil
	}
	s := scheduler.New(l, limiter, dash, cfg.Housekeeping.LimiterIdle)
	if err := s.Register(cfg.Housekeeping.Cron); err != nil {
		return nil, err
	}
	s.Start()
	return s, nil
}

// ProvideApp assembles the HTTP application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	predict *api.PredictHandler,
	dash *web.DashboardHandler,
	sched *scheduler.Scheduler,
	c pkgcache.Service,
	rec repository.RunRecorder,
) *server.App {
	closers := []io.Closer{dash}
	if sched != nil {
		closers = []io.Closer{sched, dash}
	}
	return server.New(cfg, l, []xhttp.Handler{predict, dash}, append(closers, c, rec)...)
}
