package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/zntus/jbfc-kakao-chatbot/cache"
	"github.com/zntus/jbfc-kakao-chatbot/config"
	"github.com/zntus/jbfc-kakao-chatbot/kleague"
	"github.com/zntus/jbfc-kakao-chatbot/logger"
	"github.com/zntus/jbfc-kakao-chatbot/metrics"
	"github.com/zntus/jbfc-kakao-chatbot/telemetry"
	"go.opentelemetry.io/otel/trace"
)

// app holds everything built from a Config. Close releases it.
type app struct {
	store   cache.Store
	service *kleague.Service
	metrics *metrics.Metrics
	tracer  trace.TracerProvider
	closers []func() error
}

func (a *app) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// openStore builds the configured cache backend, fronted by an in-memory L1
// when cache.l1_ttl is set.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (cache.Store, []func() error, error) {
	opts := []cache.Option{cache.WithPrefix(cfg.Cache.Prefix)}
	var closers []func() error
	var store cache.Store
	var err error
	switch cfg.Cache.Backend {
	case config.BackendMemory:
		store = cache.NewInMemory(ctx, opts...)
	case config.BackendSQLite:
		store, err = cache.NewSQLite(ctx, cfg.Cache.SQLitePath, opts...)
	case config.BackendRedis:
		var ropts *redis.Options
		ropts, err = redis.ParseURL(cfg.Cache.RedisURL.Text())
		if err != nil {
			return nil, nil, errors.Wrapf(err, "cache.redis_url %s", cfg.Cache.RedisURL)
		}
		client := redis.NewClient(ropts)
		closers = append(closers, client.Close)
		store = cache.NewRedis(client, opts...)
	case config.BackendDynamoDB:
		store, err = cache.NewDynamoDBFromConfig(ctx, cache.DynamoDBConfig{
			Table:    cfg.Cache.DynamoDB.Table,
			Region:   cfg.Cache.DynamoDB.Region,
			Endpoint: cfg.Cache.DynamoDB.Endpoint,
		}, opts...)
	case config.BackendPostgres:
		store, err = cache.NewPostgres(ctx, cfg.Cache.PostgresDSN.Text(), opts...)
	default:
		err = errors.Newf("unknown cache backend %q", cfg.Cache.Backend)
	}
	if err != nil {
		for _, c := range closers {
			_ = c()
		}
		return nil, nil, err
	}
	if cfg.Cache.L1TTL > 0 && cfg.Cache.Backend != config.BackendMemory {
		store = cache.NewComposite(cfg.Cache.L1TTL.Std(), cache.NewInMemory(ctx), store)
		log.Debug("in-memory L1 in front of %s, capped at %s", cfg.Cache.Backend, cfg.Cache.L1TTL)
	}
	// store before client: closers run in reverse
	return store, append(closers, store.Close), nil
}

func newApp(ctx context.Context, cfg *config.Config, log logger.Logger, withMetrics bool) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	a := &app{}
	if withMetrics {
		a.metrics = metrics.New(metrics.DefaultNamespace)
	}

	tp, shutdown, err := telemetry.New(ctx, telemetry.Config{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     kleague.Version,
		SampleRate:  cfg.Telemetry.SampleRate,
	}, log.WithPrefix("[telemetry]"))
	if err != nil {
		return nil, err
	}
	a.tracer = tp
	// closers run in reverse: telemetry shuts down last
	a.closers = append(a.closers, func() error { return shutdown(context.Background()) })

	store, closers, err := openStore(ctx, cfg, log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, closers...)
	log.Info("cache backend %s", cfg.Cache.Backend)

	execOpts := []cache.ExecutorOption{
		cache.WithLogger(log.WithPrefix("[cache]")),
		cache.WithDefaultPolicy(cache.Within(cfg.Cache.DefaultTTL.Std())),
	}
	if cfg.Cache.SingleFlight {
		execOpts = append(execOpts, cache.WithSingleFlight())
	}
	clientOpts := kleague.ClientOptions{
		Timeout:        cfg.Upstream.Timeout.Std(),
		UserAgent:      cfg.Upstream.UserAgent,
		Logger:         log.WithPrefix("[upstream]"),
		TracerProvider: tp,
	}
	if a.metrics != nil {
		execOpts = append(execOpts, cache.WithObserver(a.metrics.CacheObserver()))
		clientOpts.Observer = a.metrics.UpstreamObserver()
	}

	client := kleague.NewClient(clientOpts)
	a.service = kleague.NewService(
		cache.NewExecutor(store, execOpts...),
		kleague.NewPortal(client, cfg.Upstream.PortalURL, cfg.Upstream.DataURL, loc),
		kleague.NewMediaClient(client, cfg.Upstream.MediaURL),
		kleague.WithClub(kleague.Club{Name: cfg.Club.Name, TeamID: cfg.Club.TeamID, League: cfg.Club.League}),
		kleague.WithLocation(loc),
		kleague.WithMaxWindows(cfg.Search.MaxWindows),
		kleague.WithMediaIDTTL(cfg.Cache.MediaIDTTL.Std()),
		kleague.WithServiceLogger(log.WithPrefix("[kleague]")),
	)
	return a, nil
}
