package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vehiclereg/internal/platform/config"
	platformmetrics "vehiclereg/internal/platform/metrics"
	"vehiclereg/internal/platform/middleware"
	"vehiclereg/internal/platform/postgres"
	"vehiclereg/internal/platform/redis"
	"vehiclereg/internal/registration/schema"
	registrycatalog "vehiclereg/internal/registry/catalog"
	registryhandler "vehiclereg/internal/registry/handler"
	registrymetrics "vehiclereg/internal/registry/metrics"
	registryservice "vehiclereg/internal/registry/service"
	registrystore "vehiclereg/internal/registry/store"
	"vehiclereg/internal/registryclient"
	"vehiclereg/internal/wizard/draft"
	wizardhandler "vehiclereg/internal/wizard/handler"
	wizardmetrics "vehiclereg/internal/wizard/metrics"
	"vehiclereg/internal/wizard/session"
	"vehiclereg/pkg/platform/audit"
	"vehiclereg/pkg/platform/circuit"
	"vehiclereg/pkg/platform/middleware/metadata"
	"vehiclereg/pkg/platform/middleware/requesttime"
)

const (
	auditBufferSize    = 1024
	auditDrainTimeout  = 5 * time.Second
	storedCountTimeout = 2 * time.Second
)

// app holds the wired process and the resources it must release.
// auditQueue is nil unless audit events go to Kafka.
type app struct {
	router     http.Handler
	sessions   *session.Manager
	auditQueue *audit.AsyncPublisher
	closers    []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	a := &app{}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		rc, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		redisClient = rc
		a.closers = append(a.closers, func() { _ = rc.Close() })
	}

	backend, err := snapshotBackend(cfg.Snapshot, redisClient)
	if err != nil {
		a.Close()
		return nil, err
	}

	breaker := circuit.New("registry",
		circuit.WithFailureThreshold(cfg.Registry.BreakerThreshold),
		circuit.WithCooldown(cfg.Registry.BreakerCooldown),
	)
	client, err := registryclient.New(cfg.Registry.BaseURL, cfg.Registry.Timeout,
		registryclient.WithLogger(log),
		registryclient.WithBreaker(breaker),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	sessions, err := session.New(backend, client, client, client,
		session.WithLogger(log),
		session.WithMetrics(wizardmetrics.New(reg)),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.sessions = sessions

	platform := platformmetrics.New(reg)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Recovery(log, platform))
	r.Use(middleware.Logger(log, platform))

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	api, err := a.registryHandler(ctx, cfg, log, reg)
	if err != nil {
		a.Close()
		return nil, err
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
		r.Use(middleware.ContentTypeJSON)
		wizardhandler.New(sessions, client, log).Register(r)
		if api != nil {
			api.Register(r)
		}
	})

	a.router = r
	return a, nil
}

// registryHandler builds the reference registry when the server hosts it.
func (a *app) registryHandler(ctx context.Context, cfg config.Config, log *slog.Logger, reg prometheus.Registerer) (*registryhandler.Handler, error) {
	if !cfg.Server.ServeRegistry {
		return nil, nil
	}

	vehicles, err := registrycatalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}

	store, err := a.registryStore(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}

	publisher, err := a.auditPublisher(cfg.Kafka, log)
	if err != nil {
		return nil, err
	}

	registrymetrics.RegisterStored(reg, store, storedCountTimeout)

	svc, err := registryservice.New(store, schema.New(vehicles),
		registryservice.WithLogger(log),
		registryservice.WithMetrics(registrymetrics.New(reg)),
		registryservice.WithAuditPublisher(publisher),
	)
	if err != nil {
		return nil, err
	}
	return registryhandler.New(svc, log), nil
}

// registryStorage is what the server needs from a registration store.
type registryStorage interface {
	registryservice.Store
	registrymetrics.Counter
}

func (a *app) registryStore(ctx context.Context, cfg config.PostgresConfig) (registryStorage, error) {
	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return registrystore.NewInMemory(), nil
	}
	a.closers = append(a.closers, func() { _ = db.Close() })

	pg := registrystore.NewPostgres(db)
	if err := pg.Migrate(ctx); err != nil {
		return nil, err
	}
	return pg, nil
}

func (a *app) auditPublisher(cfg config.KafkaConfig, log *slog.Logger) (audit.Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return audit.NewLogPublisher(log), nil
	}
	kp, err := audit.NewKafkaPublisher(cfg.Brokers, cfg.Topic, cfg.ClientID)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, kp.Close)
	a.auditQueue = audit.NewAsyncPublisher(kp, auditBufferSize, log)
	return a.auditQueue, nil
}

func snapshotBackend(cfg config.Snapshot, rc *redis.Client) (draft.Backend, error) {
	switch cfg.Backend {
	case config.SnapshotMemory:
		return draft.NewMemoryBackend(), nil
	case config.SnapshotFile:
		return draft.NewFileBackend(cfg.Dir), nil
	case config.SnapshotRedis:
		if rc == nil {
			return nil, fmt.Errorf("snapshot backend %q requires redis", cfg.Backend)
		}
		return draft.NewRedisBackend(rc.Client, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Backend)
	}
}

