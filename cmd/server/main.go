// main wires configuration, stores, the identity service, the access gate
// and the HTTP router, then runs the server until a signal arrives.
// Business logic lives in the internal packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"sahay/internal/account"
	"sahay/internal/gate"
	"sahay/internal/identity"
	"sahay/internal/identity/cache"
	"sahay/internal/platform/config"
	"sahay/internal/platform/httpserver"
	"sahay/internal/platform/logger"
	"sahay/internal/platform/metrics"
	platformredis "sahay/internal/platform/redis"
	"sahay/internal/profile"
	"sahay/internal/session"
	httptransport "sahay/internal/transport/http"
	"sahay/pkg/platform/audit"
	"sahay/pkg/platform/audit/publisher"
	kafkasink "sahay/pkg/platform/audit/sink/kafka"
	auditmem "sahay/pkg/platform/audit/store/memory"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Environment)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	m := metrics.New()

	accounts, profiles, closeDB, err := buildStores(cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	auditPublisher, closeAudit, err := buildAudit(cfg, log)
	if err != nil {
		return err
	}
	defer closeAudit()

	viewCache, closeCache, err := buildViewCache(cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()

	svc := identity.New(accounts, profiles,
		identity.WithLogger(log),
		identity.WithAuditPublisher(auditPublisher),
		identity.WithMetrics(m),
		identity.WithViewCache(viewCache),
	)

	codec := session.NewCodec(cfg.SessionSigningKey)
	secure := cfg.IsProduction()
	g := gate.New(codec, svc,
		gate.WithLogger(log),
		gate.WithMetrics(m),
		gate.WithSecureCookies(secure),
	)

	ttls := httptransport.SessionTTLs{
		Full:       cfg.SessionTTL,
		RememberMe: cfg.RememberMeTTL,
		Temporary:  cfg.TempSessionTTL,
	}
	router := httptransport.NewRouter(log, g,
		httptransport.NewAuthHandler(svc, codec, ttls, secure, log,
			httptransport.WithAuthMetrics(m),
			httptransport.WithAuthAuditPublisher(auditPublisher)),
		httptransport.NewUserHandler(svc, secure, log,
			httptransport.WithUserAuditPublisher(auditPublisher)),
		httptransport.NewPageHandler(svc, codec, ttls, secure, log,
			httptransport.WithPageMetrics(m),
			httptransport.WithPageAuditPublisher(auditPublisher)),
	)

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting server", "addr", cfg.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// buildStores selects Postgres when DATABASE_URL is set, in-memory
// otherwise. The single *sql.DB backs both stores.
func buildStores(cfg config.Server, log *slog.Logger) (account.Store, profile.Store, func(), error) {
	if cfg.PostgresURL == "" {
		log.Info("using in-memory stores")
		return account.NewInMemory(), profile.NewInMemory(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	log.Info("using postgres stores")
	return account.NewPostgres(db), profile.NewPostgres(db), func() { db.Close() }, nil
}

// buildAudit assembles the audit pipeline: an in-memory primary store,
// teed to Kafka when brokers are configured, behind an async publisher.
func buildAudit(cfg config.Server, log *slog.Logger) (*publisher.Publisher, func(), error) {
	var store audit.Store = auditmem.NewInMemoryStore()
	closeSink := func() {}

	if len(cfg.KafkaBrokers) > 0 {
		sink, err := kafkasink.New(cfg.KafkaBrokers, cfg.AuditTopic, kafkasink.WithLogger(log))
		if err != nil {
			return nil, nil, err
		}
		log.Info("audit events streaming to kafka", "topic", cfg.AuditTopic)
		store = audit.NewTeeStore(store, sink)
		closeSink = sink.Close
	}

	pub := publisher.NewPublisher(store,
		publisher.WithLogger(log),
		publisher.WithAsyncBuffer(256),
	)
	return pub, func() {
		pub.Close()
		closeSink()
	}, nil
}

// buildViewCache selects Redis when REDIS_URL is set, in-memory otherwise.
func buildViewCache(cfg config.Server, log *slog.Logger) (identity.ViewCache, func(), error) {
	if cfg.RedisURL == "" {
		return cache.NewMemory(cache.WithTTL(cfg.ViewCacheTTL)), func() {}, nil
	}

	client, err := platformredis.New(cfg.Redis())
	if err != nil {
		return nil, nil, err
	}
	log.Info("using redis view cache")
	redisCache := cache.NewRedis(client.Client, cache.WithRedisTTL(cfg.ViewCacheTTL))
	return cache.NewResilient(redisCache, log), func() { _ = client.Close() }, nil
}
