package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	auditquery "dossier/internal/audit"
	jwttoken "dossier/internal/jwt_token"
	"dossier/internal/platform/config"
	"dossier/internal/platform/httpserver"
	"dossier/internal/platform/logger"
	"dossier/internal/platform/metrics"
	"dossier/internal/platform/postgres"
	redisclient "dossier/internal/platform/redis"
	"dossier/internal/records/service"
	"dossier/internal/records/store"
	"dossier/internal/timeline"
	httptransport "dossier/internal/transport/http"
	auditcore "dossier/pkg/platform/audit"
	"dossier/pkg/platform/audit/observer"
	"dossier/pkg/platform/audit/session"
	auditmemory "dossier/pkg/platform/audit/store/memory"
	auditpostgres "dossier/pkg/platform/audit/store/postgres"
	"dossier/pkg/platform/audit/writer"
	"dossier/pkg/platform/circuit"
)

// auditStore is everything the pipeline and the query surface need from the
// audit persistence layer.
type auditStore interface {
	auditcore.SessionStore
	auditcore.ChangeStore
	auditquery.Store
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file; missing is fine")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var (
		audits    auditStore
		timelines timeline.Store
		backend   store.Backend
		hooks     []store.Hook
		ready     = map[string]func(context.Context) error{}
	)
	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer closeDB(db, log)
		ready["postgres"] = db.PingContext
		if cfg.Database.Migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				return err
			}
		}
		audits = auditpostgres.New(db)
		timelines = timeline.NewPostgres(db)
		backend = store.NewPostgresBackend(db)
		log.Info("using postgres stores")
	} else {
		memTimeline := timeline.NewInMemoryStore()
		audits = auditmemory.NewInMemoryStore()
		timelines = memTimeline
		backend = store.NewMemoryBackend()
		// Postgres cascades timeline rows itself; memory needs the hook.
		hooks = append(hooks, memTimeline)
		log.Info("using in-memory stores")
	}

	clock := auditcore.NewClock()
	registryOpts := []session.Option{
		session.WithClock(clock),
		session.WithMetrics(m),
		session.WithLogger(log),
		session.WithLoopbackOrigin(cfg.Audit.LoopbackOrigin),
	}
	rdb, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		ready["redis"] = rdb.Health
		registryOpts = append(registryOpts, session.WithCache(session.NewRedisCache(rdb.Client, cfg.Audit.SessionCacheTTL)))
		log.Info("latest-session cache enabled")
	}
	registry := session.New(audits, registryOpts...)

	writerOpts := []writer.Option{
		writer.WithClock(clock),
		writer.WithMetrics(m),
		writer.WithLogger(log),
		writer.WithTimeout(cfg.Audit.WriteTimeout),
	}
	if cfg.Audit.BreakerThreshold > 0 {
		writerOpts = append(writerOpts, writer.WithBreaker(circuit.New("audit-store",
			circuit.WithFailureThreshold(cfg.Audit.BreakerThreshold),
			circuit.WithCooldown(cfg.Audit.BreakerCooldown),
		)))
	}
	obs := observer.New(
		writer.New(registry, audits, writerOpts...),
		observer.WithLogger(log),
		observer.WithDenylist(cfg.Audit.Denylist...),
	)

	recorder := timeline.New(timelines,
		timeline.WithClock(clock),
		timeline.WithMetrics(m),
		timeline.WithLogger(log),
	)
	recordStore := store.New(backend, store.WithLogger(log), store.WithHooks(append(hooks, obs)...))
	records := service.New(recordStore, recorder, service.WithLogger(log))
	queries := auditquery.NewService(audits, records, recorder, auditquery.WithLogger(log))

	jwt := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer)
	router := httptransport.NewRouter(
		httptransport.RouterConfig{
			Logger:       log,
			JWTValidator: jwttoken.NewJWTServiceAdapter(jwt),
			AdminToken:   cfg.Server.AdminToken,
			Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			Ready:        ready,
		},
		httptransport.Handlers{
			Actors:   httptransport.NewActorHandler(records, jwt, log),
			Sessions: httptransport.NewSessionHandler(registry, log),
			Records:  httptransport.NewRecordsHandler(records, log),
			Audit:    httptransport.NewAuditHandler(queries, log),
		},
	)

	srv := httpserver.New(cfg.Server.Addr, router)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting dossier", "addr", cfg.Server.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func closeDB(db *sql.DB, log *slog.Logger) {
	if err := db.Close(); err != nil {
		log.Error("closing database", "error", err)
	}
}
