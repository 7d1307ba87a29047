package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"bursar/internal/audit"
	"bursar/internal/institution"
	"bursar/internal/institution/cache"
	institutionmetrics "bursar/internal/institution/metrics"
	"bursar/internal/institution/service"
	capstore "bursar/internal/institution/store/capability"
	feestore "bursar/internal/institution/store/fee"
	inststore "bursar/internal/institution/store/institution"
	itemstore "bursar/internal/institution/store/item"
	memberstore "bursar/internal/institution/store/member"
	jwttoken "bursar/internal/jwt_token"
	"bursar/internal/platform/config"
	"bursar/internal/platform/httpserver"
	"bursar/internal/platform/kafka"
	"bursar/internal/platform/logger"
	"bursar/internal/platform/metrics"
	"bursar/internal/platform/postgres"
	"bursar/internal/platform/redis"
	"bursar/internal/platform/tracing"
	"bursar/pkg/platform/circuit"
	"bursar/pkg/platform/middleware/request"
	"bursar/pkg/platform/middleware/requesttime"
)

const (
	shutdownTimeout  = 10 * time.Second
	auditBufferSize  = 1024
	ledgerPartitions = 3
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		slog.Error("bursar exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(institutionmetrics.New(reg)),
		service.WithDepositPolicy(service.DepositPolicy(strings.ToLower(cfg.Ledger.DepositPolicy))),
		service.WithOneInstitutionPerOwner(cfg.Ledger.OneInstitutionPerOwner),
		service.WithCapabilityHashCost(cfg.Ledger.CapabilityHashCost),
	}

	stores, db, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		opts = append(opts, service.WithTx(newInstitutionPostgresTx(db, stores, cfg.Database.TxTimeout)))
	}

	institutionCache, closeCache, err := buildCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()
	opts = append(opts, service.WithCache(institutionCache))

	sink, closeSink, err := buildAuditSink(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSink()
	worker := audit.NewWorker(sink, auditBufferSize, log)
	opts = append(opts, service.WithAuditPublisher(worker))

	svc := institution.NewService(stores, opts...)
	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	router := chi.NewRouter()
	router.Use(request.RequestID)
	router.Use(request.Recovery(log))
	router.Use(request.Logger(log))
	router.Use(requesttime.Middleware)
	router.Use(metrics.New(reg).LatencyMiddleware)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	institution.NewHandler(svc, log, jwttoken.NewJWTServiceAdapter(jwtService)).Register(router)

	srv := httpserver.New(cfg.Addr, router)
	metricsSrv := httpserver.New(cfg.MetricsAddr, metrics.Handler(reg))

	// The audit worker outlives the HTTP servers so events from in-flight
	// requests are still delivered during shutdown.
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := worker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting bursar", "addr", cfg.Addr)
		return serve(srv)
	})
	g.Go(func() error {
		log.Info("serving metrics", "addr", cfg.MetricsAddr)
		return serve(metricsSrv)
	})
	g.Go(func() error {
		<-gctx.Done()
		defer stopWorker()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return errors.Join(srv.Shutdown(shutdownCtx), metricsSrv.Shutdown(shutdownCtx))
	})
	return g.Wait()
}

func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve %s: %w", srv.Addr, err)
	}
	return nil
}

// buildStores returns PostgreSQL stores when a database URL is configured
// and in-memory stores otherwise. db is nil in the in-memory case.
func buildStores(ctx context.Context, cfg config.Server, log *slog.Logger) (service.Stores, *sql.DB, error) {
	if cfg.Database.URL == "" {
		log.Info("using in-memory stores")
		return service.Stores{
			Institutions: inststore.NewInMemory(),
			Capabilities: capstore.NewInMemory(),
			Members:      memberstore.NewInMemory(),
			Fees:         feestore.NewInMemory(),
			Items:        itemstore.NewInMemory(),
		}, nil, nil
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return service.Stores{}, nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return service.Stores{}, nil, err
	}
	log.Info("using postgres stores")
	return service.Stores{
		Institutions: inststore.NewPostgres(db),
		Capabilities: capstore.NewPostgres(db),
		Members:      memberstore.NewPostgres(db),
		Fees:         feestore.NewPostgres(db),
		Items:        itemstore.NewPostgres(db),
	}, db, nil
}

func buildCache(ctx context.Context, cfg config.Server, log *slog.Logger) (service.InstitutionCache, func(), error) {
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.Info("using in-process institution cache")
		return cache.NewLocal(cfg.Redis.CacheTTL), func() {}, nil
	}
	log.Info("using redis institution cache")
	return cache.NewRedis(client.Client, cfg.Redis.CacheTTL), func() {
		if err := client.Close(); err != nil {
			log.Warn("redis close failed", "error", err)
		}
	}, nil
}

func buildAuditSink(ctx context.Context, cfg config.Server, log *slog.Logger) (audit.Sink, func(), error) {
	client, err := kafka.NewProducer(ctx, cfg.Kafka)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.Info("ledger events go to the log")
		return audit.NewLogPublisher(log), func() {}, nil
	}
	if err := kafka.EnsureTopic(ctx, client, cfg.Kafka.Topic, ledgerPartitions); err != nil {
		client.Close()
		return nil, nil, err
	}
	log.Info("ledger events go to kafka", "topic", cfg.Kafka.Topic)
	sink := audit.NewFallbackSink(
		audit.NewKafkaPublisher(client),
		audit.NewLogPublisher(log),
		circuit.New("kafka-audit"),
		log,
	)
	return sink, client.Close, nil
}
