package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/platform/cache"
	"github.com/prrathnayake/conveyancers-marketplace/platform/events"
	"github.com/prrathnayake/conveyancers-marketplace/platform/grpcx"
	"github.com/prrathnayake/conveyancers-marketplace/platform/httpx"
	"github.com/prrathnayake/conveyancers-marketplace/platform/idgen"
	"github.com/prrathnayake/conveyancers-marketplace/platform/logging"
	platformpg "github.com/prrathnayake/conveyancers-marketplace/platform/postgres"
	cacheadapter "github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/adapters/cache"
	httpadapter "github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/adapters/http"
	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/adapters/memory"
	metricsadapter "github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/adapters/metrics"
	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/adapters/postgres"
	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/application"
	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/ports"
	"google.golang.org/grpc"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	worker     *events.OutboxWorker
	cleanupFn  func()
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.ServiceID, cfg.LogLevel)
	slog.SetDefault(logger)

	ids, err := idgen.FromStrategy(cfg.IDStrategy, cfg.SnowflakeNode)
	if err != nil {
		return nil, err
	}

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	var readyChecks []func(context.Context) error

	var (
		outbox      ports.Outbox                = events.NewMemoryOutbox()
		idempotency ports.IdempotencyRepository = memory.NewIdempotencyStore()
	)
	if cfg.DatabaseURL != "" {
		db, err := platformpg.Connect(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns)
		if err != nil {
			cleanup()
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("gorm sql db: %w", err)
		}
		cleanups = append(cleanups, func() { _ = sqlDB.Close() })
		if err := postgres.Migrate(ctx, db); err != nil {
			cleanup()
			return nil, err
		}
		repos := postgres.NewRepositories(db)
		outbox = repos.Outbox
		idempotency = repos.Idempotency
		readyChecks = append(readyChecks, sqlDB.PingContext)
		logger.Info("postgres outbox and idempotency enabled", "module", "bootstrap", "layer", "runtime", "operation", "connect_postgres", "outcome", "success")
	}

	var insights ports.InsightsCache
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			cleanup()
			return nil, err
		}
		cleanups = append(cleanups, func() { _ = client.Close() })
		insights = cacheadapter.NewInsightsCache(client)
		readyChecks = append(readyChecks, func(ctx context.Context) error { return client.Ping(ctx).Err() })
	}

	var publisher events.Publisher = events.NewLoggingPublisher(logger)
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.EventTopics)
		if err != nil {
			cleanup()
			return nil, err
		}
		cleanups = append(cleanups, func() { _ = kafkaPub.Close() })
		publisher = kafkaPub
	}

	metrics := httpx.NewMetrics(cfg.ServiceID)
	clock := func() time.Time { return time.Now().UTC() }
	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:          cfg.ServiceID,
			IdempotencyTTL:       cfg.IdempotencyTTL,
			InsightsCacheTTL:     cfg.InsightsCacheTTL,
			MaxServiceFeeRate:    cfg.MaxServiceFeeRate,
			DefaultInvoiceStatus: cfg.DefaultInvoiceStatus,
		},
		Logger:      logger,
		Ledger:      memory.NewLedger(ids, clock),
		Invoices:    memory.NewInvoiceLedger(ids, clock),
		Loyalty:     memory.NewLoyaltyEngine(cfg.LoyaltySchedule),
		Idempotency: idempotency,
		Outbox:      outbox,
		Insights:    insights,
		Metrics:     metricsadapter.NewBusiness(metrics.Registerer()),
		Clock:       clock,
	})

	ready := func(ctx context.Context) error {
		for _, check := range readyChecks {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
	router := httpadapter.NewRouter(httpadapter.NewHandler(svc), httpadapter.RouterOptions{
		ServiceName: cfg.ServiceID,
		APIKey:      cfg.APIKey,
		Metrics:     metrics,
		Ready:       ready,
	})
	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.HTTPPort), Handler: router, ReadHeaderTimeout: 5 * time.Second}

	grpcServer := grpc.NewServer()
	grpcx.Register(grpcServer, grpcx.NewHealthServer(cfg.ServiceID, ready))
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		cleanup()
		return nil, err
	}

	worker := events.NewOutboxWorker(logger, outbox, publisher, cfg.OutboxPollInterval, cfg.OutboxBatchSize)
	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		worker:     worker,
		cleanupFn:  cleanup,
	}, nil
}

// RunAPI serves HTTP and gRPC and relays the outbox in-process until the
// context ends or a server fails.
func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer r.cleanupFn()
	defer r.grpcLis.Close()

	errCh := make(chan error, 3)
	go func() {
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- err
		}
	}()
	go func() {
		if err := r.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()
	r.logger.Info("payments service started", "module", "bootstrap", "layer", "runtime", "operation", "run_api", "outcome", "success",
		"http_port", r.cfg.HTTPPort, "grpc_port", r.cfg.GRPCPort)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "module", "bootstrap", "layer", "runtime", "operation", "run_api", "outcome", "failure", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	return runErr
}

// RunWorker only relays the outbox. It is useful when the outbox is durable
// and the API runs elsewhere.
func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer r.cleanupFn()
	defer r.grpcLis.Close()

	errCh := make(chan error, 1)
	go func() {
		if err := r.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}
