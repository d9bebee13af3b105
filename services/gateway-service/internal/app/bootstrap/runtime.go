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

	"github.com/prrathnayake/conveyancers-marketplace/platform/grpcx"
	"github.com/prrathnayake/conveyancers-marketplace/platform/httpx"
	"github.com/prrathnayake/conveyancers-marketplace/platform/logging"
	httpadapter "github.com/prrathnayake/conveyancers-marketplace/services/gateway-service/internal/adapters/http"
	"github.com/prrathnayake/conveyancers-marketplace/services/gateway-service/internal/proxy"
	"google.golang.org/grpc"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
}

func NewRuntime(_ context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.ServiceID, cfg.LogLevel)
	slog.SetDefault(logger)

	mounts := []struct {
		name, mount, url string
	}{
		{"payments", "/payments", cfg.PaymentsURL},
		{"jobs", "/jobs", cfg.JobsURL},
		{"identity", "/profiles", cfg.IdentityURL},
	}
	routes := make([]httpadapter.Route, 0, len(mounts))
	upstreams := make([]*proxy.Upstream, 0, len(mounts))
	for _, m := range mounts {
		up, err := proxy.NewUpstream(proxy.UpstreamConfig{
			Name:    m.name,
			BaseURL: m.url,
			APIKey:  cfg.UpstreamAPIKey,
			Timeout: cfg.UpstreamTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		routes = append(routes, httpadapter.Route{Mount: m.mount, Upstream: up})
		upstreams = append(upstreams, up)
	}

	ready := func(ctx context.Context) error {
		for _, up := range upstreams {
			if err := up.Ping(ctx); err != nil {
				return err
			}
		}
		return nil
	}
	router := httpadapter.NewRouter(routes, httpadapter.RouterOptions{
		ServiceName: cfg.ServiceID,
		APIKey:      cfg.ClientAPIKey,
		Metrics:     httpx.NewMetrics(cfg.ServiceID),
		Ready:       ready,
	})
	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.HTTPPort), Handler: router, ReadHeaderTimeout: 5 * time.Second}

	grpcServer := grpc.NewServer()
	grpcx.Register(grpcServer, grpcx.NewHealthServer(cfg.ServiceID, ready))
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return nil, err
	}
	return &Runtime{cfg: cfg, logger: logger, httpServer: httpServer, grpcServer: grpcServer, grpcLis: lis}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer r.grpcLis.Close()

	errCh := make(chan error, 2)
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
	r.logger.Info("gateway started", "module", "bootstrap", "layer", "runtime", "operation", "run_api", "outcome", "success",
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
