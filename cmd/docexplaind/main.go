package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/doc-explainer/internal/app"
	"github.com/joseph-ayodele/doc-explainer/internal/common"
	"github.com/joseph-ayodele/doc-explainer/internal/metrics"
	"github.com/joseph-ayodele/doc-explainer/internal/proxy"
	"github.com/joseph-ayodele/doc-explainer/internal/server"
	"github.com/joseph-ayodele/doc-explainer/internal/session"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	if os.Getenv(proxy.APIKeyEnv) == "" {
		logger.Warn("api key not set; /explain-proxy answers 500 until it is", "env", proxy.APIKeyEnv)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	a := app.Build(*cfg, logger, m)
	relay, err := app.Relay(*cfg, logger, m)
	if err != nil {
		logger.Error("build relay", "error", err)
		os.Exit(1)
	}

	srv := server.New(server.Deps{
		Processor: a.Processor,
		Sessions:  session.NewStore(cfg.Session.Max, cfg.Session.TTL, m, logger),
		Relay:     relay,
		Metrics:   m,
		Logger:    logger,
	})
	httpSrv := &http.Server{Addr: cfg.Server.HTTPAddr, Handler: srv.Router()}
	grpcSrv, hs := server.NewGRPCServer()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http serving", "addr", cfg.Server.HTTPAddr, "model", cfg.LLM.Model, "proxy_url", cfg.Proxy.URL)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			return err
		}
		logger.Info("grpc health serving", "addr", cfg.Server.GRPCAddr)
		return grpcSrv.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		err := httpSrv.Shutdown(shutdownCtx)
		grpcSrv.GracefulStop()
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
