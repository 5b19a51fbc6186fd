package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/ogurasousui/hr-records/internal/platform/config"
)

const readHeaderTimeout = 10 * time.Second

// Server は HTTP API と gRPC ヘルスチェックサーバーのライフサイクルを管理します。
type Server struct {
	httpAddr        string
	grpcAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
	grpcServer      *grpc.Server
	health          *health.Server
	logger          zerolog.Logger
}

// New は設定に従ってサーバーを構築します。grpc_listen_addr が空の場合 gRPC は起動しません。
func New(cfg config.ServerConfig, handler http.Handler, logger zerolog.Logger, opts ...grpc.ServerOption) *Server {
	grpcServer := grpc.NewServer(opts...)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return &Server{
		httpAddr:        cfg.ListenAddr,
		grpcAddr:        cfg.GRPCListenAddr,
		shutdownTimeout: cfg.ShutdownTimeout,
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger.With().Str("component", "server").Logger(),
	}
}

// Run は待ち受けを開始し、コンテキストがキャンセルされると停止します。
func (s *Server) Run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", s.httpAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpAddr, err)
	}

	var grpcLis net.Listener
	if s.grpcAddr != "" {
		grpcLis, err = net.Listen("tcp", s.grpcAddr)
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("listen on %s: %w", s.grpcAddr, err)
		}
	}

	return s.Serve(ctx, httpLis, grpcLis)
}

// Serve は与えられたリスナーでサーバーを起動します。grpcLis は nil でも構いません。
// コンテキストのキャンセル後、ヘルスチェックを NOT_SERVING にしてから順に停止します。
func (s *Server) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		s.logger.Info().Str("addr", httpLis.Addr().String()).Msg("HTTP server listening")
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP: %w", err)
		}
		return nil
	})

	if grpcLis != nil {
		s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		group.Go(func() error {
			s.logger.Info().Str("addr", grpcLis.Addr().String()).Msg("gRPC health server listening")
			if err := s.grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("serve gRPC: %w", err)
			}
			return nil
		})
	}

	group.Go(func() error {
		<-gctx.Done()
		s.logger.Info().Msg("shutting down")
		s.health.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		err := s.httpServer.Shutdown(shutdownCtx)
		s.stopGRPC(shutdownCtx)
		if err != nil {
			return fmt.Errorf("shutdown HTTP: %w", err)
		}
		return nil
	})

	return group.Wait()
}

// stopGRPC は GracefulStop を試み、期限を過ぎた場合は強制停止します。
func (s *Server) stopGRPC(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn().Msg("gRPC graceful stop timed out")
		s.grpcServer.Stop()
	}
}
