package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mahd-Mehn/dao-voting/pkg/logger"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

type Config struct {
	HttpPort string
	GrpcPort string
}

const shutdownTimeout = 5 * time.Second

type App struct {
	httpServer   *http.Server
	httpListener net.Listener
	grpcServer   *grpc.Server
	grpcListener net.Listener
}

func New(cfg Config, httpHandler http.Handler, grpcServer *grpc.Server) (*App, error) {
	// HTTP Listener
	httpLis, err := net.Listen("tcp", ":"+cfg.HttpPort)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on http port %s: %w", cfg.HttpPort, err)
	}

	// gRPC Listener
	grpcLis, err := net.Listen("tcp", ":"+cfg.GrpcPort)
	if err != nil {
		_ = httpLis.Close()
		return nil, fmt.Errorf("failed to listen on grpc port %s: %w", cfg.GrpcPort, err)
	}

	return &App{
		httpServer:   &http.Server{Handler: httpHandler, ReadHeaderTimeout: 10 * time.Second},
		httpListener: httpLis,
		grpcServer:   grpcServer,
		grpcListener: grpcLis,
	}, nil
}

// HTTPAddr is the bound HTTP address; useful when the port was "0".
func (a *App) HTTPAddr() string { return a.httpListener.Addr().String() }

// GRPCAddr is the bound gRPC address.
func (a *App) GRPCAddr() string { return a.grpcListener.Addr().String() }

// Run 启动服务并阻塞，直到收到关闭信号
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.Serve(ctx)
}

// Serve starts both servers and blocks until ctx is done or one of them
// fails, then shuts both down.
func (a *App) Serve(ctx context.Context) error {
	errCh := make(chan error, 2)

	// 1. Start HTTP
	go func() {
		logger.Info("Starting HTTP Server", zap.String("addr", a.HTTPAddr()))
		if err := a.httpServer.Serve(a.httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// 2. Start gRPC
	go func() {
		logger.Info("Starting gRPC Server", zap.String("addr", a.GRPCAddr()))
		if err := a.grpcServer.Serve(a.grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	// 3. Wait (Blocking)
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("⚠️  Shutting down server...")
	case runErr = <-errCh:
		logger.Error("Server failure, shutting down", zap.Error(runErr))
	}

	// 4. Graceful Shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	a.grpcServer.GracefulStop()
	logger.Info("Server exited properly")
	return runErr
}
