// Package grpc provides a gRPC application that ignite can bind in place of
// the HTTP application.
//
// Every unary call passes through panic recovery, request logging and
// Prometheus metrics. Server reflection is registered so grpcurl works
// without proto files.
//
//	s := grpc.New()
//	s.Register(func(gs *ggrpc.Server) { pb.RegisterGreeterServer(gs, &greeter{}) })
//	err := server.Start(s, config.Port())
package grpc

import (
	"context"
	"net"
	"runtime/debug"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/shashiranjanraj/ignite/pkg/logger"
	"github.com/shashiranjanraj/ignite/pkg/metrics"
)

const maxMsgSize = 4 * 1024 * 1024

// Server is a gRPC application. It satisfies server.Listener.
type Server struct {
	srv *grpc.Server

	mu  sync.Mutex
	lis net.Listener
}

// New builds the underlying *grpc.Server with the standard interceptor chain.
// opts are appended after the defaults.
func New(opts ...grpc.ServerOption) *Server {
	base := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			recoveryInterceptor,
			loggingInterceptor,
			metricsInterceptor,
		),
		grpc.MaxRecvMsgSize(maxMsgSize),
		grpc.MaxSendMsgSize(maxMsgSize),
	}

	srv := grpc.NewServer(append(base, opts...)...)
	reflection.Register(srv)
	return &Server{srv: srv}
}

// Register lets the caller attach services. Must be called before Listen.
func (s *Server) Register(fn func(*grpc.Server)) *Server {
	fn(s.srv)
	return s
}

// Listen binds ":"+port, calls onListening, then serves until Stop.
func (s *Server) Listen(port string, onListening func()) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.lis = lis
	s.mu.Unlock()

	if onListening != nil {
		onListening()
	}

	if err := s.srv.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

// Addr is the bound address, or nil before Listen has bound.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lis == nil {
		return nil
	}
	return s.lis.Addr()
}

// Stop closes the listener and every open connection immediately.
func (s *Server) Stop() {
	s.srv.Stop()
}

func recoveryInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("grpc: panic recovered",
				"method", info.FullMethod,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

func loggingInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	logger.Info("grpc: request",
		"method", info.FullMethod,
		"duration_ms", time.Since(start).Milliseconds(),
		"code", status.Code(err).String(),
	)
	return resp, err
}

func metricsInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	metrics.GRPCHandled.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
	metrics.GRPCHandlingSeconds.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
	return resp, err
}
