// Package grpc implements the gRPC transport for sylliba.
//
// The bot's work happens on the chat platform, so the gRPC surface carries
// only the standard grpc.health.v1 service. Its serving status mirrors the
// readiness reported by the health package, which lets orchestrators that
// prefer gRPC probes watch the bot without the HTTP port.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported alongside the overall status.
const ServiceName = "sylliba"

const defaultInterval = 5 * time.Second

// Readiness reports whether the bot can serve traffic.
type Readiness interface {
	Ready(ctx context.Context) error
}

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port      int
	readiness Readiness
	interval  time.Duration
	server    *grpc.Server
	health    *health.Server
	logger    *slog.Logger
}

// Option configures a Transport.
type Option func(*Transport)

// WithInterval sets how often readiness is re-evaluated.
func WithInterval(d time.Duration) Option {
	return func(t *Transport) { t.interval = d }
}

// New creates a new gRPC transport on the given port.
func New(port int, readiness Readiness, opts ...Option) *Transport {
	t := &Transport{
		port:      port,
		readiness: readiness,
		interval:  defaultInterval,
		health:    health.NewServer(),
		logger:    slog.With("component", "grpc"),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.server = grpc.NewServer()
	healthpb.RegisterHealthServer(t.server, t.health)
	reflection.Register(t.server)
	return t
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// Listen starts the gRPC server. It blocks until the context is cancelled.
func (t *Transport) Listen(ctx context.Context) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	t.logger.Info("grpc transport listening", "port", t.port)
	return t.Serve(ctx, lis)
}

// Serve runs the server on an existing listener.
func (t *Transport) Serve(ctx context.Context, lis net.Listener) error {
	t.update(ctx)
	go t.watch(ctx)

	go func() {
		<-ctx.Done()
		t.logger.Info("grpc transport shutting down")
		t.health.Shutdown()
		t.server.GracefulStop()
	}()

	return t.server.Serve(lis)
}

func (t *Transport) watch(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.update(ctx)
		}
	}
}

func (t *Transport) update(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if err := t.readiness.Ready(ctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	t.health.SetServingStatus("", status)
	t.health.SetServingStatus(ServiceName, status)
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	if t.server != nil {
		t.server.GracefulStop()
	}
	return nil
}
