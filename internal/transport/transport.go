// Package transport defines the interface for the bot's inbound surfaces.
//
// Each transport (Discord gateway, HTTP API, gRPC health) is constructed with
// the collaborators it needs and then started with Listen. The main process
// runs every enabled transport side by side and stops them together.
package transport

import (
	"context"
)

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "discord", "http", "grpc").
	Name() string

	// Listen starts accepting events. It blocks until the context is cancelled.
	Listen(ctx context.Context) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
