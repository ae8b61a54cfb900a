package ports

import "context"

// DevServer serves the output directory over HTTP and pushes live-reload
// notifications to connected browsers.
//
//go:generate go run go.uber.org/mock/mockgen -source=server.go -destination=mocks/mock_server.go -package=mocks
type DevServer interface {
	Reloader
	// Start binds addr and serves dir in the background. It returns the bound
	// address. Bind failures are returned immediately.
	Start(ctx context.Context, dir, addr string) (string, error)
	// Shutdown disconnects live-reload clients and stops the server gracefully.
	Shutdown(ctx context.Context) error
}
