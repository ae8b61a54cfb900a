package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// Reloader pushes live-reload notifications to connected browsers.
//
//go:generate go run go.uber.org/mock/mockgen -source=reloader.go -destination=mocks/mock_reloader.go -package=mocks
type Reloader interface {
	// Reload notifies every connected client. It never blocks on slow clients.
	Reload(ctx context.Context, events []domain.ReloadEvent)
}
