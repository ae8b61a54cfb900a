package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// Executor defines the interface for executing tasks of the build graph.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the named task once and records its outcome on span. It
	// returns an error if the task fails; partial failures of a transform task
	// are joined into that error.
	Execute(ctx context.Context, task *domain.Task, span Span) error
}
