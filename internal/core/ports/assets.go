package ports

import "go.trai.ch/kiln/internal/core/domain"

// AssetStore reads source assets and writes build outputs.
//
//go:generate go run go.uber.org/mock/mockgen -source=assets.go -destination=mocks/mock_assets.go -package=mocks
type AssetStore interface {
	// Read loads every file below base whose path relative to root matches
	// pattern. Asset paths are relative to base.
	Read(root, base, pattern string) ([]domain.Asset, error)

	// Write stores the asset below dir and returns the written file path.
	Write(dir string, asset domain.Asset) (string, error)

	// RemoveAll deletes dir recursively. A missing dir is not an error.
	RemoveAll(dir string) error
}
