package fs

import (
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// Hasher fingerprints file contents with XXHash and remembers the last
// fingerprint seen per path.
type Hasher struct {
	mu   sync.Mutex
	sums map[string]uint64
}

// NewHasher creates a new Hasher with an empty fingerprint table.
func NewHasher() *Hasher {
	return &Hasher{sums: make(map[string]uint64)}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}

// Changed records the current fingerprint of path and reports whether it
// differs from the previous one. Unknown paths, directories and removed files
// always count as changed.
func (h *Hasher) Changed(path string) bool {
	sum, err := h.ComputeFileHash(path)

	h.mu.Lock()
	defer h.mu.Unlock()

	if err != nil {
		delete(h.sums, path)
		return true
	}

	prev, known := h.sums[path]
	h.sums[path] = sum
	return !known || prev != sum
}

// Seed records the fingerprints of the given files without reporting changes.
func (h *Hasher) Seed(paths []string) {
	for _, p := range paths {
		sum, err := h.ComputeFileHash(p)
		if err != nil {
			continue
		}
		h.mu.Lock()
		h.sums[p] = sum
		h.mu.Unlock()
	}
}

// Forget drops the fingerprint of path.
func (h *Hasher) Forget(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sums, path)
}

func isNotExist(err error) bool {
	return errors.Is(err, iofs.ErrNotExist)
}
