package watcher

import (
	"github.com/fsnotify/fsnotify"
	"go.trai.ch/kiln/internal/core/ports"
)

// ConvertEvent exposes event conversion for tests.
func (w *Watcher) ConvertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	return w.convertEvent(event)
}
