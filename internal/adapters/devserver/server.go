// Package devserver serves the output directory with live reload.
package devserver

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

//go:embed livereload.js
var clientScript []byte

var _ ports.DevServer = (*Server)(nil)

// Server implements ports.DevServer.
type Server struct {
	logger ports.Logger
	hub    *hub

	mu  sync.Mutex
	srv *http.Server
}

// NewServer creates a Server. Reload works before Start and notifies nobody.
func NewServer(logger ports.Logger) *Server {
	return &Server{logger: logger, hub: newHub(logger)}
}

// Handler returns the HTTP handler serving dir.
func (s *Server) Handler(dir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(domain.LiveReloadPath, s.hub.serveWS)
	mux.Handle(domain.LiveReloadScriptPath, gzhttp.GzipHandler(noCache(http.HandlerFunc(serveClientScript))))
	mux.Handle("/", gzhttp.GzipHandler(noCache(staticHandler{dir: http.Dir(dir)})))
	return mux
}

// Start binds addr and serves dir until Shutdown.
func (s *Server) Start(ctx context.Context, dir, addr string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return "", domain.ErrServerRunning
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrServerBindFailed.Error()), "addr", addr)
	}

	srv := &http.Server{
		Handler:           s.Handler(dir),
		ReadHeaderTimeout: time.Second,
		IdleTimeout:       time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
	s.srv = srv

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(zerr.Wrap(err, "dev server stopped"))
		}
	}()

	return ln.Addr().String(), nil
}

// Shutdown disconnects live-reload clients and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	// Hijacked connections are not tracked by http.Server.
	s.hub.closeAll()
	return srv.Shutdown(ctx)
}

// Reload pushes one message per batch to every connected client. A full page
// reload supersedes stylesheet swaps in the same batch.
func (s *Server) Reload(_ context.Context, events []domain.ReloadEvent) {
	if len(events) == 0 {
		return
	}
	payload, err := json.Marshal(collapse(events))
	if err != nil {
		s.logger.Error(zerr.Wrap(err, "failed to encode reload event"))
		return
	}
	s.hub.broadcast(payload)
}

// Clients returns the number of connected live-reload clients.
func (s *Server) Clients() int {
	return s.hub.count()
}

// message is the live-reload wire format. Paths lists every stylesheet a
// client should swap.
type message struct {
	Type  domain.ReloadKind `json:"type"`
	Paths []string          `json:"paths,omitempty"`
}

func collapse(events []domain.ReloadEvent) message {
	msg := message{Type: domain.ReloadCSS}
	seen := make(map[string]bool)
	for _, e := range events {
		if e.Kind == domain.ReloadPage {
			return message{Type: domain.ReloadPage}
		}
		if !seen[e.Path] {
			seen[e.Path] = true
			msg.Paths = append(msg.Paths, e.Path)
		}
	}
	return msg
}

func serveClientScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	_, _ = w.Write(clientScript)
}
