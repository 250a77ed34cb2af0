// Package web serves the status page, the reaction-role data dump, and the
// Prometheus metrics endpoint.
package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/darkSectorHT83/Darky-Bot/internal/storage"
)

// Server is the bot's small status HTTP server.
type Server struct {
	registry *storage.Registry
	version  string
	srv      *http.Server
}

// New builds a Server listening on addr.
func New(addr, version string, registry *storage.Registry) *Server {
	s := &Server{registry: registry, version: version}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/data", s.handleData)
	mux.Handle("/metrics", promhttp.Handler())

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start listens and serves until Close. The returned channel yields the
// serve error so startup bind failures surface in main.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Status server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Close shuts the server down.
func (s *Server) Close() error {
	return s.srv.Close()
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	fmt.Fprintf(w, "Darky Bot %s running\n", s.version)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.registry.Snapshot()); err != nil {
		slog.Warn("Failed to encode registry dump", "error", err)
	}
}
