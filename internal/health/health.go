package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Version is reported by the health endpoints
const Version = "1.0.0"

// Server provides health check endpoints
type Server struct {
	server *http.Server

	mu      sync.RWMutex
	lastRun time.Time
	lastErr error
	runs    int
	fails   int
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	Runs      int       `json:"runs"`
	Failures  int       `json:"failures"`
}

// NewServer creates a new health check server
func NewServer(port int) *Server {
	mux := http.NewServeMux()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	healthServer := &Server{
		server: server,
	}

	mux.HandleFunc("/health", healthServer.healthHandler)
	mux.HandleFunc("/ready", healthServer.readyHandler)

	return healthServer
}

// Start starts the health check server
func (s *Server) Start() error {
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop stops the health check server
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Record stores the outcome of a ranking run
func (s *Server) Record(at time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastRun = at
	s.lastErr = err
	s.runs++
	if err != nil {
		s.fails++
	}
}

func (s *Server) snapshot(status string) HealthResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Version:   Version,
		LastRun:   s.lastRun,
		Runs:      s.runs,
		Failures:  s.fails,
	}
	if s.lastErr != nil {
		response.LastError = s.lastErr.Error()
	}
	return response
}

// healthHandler reports that the process is alive
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshot("healthy"))
}

// readyHandler fails while the most recent run failed
func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	response := s.snapshot("ready")
	code := http.StatusOK
	if response.LastError != "" {
		response.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, response)
}

func writeJSON(w http.ResponseWriter, code int, response HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response)
}
