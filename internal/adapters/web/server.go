package web

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Server serves the JSON API, the report page and /metrics over HTTP.
type Server struct {
	queries  AppQueries
	log      *slog.Logger
	metrics  *metrics
	listener net.Listener
	httpSrv  *http.Server
	port     int
	started  time.Time
	stopOnce sync.Once

	portFilePath string // .curricula/http.port
}

// NewServer creates an HTTP server for the API.
// The portFilePath is where the bound port is written for discovery.
func NewServer(queries AppQueries, log *slog.Logger, portFilePath string) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{
		queries:      queries,
		log:          log,
		metrics:      newMetrics(),
		started:      time.Now(),
		portFilePath: portFilePath,
	}
}

// DefaultPort computes a project-specific port: 19000 + (hash(abs_path) % 1000).
func DefaultPort(projectRoot string) int {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	// Use first 4 bytes as uint32
	n := uint32(h[0])<<24 | uint32(h[1])<<16 | uint32(h[2])<<8 | uint32(h[3])
	return 19000 + int(n%1000)
}

// Handler returns the routed API without binding a listener.
func (s *Server) Handler() http.Handler {
	m := s.metrics
	mux := http.NewServeMux()
	mux.Handle("GET /", http.FileServerFS(staticFS))
	mux.Handle("GET /metrics", s.withGauges(m.handler()))

	route := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, m.instrument(pattern, h))
	}
	route("GET /api/health", s.handleHealth)
	route("GET /api/subjects", s.handleSubjects)
	route("GET /api/subjects/{code}/codes", s.handleCodes)
	route("POST /api/subjects/{code}/normalize", s.handleNormalize)
	route("POST /api/subjects/{code}/report", s.handleReport)
	route("POST /api/subjects/{code}/export", s.handleExport)
	route("GET /api/subjects/{code}/jobs", s.handleJobs)
	route("GET /api/subjects/{code}/plans", s.handlePlans)
	route("POST /api/subjects/{code}/plans", s.handleSavePlan)
	route("GET /api/subjects/{code}/plans/{name}", s.handlePlan)
	route("DELETE /api/subjects/{code}/plans/{name}", s.handleDeletePlan)
	route("POST /api/subjects/{code}/coverage", s.handleCoverage)
	return mux
}

// Start begins listening on the preferred port. Writes the port to .curricula/http.port.
func (s *Server) Start(preferredPort int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", preferredPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.started = time.Now()

	s.httpSrv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Write port file for discovery
	if s.portFilePath != "" {
		if err := os.WriteFile(s.portFilePath, []byte(fmt.Sprintf("%d", s.port)), 0644); err != nil {
			s.log.Warn("write port file", "path", s.portFilePath, "err", err)
		}
	}

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("http serve", "err", err)
		}
	}()
	s.log.Info("http listening", "addr", ln.Addr().String())
	return nil
}

// Stop gracefully shuts down the HTTP server. Idempotent. The port file is
// removed only by the server that wrote it.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpSrv.Shutdown(ctx)
		if s.portFilePath != "" {
			os.Remove(s.portFilePath)
		}
	})
}

// Port returns the bound port number.
func (s *Server) Port() int {
	return s.port
}

// URL returns the base URL.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

// withGauges refreshes the per-subject registry gauges before a scrape.
func (s *Server) withGauges(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, info := range s.queries.Subjects() {
			for class, n := range info.Counts {
				s.metrics.subjectCodes.WithLabelValues(info.Code, class).Set(float64(n))
			}
		}
		next.ServeHTTP(w, r)
	})
}
