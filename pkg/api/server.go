package api

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ServerConfig holds the server configuration. Fields can be filled from the
// environment with internal/config.ParseEnv.
type ServerConfig struct {
	Host           string        `env:"HEARTSD_HOST"`             // Host to bind to (default "localhost")
	Port           int           `env:"HEARTSD_PORT"`             // Port to listen on (default 8080)
	ReadTimeout    time.Duration `env:"HEARTSD_READ_TIMEOUT"`     // Read timeout (default 30s)
	WriteTimeout   time.Duration `env:"HEARTSD_WRITE_TIMEOUT"`    // Write timeout (default 30s)
	IdleTimeout    time.Duration `env:"HEARTSD_IDLE_TIMEOUT"`     // Idle timeout (default 60s)
	MaxFastWorkers int           `env:"HEARTSD_MAX_FAST_WORKERS"` // Max concurrent fast operations (default 100)
	MaxSlowWorkers int           `env:"HEARTSD_MAX_SLOW_WORKERS"` // Max concurrent slow operations (default 4)
	Seed           int64         `env:"HEARTSD_SEED"`             // Seed for session dice (0 = random)
}

// DefaultConfig returns a ServerConfig with sensible defaults.
func DefaultConfig() ServerConfig {
	return ServerConfig{
		Host:           "localhost",
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxFastWorkers: 100,
		MaxSlowWorkers: 4,
	}
}

// Server is the HTTP API server.
type Server struct {
	config   ServerConfig
	store    *SessionStore
	handlers *Handlers
	server   *http.Server
	pool     *WorkerPool
	version  string
}

// NewServer creates a new API server. The config seed must already be
// resolved; zero is used as is.
func NewServer(config ServerConfig, version string) *Server {
	pool := NewWorkerPool(PoolConfig{
		MaxFastWorkers: config.MaxFastWorkers,
		MaxSlowWorkers: config.MaxSlowWorkers,
	})
	store := NewSessionStore(config.Seed)

	return &Server{
		config:   config,
		store:    store,
		handlers: NewHandlersWithPool(store, version, pool),
		pool:     pool,
		version:  version,
	}
}

// Pool returns the worker pool for monitoring.
func (s *Server) Pool() *WorkerPool {
	return s.pool
}

// Sessions returns the session store.
func (s *Server) Sessions() *SessionStore {
	return s.store
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Flush passes through so SSE streams are not buffered.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack passes through for WebSocket upgrades.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// loggingMiddleware logs all requests.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// Routes returns the API handler with middleware applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handlers.Health)

	// Hot-seat sessions
	mux.HandleFunc("POST /api/games", s.handlers.CreateGame)
	mux.HandleFunc("GET /api/games/{id}", s.handlers.GetGame)
	mux.HandleFunc("DELETE /api/games/{id}", s.handlers.DeleteGame)
	mux.HandleFunc("POST /api/games/{id}/roll", s.handlers.RollGame)
	mux.HandleFunc("POST /api/games/{id}/swap", s.handlers.SwapGame)
	mux.HandleFunc("POST /api/games/{id}/play", s.handlers.PlayGame)
	mux.HandleFunc("GET /api/games/{id}/events", s.handlers.GameEvents)

	// Stateless engine calls
	mux.HandleFunc("GET /api/new-board", s.handlers.NewBoard)
	mux.HandleFunc("POST /api/legal-moves", s.handlers.LegalMoves)
	mux.HandleFunc("POST /api/apply", s.handlers.Apply)
	mux.HandleFunc("POST /api/game-over", s.handlers.GameOver)
	mux.HandleFunc("/api/ws", s.handlers.WebSocket)

	// Slow pool
	mux.HandleFunc("GET /api/dice/audit", s.handlers.DiceAudit)
	mux.HandleFunc("POST /api/simulate", s.handlers.Simulate)

	return corsMiddleware(loggingMiddleware(mux))
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	log.Printf("Starting heartsgammon API server v%s on %s", s.version, addr)
	log.Printf("Endpoints:")
	log.Printf("  POST /api/games                - New hot-seat session")
	log.Printf("  GET  /api/games/{id}           - Session snapshot")
	log.Printf("  POST /api/games/{id}/roll      - Roll the dice")
	log.Printf("  POST /api/games/{id}/swap      - Swap dice order")
	log.Printf("  POST /api/games/{id}/play      - Move a checker")
	log.Printf("  GET  /api/games/{id}/events    - Snapshot stream (SSE)")
	log.Printf("  POST /api/legal-moves          - Legal moves for a position")
	log.Printf("  POST /api/apply                - Apply one move")
	log.Printf("  POST /api/game-over            - Game over check")
	log.Printf("  GET  /api/dice/audit           - Dice fairness audit")
	log.Printf("  POST /api/simulate             - Random self-play")
	log.Printf("  WS   /api/ws                   - WebSocket engine calls")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// ListenAndServeWithGracefulShutdown starts the server and handles shutdown signals.
func (s *Server) ListenAndServeWithGracefulShutdown() error {
	errChan := make(chan error, 1)

	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		log.Printf("Received signal %v, shutting down...", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped gracefully")
	return nil
}
