package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calendar-mcp/internal/logging"
)

// MCPEndpoint is the path of the streamable HTTP transport.
const MCPEndpoint = "/mcp"

// RequestIDHeader carries the request ID in and out of the HTTP transport.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext returns the ID assigned by the HTTP transport, or ""
// for stdio sessions.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// HTTPServer exposes an MCP server over streamable HTTP with health probes,
// per-client rate limiting and request metrics.
type HTTPServer struct {
	mcpServer  *mcpserver.MCPServer
	sc         *ServerContext
	health     *HealthChecker
	limiter    *ipRateLimiter
	logger     *slog.Logger

	mu         sync.Mutex
	httpServer *http.Server
	closed     bool
}

// NewHTTPServer creates an HTTP server for mcpServer. Rate limits come from
// the http section of the configuration.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, sc *ServerContext, health *HealthChecker) *HTTPServer {
	cfg := sc.Config().HTTP
	return &HTTPServer{
		mcpServer: mcpServer,
		sc:        sc,
		health:    health,
		limiter:   newIPRateLimiter(cfg.RateLimit, cfg.RateBurst),
		logger:    sc.Logger(),
	}
}

// Handler returns the routed and wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer,
		mcpserver.WithEndpointPath(MCPEndpoint),
	)
	mux.Handle(MCPEndpoint, s.rateLimit(streamable))

	if s.health != nil {
		s.health.RegisterHealthEndpoints(mux)
	}

	return s.requestID(s.instrument(mux))
}

// Start listens on addr until Shutdown is called. It returns
// http.ErrServerClosed after a graceful shutdown.
func (s *HTTPServer) Start(addr string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return http.ErrServerClosed
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.Info("starting streamable HTTP server",
		slog.String("addr", addr), slog.String("endpoint", MCPEndpoint))
	return srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server. A later Start returns
// http.ErrServerClosed.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.health != nil {
		s.health.SetReady(false)
	}
	s.mu.Lock()
	s.closed = true
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *HTTPServer) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func (s *HTTPServer) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !s.limiter.allow(ip) {
			s.sc.Metrics().RecordRateLimited(r.Context(), r.URL.Path)
			s.logger.Warn("rate limit exceeded",
				slog.String("client_ip", ip), logging.RequestID(RequestIDFromContext(r.Context())))
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		duration := time.Since(start)

		s.sc.Metrics().RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rec.status, duration)
		s.logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration(logging.KeyDuration, duration),
			logging.RequestID(RequestIDFromContext(r.Context())))
	})
}

// statusRecorder captures the response code. It forwards Flush so the
// streamable transport can push server-sent events.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
