package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/api/option"

	"github.com/teemow/calendar-mcp/internal/calendar"
	"github.com/teemow/calendar-mcp/internal/config"
	"github.com/teemow/calendar-mcp/internal/google"
	"github.com/teemow/calendar-mcp/internal/instrumentation"
	"github.com/teemow/calendar-mcp/internal/logging"
	"github.com/teemow/calendar-mcp/internal/query"
)

// CalendarFactory creates the calendar client on first use.
type CalendarFactory func(ctx context.Context, sc *ServerContext) (calendar.EventSource, error)

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithClock overrides the reference clock used to interpret relative queries.
func WithClock(clock func() time.Time) Option {
	return func(sc *ServerContext) { sc.clock = clock }
}

// WithLogger sets the logger used by the server and its clients.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) { sc.logger = logger }
}

// WithCalendarFactory replaces the Google-backed calendar factory.
func WithCalendarFactory(f CalendarFactory) Option {
	return func(sc *ServerContext) { sc.newCalendar = f }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(sc *ServerContext) { sc.metrics = m }
}

// WithAuditLogger sets the audit logger for tool invocations.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(sc *ServerContext) { sc.audit = al }
}

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Config
	parser *query.Parser
	clock  func() time.Time
	logger *slog.Logger

	initMu      sync.Mutex
	mu          sync.RWMutex
	calendar    calendar.EventSource
	newCalendar CalendarFactory
	metrics     *instrumentation.Metrics
	audit       *instrumentation.AuditLogger
	shutdown    bool
}

// NewServerContext creates a new server context. The calendar client is
// created lazily, so a server without credentials still starts and answers
// parse requests.
func NewServerContext(ctx context.Context, cfg *config.Config, opts ...Option) (*ServerContext, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:         shutdownCtx,
		cancel:      cancel,
		cfg:         cfg,
		clock:       time.Now,
		logger:      slog.Default(),
		newCalendar: googleCalendar,
	}
	for _, opt := range opts {
		opt(sc)
	}

	sc.parser = query.NewParser(
		query.WithDefaultTimeZone(cfg.Query.DefaultTimezone),
		query.WithDefaults(cfg.Query.DefaultDaysAhead, cfg.Query.DefaultMaxResults),
		query.WithLogger(sc.logger),
	)
	if sc.parser.Resolver().FellBack() {
		sc.logger.Warn("could not determine a default timezone, using UTC")
	}
	return sc, nil
}

// googleCalendar builds a Calendar API client from the configured credentials.
func googleCalendar(ctx context.Context, sc *ServerContext) (calendar.EventSource, error) {
	creds, err := google.Resolve(ctx, sc.cfg.Google)
	if err != nil {
		return nil, err
	}
	sc.logger.Info("using Google credentials", slog.String("kind", string(creds.Kind)))

	opts := calendar.Options{
		Config: sc.cfg.Calendar,
		Logger: logging.NewSlogAdapter(sc.logger),
	}
	if m := sc.Metrics(); m != nil {
		opts.Recorder = m
	}
	return calendar.NewClient(ctx, opts, option.WithTokenSource(creds.TokenSource))
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the loaded configuration.
func (sc *ServerContext) Config() *config.Config {
	return sc.cfg
}

// Parser returns the query parser.
func (sc *ServerContext) Parser() *query.Parser {
	return sc.parser
}

// Now returns the current reference instant.
func (sc *ServerContext) Now() time.Time {
	return sc.clock()
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// CalendarClient returns the calendar client, creating it on first use.
// A failed creation is retried on the next call.
func (sc *ServerContext) CalendarClient() (calendar.EventSource, error) {
	sc.mu.RLock()
	client := sc.calendar
	sc.mu.RUnlock()
	if client != nil {
		return client, nil
	}

	sc.initMu.Lock()
	defer sc.initMu.Unlock()

	sc.mu.RLock()
	client, factory := sc.calendar, sc.newCalendar
	sc.mu.RUnlock()
	if client != nil {
		return client, nil
	}
	if factory == nil {
		return nil, calendar.ErrNotConfigured
	}

	client, err := factory(sc.ctx, sc)
	if err != nil {
		sc.logger.Warn("failed to create calendar client", logging.Err(err))
		return nil, fmt.Errorf("%w: %w", calendar.ErrNotConfigured, err)
	}

	sc.mu.Lock()
	sc.calendar = client
	sc.mu.Unlock()
	return client, nil
}

// SetCalendarClient sets the calendar client (used for testing)
func (sc *ServerContext) SetCalendarClient(client calendar.EventSource) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.calendar = client
}

// CalendarConfigured reports whether a calendar client has been created.
func (sc *ServerContext) CalendarConfigured() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.calendar != nil
}

// Metrics returns the metrics recorder, nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// AuditLogger returns the audit logger, nil when auditing is off.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.audit
}

// SetAuditLogger sets the audit logger.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.audit = al
}

// IsShutdown returns whether the server is shutting down
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown gracefully shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
