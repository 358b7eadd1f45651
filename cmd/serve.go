package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/teemow/calendar-mcp/internal/instrumentation"
	"github.com/teemow/calendar-mcp/internal/logging"
	"github.com/teemow/calendar-mcp/internal/server"
	"github.com/teemow/calendar-mcp/internal/tools/calendar_tools"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// serveOptions holds the flags of the serve command.
type serveOptions struct {
	Transport     string
	HTTPAddr      string
	EnableMetrics bool
	MetricsAddr   string
	Debug         bool
}

func newServeCmd() *cobra.Command {
	opts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP (Model Context Protocol) server to expose Google Calendar
query tools to AI assistants.

Supported transports:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP on /mcp with health probes

Metrics are served on a separate address for the streamable-http transport.
METRICS_ENABLED, METRICS_ADDR and MCP_HTTP_ADDR override the defaults when
the matching flag is not given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyServeEnv(cmd, &opts)
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.Transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.HTTPAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&opts.EnableMetrics, "enable-metrics", true, "Serve Prometheus metrics on a dedicated port (streamable-http transport only)")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address")

	return cmd
}

// applyServeEnv fills flags that were not set explicitly from the
// environment.
func applyServeEnv(cmd *cobra.Command, opts *serveOptions) {
	if !cmd.Flags().Changed("enable-metrics") {
		if v, ok := os.LookupEnv("METRICS_ENABLED"); ok {
			if enabled, err := strconv.ParseBool(v); err == nil {
				opts.EnableMetrics = enabled
			}
		}
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			opts.MetricsAddr = addr
		}
	}
	if !cmd.Flags().Changed("http-addr") {
		if addr := os.Getenv("MCP_HTTP_ADDR"); addr != "" {
			opts.HTTPAddr = addr
		}
	}
}

func runServe(parent context.Context, opts serveOptions) error {
	if opts.Transport != transportStdio && opts.Transport != transportStreamableHTTP {
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.Transport)
	}
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closer, err := setupLogger(cfg, opts.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	sc, err := server.NewServerContext(ctx, cfg,
		server.WithLogger(logger),
		server.WithMetrics(provider.Metrics()),
		server.WithAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = sc.Shutdown() }()

	mcpSrv, err := newMCPServer(sc)
	if err != nil {
		return err
	}

	logger.Info("starting calendar-mcp",
		slog.String("version", version),
		slog.String("transport", opts.Transport),
		logging.Timezone(sc.Parser().Resolver().Default().String()))

	if opts.Transport == transportStdio {
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	}
	return runStreamableHTTPServer(ctx, sc, mcpSrv, provider, opts)
}

// newMCPServer creates the MCP server with every calendar tool registered.
func newMCPServer(sc *server.ServerContext) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer("calendar-mcp", version,
		mcpserver.WithToolCapabilities(true),
	)
	if err := calendar_tools.RegisterCalendarTools(mcpSrv, sc); err != nil {
		return nil, fmt.Errorf("failed to register Calendar tools: %w", err)
	}
	return mcpSrv, nil
}

// runStreamableHTTPServer serves MCP and, when enabled, metrics until ctx is
// cancelled or either listener fails.
func runStreamableHTTPServer(ctx context.Context, sc *server.ServerContext, mcpSrv *mcpserver.MCPServer, provider *instrumentation.Provider, opts serveOptions) error {
	logger := sc.Logger()
	health := server.NewHealthChecker(sc, version)
	httpServer := server.NewHTTPServer(mcpSrv, sc, health)

	var metricsServer *server.MetricsServer
	if opts.EnableMetrics && provider.Enabled() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.MetricsAddr,
			InstrumentationProvider: provider,
			Logger:                  logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.Start(opts.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		return nil
	})
	if metricsServer != nil {
		g.Go(func() error {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server stopped with error: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received, stopping HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()

		var errs []error
		if metricsServer != nil {
			errs = append(errs, metricsServer.Shutdown(shutdownCtx))
		}
		errs = append(errs, httpServer.Shutdown(shutdownCtx), sc.Shutdown())
		if err := errors.Join(errs...); err != nil {
			return fmt.Errorf("error shutting down: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("HTTP server gracefully stopped")
	return nil
}
