package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/dennisonbertram/mcp-gmail/internal/config"
	"github.com/dennisonbertram/mcp-gmail/internal/google"
	"github.com/dennisonbertram/mcp-gmail/internal/instrumentation"
	"github.com/dennisonbertram/mcp-gmail/internal/logging"
	"github.com/dennisonbertram/mcp-gmail/internal/server"
	"github.com/dennisonbertram/mcp-gmail/internal/tools/gmail_tools"
)

// MetricsConfig holds configuration for the metrics server.
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server.
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090").
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server over stdio to provide
read-only Gmail tools for AI assistants.

The server uses the token stored by the auth command. Run 'mcp-gmail auth'
once before serving.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}
			loadMetricsEnvVars(cmd, &metricsConfig)
			return runServe(metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", false, "Expose Prometheus metrics on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// loadMetricsEnvVars loads metrics configuration from environment variables.
// Environment variables only apply when the flag was not explicitly set.
func loadMetricsEnvVars(cmd *cobra.Command, config *MetricsConfig) {
	if !cmd.Flags().Changed("metrics-enabled") {
		if os.Getenv("METRICS_ENABLED") == "true" {
			config.Enabled = true
		}
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			config.Addr = addr
		}
	}
}

func runServe(metricsConfig MetricsConfig) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	paths, err := config.DefaultPaths()
	if err != nil {
		return err
	}
	creds, err := config.NewResolver(paths).Resolve()
	if err != nil {
		return fmt.Errorf("resolving credentials: %w", err)
	}
	manager := google.NewManager(creds, paths)

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.Enabled = metricsConfig.Enabled
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			slog.Warn("instrumentation shutdown failed", "error", err)
		}
	}()

	var metricsServer *server.MetricsServer
	if metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics server failed", "error", err)
			}
		}()
	}

	serverContext := server.NewServerContext(shutdownCtx, manager, paths)
	if provider.Enabled() {
		manager.Metrics = provider.Metrics()
		serverContext.SetMetrics(provider.Metrics())
	}
	defer func() {
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Warn("metrics server shutdown failed", "error", err)
			}
		}
		serverContext.Shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer("mcp-gmail", version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := gmail_tools.RegisterGmailTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register Gmail tools: %w", err)
	}

	logger := logging.WithOperation(slog.Default(), "serve")
	logger.Info("starting MCP server over stdio", "version", version)

	return runStdioServer(mcpSrv)
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	if err := <-serverDone; err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
