package main

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
	"github.com/spf13/viper"

	"github.com/sagarc03/docroot"
	"github.com/sagarc03/docroot/config"
	"github.com/sagarc03/docroot/filesystem"
	dochttp "github.com/sagarc03/docroot/http"
	"github.com/sagarc03/docroot/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the docroot HTTP server over the configured document root.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8080, "HTTP server port (0 picks an ephemeral port)")
	serveCmd.Flags().String("addr", "", "bind address (default: all interfaces)")

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	var configFiles []string
	if cf, _ := cmd.Flags().GetString("config"); cf != "" {
		configFiles = append(configFiles, cf)
	}

	registry := docroot.NewMimeRegistry()

	// Config-file edits merge new mime types into the live registry; lookups
	// after the merge returns see them.
	cfg, err := config.LoadWatched(configFiles, cmd.Flags(), func(next *config.Config) {
		registry.Merge(next.Mime.Types)
		slog.Info("config reloaded", "mime_types", len(next.Mime.Types))
	})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	registry.Merge(cfg.Mime.Types)

	info, err := os.Stat(cfg.Root.Path)
	if err != nil {
		return fmt.Errorf("document root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("document root %s: not a directory", cfg.Root.Path)
	}

	root, err := os.OpenRoot(cfg.Root.Path)
	if err != nil {
		return fmt.Errorf("open document root: %w", err)
	}
	defer func() { _ = root.Close() }()

	service := docroot.NewService(filesystem.NewStore(root))

	m := metrics.New()

	handlerConfig := dochttp.HandlerConfig{
		CORS:      cfg.CORS,
		RateLimit: cfg.HTTP.RateLimit,
		Metrics:   m,
	}
	handler := dochttp.NewHandler(&handlerConfig, service, registry)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Addr, cfg.Server.Port)
	server := dochttp.NewServer(addr, handler.Router())
	if err := server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	slog.Info("serving", "addr", server.Addr(), "root", cfg.Root.Path)

	var metricsServer *dochttp.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())

		metricsServer = dochttp.NewServer(cfg.Metrics.Addr, mux)
		if err := metricsServer.Start(); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		slog.Info("metrics listening", "addr", metricsServer.Addr())
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Stop(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown error", "err", err)
		}
	}
	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
