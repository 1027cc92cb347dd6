package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"igresolver/internal/api"
	"igresolver/internal/downloader"
	"igresolver/pkg/config"
	"igresolver/pkg/extractor"
	"igresolver/pkg/instagram"
	"igresolver/pkg/logger"
	"igresolver/pkg/resolver"
)

var listenAddr string

// serveCmd runs the HTTP resolver service.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP resolver service",
	Long: `Start the HTTP service exposing the resolver API:

  GET  /api/download        resolve one URL (add download=1 to save media locally)
  GET  /api/resolve         alias for /api/download
  GET  /api/thumbnail       resolve just the thumbnail URL
  POST /api/batch-download  resolve up to 10 URLs at once
  GET  /health              liveness probe`,
	Example: `  # Serve on the default port
  igresolver serve

  # Custom listen address and config file
  igresolver serve --listen :8080 --config ./igresolver.yaml`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if listenAddr != "" {
		cfg.Server.ListenAddr = listenAddr
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("igresolver starting")

	pipeline := resolver.NewPipeline(
		instagram.NewClient(&cfg.Instagram, log),
		extractor.New(log),
		cfg,
		log,
	)
	defer pipeline.Close()

	dl, err := downloader.New(&cfg.Downloads, log)
	if err != nil {
		return fmt.Errorf("failed to set up downloads: %w", err)
	}

	sweeper := downloader.NewSweeper(cfg.Downloads.Directory, cfg.Downloads.MaxAge, cfg.Downloads.SweepInterval, log)
	sweeper.Start()
	defer sweeper.Stop()

	server := api.NewServer(cfg, pipeline, dl, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}
