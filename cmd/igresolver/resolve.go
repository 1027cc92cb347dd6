package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"igresolver/pkg/config"
	"igresolver/pkg/extractor"
	"igresolver/pkg/instagram"
	"igresolver/pkg/logger"
	"igresolver/pkg/resolver"
)

var (
	resolveQuality string
	resolveFormat  string
)

// resolveCmd resolves a single URL and prints the result as JSON.
var resolveCmd = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Resolve one Instagram URL and print the result as JSON",
	Example: `  # Resolve a reel
  igresolver resolve https://www.instagram.com/reel/ABC123/

  # Request a specific quality
  igresolver resolve https://www.instagram.com/p/XYZ789/ --quality hd`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveQuality, "quality", "highest", "media quality (highest, hd, lowest)")
	resolveCmd.Flags().StringVar(&resolveFormat, "format", "original", "media format (mp4, mp3, original)")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	// Keep the terminal quiet unless asked otherwise
	cfg.Logging.Level = "error"
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	pipeline := resolver.NewPipeline(
		instagram.NewClient(&cfg.Instagram, log),
		extractor.New(log),
		cfg,
		log,
	)
	defer pipeline.Close()

	result := pipeline.Resolve(context.Background(), args[0], resolver.Options{
		Quality: resolveQuality,
		Format:  resolveFormat,
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}

	if !result.Success {
		os.Exit(1)
	}
	return nil
}
