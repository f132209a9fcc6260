// Package main is the entry point for the Moana Island Scene converter.
package main

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/philsawicki/moana-to-usd/internal/config"
	"github.com/philsawicki/moana-to-usd/internal/convert"
	"github.com/philsawicki/moana-to-usd/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if info, err := os.Stat(cfg.Source.Dir); err != nil || !info.IsDir() {
		logger.Log.Error("could not find the Moana Island Scene dataset",
			zap.String("source_dir", cfg.Source.Dir))
		os.Exit(1)
	}

	converter := convert.New(convert.Options{
		SourceDir:        cfg.Source.Dir,
		DestDir:          cfg.Dest.Dir,
		Format:           cfg.Dest.Format,
		LoadTextures:     cfg.Convert.LoadTextures,
		SkipSubInstances: cfg.Convert.SkipSubInstances,
		Workers:          cfg.Convert.Workers,
	}, logger.Log)

	if err := converter.Convert(); err != nil {
		for _, convErr := range multierr.Errors(err) {
			logger.Log.Error("conversion error", zap.Error(convErr))
		}
		os.Exit(1)
	}

	logger.Log.Info("conversion complete", zap.String("dest_dir", cfg.Dest.Dir))
}
