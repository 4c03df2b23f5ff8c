package commands

import (
	"fmt"

	"github.com/docscan/form-renamer/internal/batch"
	"github.com/docscan/form-renamer/internal/config"
	"github.com/docscan/form-renamer/internal/observability"
	"github.com/docscan/form-renamer/internal/pdf"
	"github.com/docscan/form-renamer/internal/rename"
	"github.com/docscan/form-renamer/internal/vision"
)

// pipeline bundles the wired collaborators a command needs.
type pipeline struct {
	cfg        *config.Config
	logger     *observability.Logger
	files      *rename.Manager
	splitter   *pdf.Splitter
	rasterizer *pdf.Rasterizer
	extractor  *vision.Extractor
	runner     *batch.Orchestrator
}

// loadConfig reads the layered configuration and applies CLI-level overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.Log.Level = "debug"
	}

	return cfg, nil
}

func newLogger(cfg *config.Config) *observability.Logger {
	return observability.NewLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "form-renamer",
	})
}

// buildPipeline wires the full processing pipeline from configuration.
func buildPipeline(cfg *config.Config) *pipeline {
	logger := newLogger(cfg)

	files := rename.NewManager(cfg.Dirs, cfg.Rename.Prefix, logger)
	splitter := pdf.NewSplitter(cfg.PDF.PagesPerForm, cfg.Dirs.Temp, logger)
	rasterizer := pdf.NewRasterizer(cfg.PDF.DPI, logger)
	client := vision.NewClient(cfg.Vision, logger)
	extractor := vision.NewExtractor(client, logger)

	runner := batch.NewOrchestrator(cfg, files, splitter, rasterizer, extractor, logger)

	return &pipeline{
		cfg:        cfg,
		logger:     logger,
		files:      files,
		splitter:   splitter,
		rasterizer: rasterizer,
		extractor:  extractor,
		runner:     runner,
	}
}
