package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bixi-eda/charts"
	"bixi-eda/config"
	"bixi-eda/models"
	"bixi-eda/services"
	"bixi-eda/storage"
	"bixi-eda/table"
	"bixi-eda/utils"
)

func main() {
	cfg := config.Load()
	if len(os.Args) > 1 {
		cfg.TripsCSVPath = os.Args[1]
	}
	logger := utils.NewLoggerTo(os.Stdout, cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *utils.Logger) error {
	logger.Info("=== Bike-share trip EDA starting ===")
	logger.Info("Config: input %s | output %s | workers %d", cfg.TripsCSVPath, cfg.OutputDir, cfg.MaxConcurrency)

	raw, err := table.Load(cfg.TripsCSVPath, cfg.CSVDelimiter)
	if err != nil {
		return fmt.Errorf("load trips: %w", err)
	}
	logger.Info("Loaded %d trips with %d columns", raw.Nrow(), raw.Ncol())

	if err := services.ReportMissingValues(os.Stdout, raw); err != nil {
		return err
	}
	if err := services.ReportSchema(os.Stdout, raw); err != nil {
		return err
	}

	trips, stages, err := services.NewPipeline(logger).Prepare(raw)
	if err != nil {
		return fmt.Errorf("prepare trips: %w", err)
	}
	if err := services.ReportSchema(os.Stdout, trips); err != nil {
		return err
	}

	insightSvc := services.NewInsightService(logger)
	report, err := insightSvc.Generate(trips)
	if err != nil {
		return fmt.Errorf("generate insights: %w", err)
	}

	manifest := &models.RunManifest{
		Input:       cfg.TripsCSVPath,
		GeneratedAt: time.Now().UTC(),
		Stages:      stages,
	}
	for _, a := range report.Analyses {
		manifest.Analyses = append(manifest.Analyses, a.Name)
	}

	renderer := charts.NewRenderer(filepath.Join(cfg.OutputDir, "charts"),
		cfg.ChartWidthIn, cfg.ChartHeightIn, cfg.MaxConcurrency, logger)
	manifest.Charts, err = renderer.RenderAll(report)
	if err != nil {
		return fmt.Errorf("render charts: %w", err)
	}

	writers, err := openWriters(cfg, logger)
	if err != nil {
		return err
	}
	for _, w := range writers {
		if err := w.Write(report); err != nil {
			closeWriters(writers, logger)
			return err
		}
		switch w := w.(type) {
		case *storage.CSVWriter:
			manifest.Tables = w.Files()
			logger.Info("[storage] %d CSV tables written", len(manifest.Tables))
		case *storage.XLSXWriter:
			manifest.Workbook = w.Files()[0]
			logger.Info("[storage] Workbook written to %s", manifest.Workbook)
		case *storage.PostgresWriter:
			logger.Info("[storage] Results stored in PostgreSQL (table: eda_results)")
		}
	}
	closeWriters(writers, logger)

	manifestPath := filepath.Join(cfg.OutputDir, "manifest.yaml")
	if err := storage.WriteManifest(manifestPath, manifest); err != nil {
		return err
	}
	logger.Info("[storage] Manifest written to %s", manifestPath)

	insightSvc.Print(os.Stdout, report)
	fmt.Printf("  Done. Charts → %s | Manifest → %s\n\n", filepath.Join(cfg.OutputDir, "charts"), manifestPath)
	return nil
}

func openWriters(cfg *config.Config, logger *utils.Logger) ([]storage.ReportWriter, error) {
	var writers []storage.ReportWriter

	if cfg.ExportCSV {
		w, err := storage.NewCSVWriter(filepath.Join(cfg.OutputDir, "tables"))
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}
	if cfg.ExportXLSX {
		w, err := storage.NewXLSXWriter(filepath.Join(cfg.OutputDir, "analysis.xlsx"))
		if err != nil {
			closeWriters(writers, logger)
			return nil, err
		}
		writers = append(writers, w)
	}
	if cfg.PostgresEnabled {
		w, err := storage.NewPostgresWriter(cfg.DSN(), cfg.MaxRetries, logger)
		if err != nil {
			logger.Error("Check the POSTGRES_* settings or set POSTGRES_ENABLED=false")
			closeWriters(writers, logger)
			return nil, err
		}
		writers = append(writers, w)
	}
	return writers, nil
}

func closeWriters(writers []storage.ReportWriter, logger *utils.Logger) {
	for _, w := range writers {
		if err := w.Close(); err != nil {
			logger.Warn("[storage] close: %v", err)
		}
	}
}
