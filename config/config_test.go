package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"TRIPS_CSV_PATH", "CSV_DELIMITER", "OUTPUT_DIR", "CHART_WIDTH_IN", "CHART_HEIGHT_IN",
		"MAX_CONCURRENCY", "EXPORT_CSV", "EXPORT_XLSX", "POSTGRES_ENABLED", "MAX_RETRIES", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "./data/trips.csv", cfg.TripsCSVPath)
	assert.Equal(t, ',', cfg.CSVDelimiter)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, 10.0, cfg.ChartWidthIn)
	assert.Equal(t, 6.0, cfg.ChartHeightIn)
	assert.Equal(t, 3, cfg.MaxConcurrency)
	assert.True(t, cfg.ExportCSV)
	assert.True(t, cfg.ExportXLSX)
	assert.False(t, cfg.PostgresEnabled)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TRIPS_CSV_PATH", "/data/od_2021.csv")
	t.Setenv("CSV_DELIMITER", ";")
	t.Setenv("CHART_WIDTH_IN", "12.5")
	t.Setenv("MAX_CONCURRENCY", "8")
	t.Setenv("EXPORT_XLSX", "false")
	t.Setenv("POSTGRES_ENABLED", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := FromEnv()
	assert.Equal(t, "/data/od_2021.csv", cfg.TripsCSVPath)
	assert.Equal(t, ';', cfg.CSVDelimiter)
	assert.Equal(t, 12.5, cfg.ChartWidthIn)
	assert.Equal(t, 8, cfg.MaxConcurrency)
	assert.False(t, cfg.ExportXLSX)
	assert.True(t, cfg.PostgresEnabled)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestFromEnvInvalidValuesFallBack(t *testing.T) {
	t.Setenv("CSV_DELIMITER", ";;")
	t.Setenv("CHART_HEIGHT_IN", "-2")
	t.Setenv("MAX_RETRIES", "many")
	t.Setenv("EXPORT_CSV", "maybe")

	cfg := FromEnv()
	assert.Equal(t, ',', cfg.CSVDelimiter)
	assert.Equal(t, 6.0, cfg.ChartHeightIn)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.True(t, cfg.ExportCSV)
}

func TestTabDelimiter(t *testing.T) {
	t.Setenv("CSV_DELIMITER", `\t`)
	assert.Equal(t, '\t', FromEnv().CSVDelimiter)
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5433", PostgresUser: "eda",
		PostgresPassword: "secret", PostgresDB: "bixi", PostgresSSLMode: "require",
	}
	assert.Equal(t, "host=db port=5433 user=eda password=secret dbname=bixi sslmode=require", cfg.DSN())
}
