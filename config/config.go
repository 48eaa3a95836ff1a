package config

import (
	"log"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	TripsCSVPath string
	CSVDelimiter rune
	OutputDir    string

	ChartWidthIn   float64
	ChartHeightIn  float64
	MaxConcurrency int

	ExportCSV  bool
	ExportXLSX bool

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	MaxRetries       int

	LogLevel string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	return &Config{
		TripsCSVPath: getEnv("TRIPS_CSV_PATH", "./data/trips.csv"),
		CSVDelimiter: getEnvRune("CSV_DELIMITER", ','),
		OutputDir:    getEnv("OUTPUT_DIR", "./output"),

		ChartWidthIn:   getEnvFloat("CHART_WIDTH_IN", 10),
		ChartHeightIn:  getEnvFloat("CHART_HEIGHT_IN", 6),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),

		ExportCSV:  getEnvBool("EXPORT_CSV", true),
		ExportXLSX: getEnvBool("EXPORT_XLSX", true),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "eda"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "eda123"),
		PostgresDB:       getEnv("POSTGRES_DB", "bixi_eda"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil && f > 0 {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvRune accepts exactly one character; "\t" selects a tab.
func getEnvRune(key string, fallback rune) rune {
	val := os.Getenv(key)
	if val == `\t` {
		return '\t'
	}
	if utf8.RuneCountInString(val) == 1 {
		r, _ := utf8.DecodeRuneInString(val)
		return r
	}
	return fallback
}
