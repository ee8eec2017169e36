package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	SourceBaseURL string

	MaxPages       int
	PageDelayMs    int
	MaxConcurrency int
	DetailDelayMs  int
	RequestRPS     float64
	MaxRetries     int

	CSVOutputPath string
	DryRun        bool
	LogDebug      bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "garage"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "garage123"),
		PostgresDB:       getEnv("POSTGRES_DB", "garage_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		SourceBaseURL: getEnv("SOURCE_BASE_URL", "https://www.motoscout24.ch"),

		MaxPages:       getEnvInt("MAX_PAGES", 30),
		PageDelayMs:    getEnvInt("PAGE_DELAY_MS", 1500),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		DetailDelayMs:  getEnvInt("DETAIL_DELAY_MS", 2000),
		RequestRPS:     getEnvFloat("REQUEST_RPS", 0.5),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/raw_extractions.csv"),
		DryRun:        getEnvBool("DRY_RUN", false),
		LogDebug:      getEnvBool("LOG_DEBUG", false),
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
		if err == nil {
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
