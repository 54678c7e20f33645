package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Browser  BrowserConfig
	Scraper  ScraperConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

type RedisConfig struct {
	// Addr empty disables event publishing entirely.
	Addr     string
	Password string
	DB       int
	Channel  string
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
}

type ScraperConfig struct {
	MaxProducts int
	// Randomized pause bounds between detail-page fetches.
	PacingMin time.Duration
	PacingMax time.Duration
	// Randomized pause bounds between lazy-load scroll steps.
	ScrollPauseMin time.Duration
	ScrollPauseMax time.Duration
	ScrollSteps    int
	WaitTimeout    time.Duration
	// BatchTimeout bounds a whole run; 0 disables the guard.
	BatchTimeout time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvInt("PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "amazon_products"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Channel:  getEnv("REDIS_CHANNEL", "products.scraped"),
		},
		Browser: BrowserConfig{
			Headless:       getEnvBool("BROWSER_HEADLESS", true),
			Timeout:        getEnvDuration("BROWSER_TIMEOUT", 30*time.Second),
			UserAgent:      getEnv("BROWSER_USER_AGENT", defaultUserAgent),
			ViewportWidth:  getEnvInt("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getEnvInt("BROWSER_VIEWPORT_HEIGHT", 1080),
		},
		Scraper: ScraperConfig{
			MaxProducts:    getEnvInt("SCRAPER_MAX_PRODUCTS", 5),
			PacingMin:      getEnvDuration("SCRAPER_PACING_MIN", 3*time.Second),
			PacingMax:      getEnvDuration("SCRAPER_PACING_MAX", 5*time.Second),
			ScrollPauseMin: getEnvDuration("SCRAPER_SCROLL_PAUSE_MIN", 1*time.Second),
			ScrollPauseMax: getEnvDuration("SCRAPER_SCROLL_PAUSE_MAX", 2*time.Second),
			ScrollSteps:    getEnvInt("SCRAPER_SCROLL_STEPS", 3),
			WaitTimeout:    getEnvDuration("SCRAPER_WAIT_TIMEOUT", 15*time.Second),
			BatchTimeout:   getEnvDuration("SCRAPER_BATCH_TIMEOUT", 30*time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Scraper.MaxProducts < 1 {
		return fmt.Errorf("SCRAPER_MAX_PRODUCTS must be at least 1")
	}
	if c.Scraper.PacingMin > c.Scraper.PacingMax {
		return fmt.Errorf("SCRAPER_PACING_MIN cannot exceed SCRAPER_PACING_MAX")
	}
	if c.Scraper.ScrollPauseMin > c.Scraper.ScrollPauseMax {
		return fmt.Errorf("SCRAPER_SCROLL_PAUSE_MIN cannot exceed SCRAPER_SCROLL_PAUSE_MAX")
	}
	return nil
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
