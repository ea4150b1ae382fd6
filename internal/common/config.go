package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
	Crawler     CrawlerConfig `toml:"crawler"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host" validate:"required"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=debug info warn error"` // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`                                      // "json" or "text"
	Output     []string `toml:"output"`                                      // "stdout", "file"
	TimeFormat string   `toml:"time_format"`                                 // Time format for logs (default: "15:04:05")
}

// CrawlerConfig contains crawl behavior configuration.
// Defaults match the service's published limits; override with care,
// the politeness delay and per-page link cap keep crawls neighborly.
type CrawlerConfig struct {
	UserAgent       string        `toml:"user_agent"`                            // User agent string sent with every request
	MaxPages        int           `toml:"max_pages" validate:"gt=0"`             // Maximum URLs discovered per crawl (seed included)
	MaxLinksPerPage int           `toml:"max_links_per_page" validate:"gt=0"`    // Accepted links harvested per page during discovery
	RequestTimeout  time.Duration `toml:"request_timeout" validate:"gt=0"`       // Per-attempt HTTP timeout
	RetryAttempts   int           `toml:"retry_attempts" validate:"gte=0"`       // Fetch attempts per page crawl, minimum 1 (discovery uses its own bound)
	PageDelay       time.Duration `toml:"page_delay"`                            // Delay between consecutive page crawls
	MaxBodySize     int           `toml:"max_body_size" validate:"gt=0"`         // Maximum response body size in bytes
	MaxContentChars int           `toml:"max_content_chars" validate:"gt=0"`     // Extracted content cap per page
	DeniedHosts     []string      `toml:"denied_hosts"`                          // Hostname substrings refused at seed validation
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in lustro.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Crawler: CrawlerConfig{
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			MaxPages:        50,
			MaxLinksPerPage: 10,
			RequestTimeout:  15 * time.Second,
			RetryAttempts:   3,
			PageDelay:       1 * time.Second,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			MaxContentChars: 15000,
			DeniedHosts:     []string{"google", "facebook", "twitter"},
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env -> CLI. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// Apply environment variables (overrides all file configs)
	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against field constraints
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Environment configuration (highest priority: LUSTRO_ENV, fallback: GO_ENV)
	if env := os.Getenv("LUSTRO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("LUSTRO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("LUSTRO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("LUSTRO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("LUSTRO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("LUSTRO_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("LUSTRO_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			trimmed := strings.TrimSpace(o)
			if trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Crawler configuration
	if userAgent := os.Getenv("LUSTRO_CRAWLER_USER_AGENT"); userAgent != "" {
		config.Crawler.UserAgent = userAgent
	}
	if maxPages := os.Getenv("LUSTRO_CRAWLER_MAX_PAGES"); maxPages != "" {
		if mp, err := strconv.Atoi(maxPages); err == nil {
			config.Crawler.MaxPages = mp
		}
	}
	if maxLinks := os.Getenv("LUSTRO_CRAWLER_MAX_LINKS_PER_PAGE"); maxLinks != "" {
		if ml, err := strconv.Atoi(maxLinks); err == nil {
			config.Crawler.MaxLinksPerPage = ml
		}
	}
	if requestTimeout := os.Getenv("LUSTRO_CRAWLER_REQUEST_TIMEOUT"); requestTimeout != "" {
		if rt, err := time.ParseDuration(requestTimeout); err == nil {
			config.Crawler.RequestTimeout = rt
		}
	}
	if retryAttempts := os.Getenv("LUSTRO_CRAWLER_RETRY_ATTEMPTS"); retryAttempts != "" {
		if ra, err := strconv.Atoi(retryAttempts); err == nil {
			config.Crawler.RetryAttempts = ra
		}
	}
	if pageDelay := os.Getenv("LUSTRO_CRAWLER_PAGE_DELAY"); pageDelay != "" {
		if pd, err := time.ParseDuration(pageDelay); err == nil {
			config.Crawler.PageDelay = pd
		}
	}
	if maxBodySize := os.Getenv("LUSTRO_CRAWLER_MAX_BODY_SIZE"); maxBodySize != "" {
		if mbs, err := strconv.Atoi(maxBodySize); err == nil {
			config.Crawler.MaxBodySize = mbs
		}
	}
	if deniedHosts := os.Getenv("LUSTRO_CRAWLER_DENIED_HOSTS"); deniedHosts != "" {
		hosts := []string{}
		for _, h := range strings.Split(deniedHosts, ",") {
			trimmed := strings.TrimSpace(h)
			if trimmed != "" {
				hosts = append(hosts, trimmed)
			}
		}
		if len(hosts) > 0 {
			config.Crawler.DeniedHosts = hosts
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// AllowTestURLs returns true if test URLs (localhost, 127.0.0.1, etc.) are allowed.
// Test URLs are only allowed in development mode.
func (c *Config) AllowTestURLs() bool {
	return !c.IsProduction()
}
