package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBoycottListURL   = "https://www.ethicalconsumer.org/ethicalcampaigns/boycotts"
	DefaultPersonalListPath = "personal_boycott_list.txt"
	DefaultUserAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

type Config struct {
	Boycott  BoycottConfig
	Personal PersonalConfig
	Browser  BrowserConfig
	Server   ServerConfig
	Logging  LoggingConfig
}

type BoycottConfig struct {
	ListURL     string
	HTTPTimeout time.Duration
	ChromeTLS   bool
	UserAgent   string
}

type PersonalConfig struct {
	Path string
}

type BrowserConfig struct {
	Engine         string
	Headless       bool
	Stealth        bool
	Timeout        time.Duration
	Settle         time.Duration
	UserAgent      string
	Locale         string
	AcceptLanguage string
	ViewportWidth  int
	ViewportHeight int
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

func Load() (*Config, error) {
	userAgent := getEnvOrDefault("BROWSER_USER_AGENT", DefaultUserAgent)

	cfg := &Config{
		Boycott: BoycottConfig{
			ListURL:     getEnvOrDefault("BOYCOTT_LIST_URL", DefaultBoycottListURL),
			HTTPTimeout: getDurationOrDefault("BOYCOTT_HTTP_TIMEOUT", 30*time.Second),
			ChromeTLS:   getBoolOrDefault("BOYCOTT_CHROME_TLS", false),
			UserAgent:   userAgent,
		},
		Personal: PersonalConfig{
			Path: getEnvOrDefault("PERSONAL_LIST_PATH", DefaultPersonalListPath),
		},
		Browser: BrowserConfig{
			Engine:         strings.ToLower(getEnvOrDefault("BROWSER_ENGINE", "playwright")),
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Stealth:        getBoolOrDefault("BROWSER_STEALTH", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 60*time.Second),
			Settle:         getDurationOrDefault("BROWSER_SETTLE", 10*time.Second),
			UserAgent:      userAgent,
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "en-US"),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
		},
		Server: ServerConfig{
			Host:            getEnvOrDefault("SERVER_HOST", "127.0.0.1"),
			Port:            getIntOrDefault("SERVER_PORT", 8087),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 150*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
			File:   getEnvOrDefault("LOG_FILE", "boycott-detector.log"),
		},
	}

	return cfg, nil
}

// CheckBudget bounds one whole check: browser start, navigation and the settle wait.
func (c *Config) CheckBudget() time.Duration {
	return 2*c.Browser.Timeout + c.Browser.Settle
}

func (c *Config) Validate() error {
	if c.Boycott.ListURL == "" {
		return fmt.Errorf("BOYCOTT_LIST_URL is required")
	}

	if c.Personal.Path == "" {
		return fmt.Errorf("PERSONAL_LIST_PATH is required")
	}

	switch c.Browser.Engine {
	case "playwright", "rod":
	default:
		return fmt.Errorf("BROWSER_ENGINE must be playwright or rod, got %q", c.Browser.Engine)
	}

	if c.Browser.Settle < 0 {
		return fmt.Errorf("BROWSER_SETTLE cannot be negative")
	}

	if c.Browser.Timeout <= c.Browser.Settle {
		return fmt.Errorf("BROWSER_TIMEOUT must be greater than BROWSER_SETTLE")
	}

	if c.Server.WriteTimeout <= c.CheckBudget() {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be greater than %s (2*BROWSER_TIMEOUT + BROWSER_SETTLE)", c.CheckBudget())
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Logging.Format)
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
