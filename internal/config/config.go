package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	Database   Database   `mapstructure:"database" yaml:"database"`
	Translator Translator `mapstructure:"translator" yaml:"translator"`
	OCR        OCR        `mapstructure:"ocr" yaml:"ocr"`
	WS         WS         `mapstructure:"ws" yaml:"ws"`
}

// Database selects and configures the session store backend.
type Database struct {
	// Driver is "sqlite" or "memory".
	Driver string `mapstructure:"driver" yaml:"driver"`
	Path   string `mapstructure:"path" yaml:"path"`
}

// Translator configures the translation backend and its cache.
type Translator struct {
	BaseURL      string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey       string        `mapstructure:"api_key" yaml:"api_key"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	ContextDepth int           `mapstructure:"context_depth" yaml:"context_depth"`
	Cache        Cache         `mapstructure:"cache" yaml:"cache"`
}

// Cache configures translation result caching.
type Cache struct {
	// Kind is "memory", "redis" or "none".
	Kind      string        `mapstructure:"kind" yaml:"kind"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl"`
	RedisAddr string        `mapstructure:"redis_addr" yaml:"redis_addr"`
}

// OCR configures the text extraction backend.
type OCR struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// WS holds per-connection WebSocket limits.
type WS struct {
	// MessageRateLimit caps send-message frames per connection per minute.
	// Zero disables the limit.
	MessageRateLimit int `mapstructure:"message_rate_limit" yaml:"message_rate_limit"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		Database: Database{
			Driver: "sqlite",
			Path:   "lingobridge.db",
		},
		Translator: Translator{
			BaseURL:      "https://engine.lingo.dev",
			Timeout:      5 * time.Second,
			ContextDepth: 10,
			Cache: Cache{
				Kind: "memory",
				TTL:  time.Hour,
			},
		},
		OCR: OCR{
			Timeout: 15 * time.Second,
		},
		WS: WS{
			MessageRateLimit: 120,
		},
	}
}
