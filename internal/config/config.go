package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/wireboard/internal/board"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format"`

	// AllowedOrigins lists browser origins allowed for CORS and websocket
	// upgrades. Empty allows any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins,omitempty"`
	// StaticDir, when set, is served at / (the browser client).
	StaticDir string `mapstructure:"static_dir" yaml:"static_dir,omitempty"`

	MaxMessageBytes int64 `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	ClientBuffer    int   `mapstructure:"client_buffer" yaml:"client_buffer"`
	// DrawRateLimit is draws per second allowed per connection; 0 disables.
	DrawRateLimit float64 `mapstructure:"draw_rate_limit" yaml:"draw_rate_limit"`
	DrawRateBurst int     `mapstructure:"draw_rate_burst" yaml:"draw_rate_burst"`

	MaxSegments int `mapstructure:"max_segments" yaml:"max_segments"`
	EvictBatch  int `mapstructure:"evict_batch" yaml:"evict_batch"`

	// TicketSecret signs room tickets; empty disables them.
	TicketSecret string        `mapstructure:"ticket_secret" yaml:"ticket_secret,omitempty"`
	TicketTTL    time.Duration `mapstructure:"ticket_ttl" yaml:"ticket_ttl"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",
		MaxMessageBytes:   64 << 10,
		ClientBuffer:      256,
		DrawRateBurst:     200,
		MaxSegments:       board.DefaultMaxSegments,
		EvictBatch:        board.DefaultEvictBatch,
		TicketTTL:         12 * time.Hour,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if len(other.AllowedOrigins) > 0 {
		c.AllowedOrigins = other.AllowedOrigins
	}
	if other.StaticDir != "" {
		c.StaticDir = other.StaticDir
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.ClientBuffer != 0 {
		c.ClientBuffer = other.ClientBuffer
	}
	if other.DrawRateLimit != 0 {
		c.DrawRateLimit = other.DrawRateLimit
	}
	if other.DrawRateBurst != 0 {
		c.DrawRateBurst = other.DrawRateBurst
	}
	if other.MaxSegments != 0 {
		c.MaxSegments = other.MaxSegments
	}
	if other.EvictBatch != 0 {
		c.EvictBatch = other.EvictBatch
	}
	if other.TicketSecret != "" {
		c.TicketSecret = other.TicketSecret
	}
	if other.TicketTTL != 0 {
		c.TicketTTL = other.TicketTTL
	}
}

// Validate checks values that would otherwise misbehave at runtime.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.MaxSegments <= 0 {
		return fmt.Errorf("max_segments must be positive, got %d", c.MaxSegments)
	}
	if c.EvictBatch <= 0 || c.EvictBatch > c.MaxSegments {
		return fmt.Errorf("evict_batch must be in [1, max_segments], got %d", c.EvictBatch)
	}
	if c.DrawRateLimit < 0 {
		return fmt.Errorf("draw_rate_limit must not be negative, got %v", c.DrawRateLimit)
	}
	if c.DrawRateLimit > 0 && c.DrawRateBurst <= 0 {
		return fmt.Errorf("draw_rate_burst must be positive when draw_rate_limit is set")
	}
	return nil
}
