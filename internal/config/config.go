package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Session  SessionConfig  `mapstructure:"session"`
	Sweep    SweepConfig    `mapstructure:"sweep"`
	Notifier NotifierConfig `mapstructure:"notifier"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the card store backend.
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite memory"`
	// URL is a postgres connection string or a sqlite file path (":memory:" allowed).
	// Ignored by the memory driver.
	URL          string `mapstructure:"url"            validate:"required_unless=Driver memory"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
}

// SessionConfig contains review session settings.
type SessionConfig struct {
	// ShuffleSeed seeds the full-shuffle random source. Zero seeds from the clock.
	ShuffleSeed int64 `mapstructure:"shuffle_seed"`
}

// SweepConfig controls the periodic due-card reminder sweep.
type SweepConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Interval      time.Duration `mapstructure:"interval"        validate:"gt=0"`
	PerOwnerLimit int           `mapstructure:"per_owner_limit" validate:"gt=0"`
}

// NotifierConfig configures reminder delivery.
type NotifierConfig struct {
	// WebhookURL receives a JSON POST per reminder. Empty disables the webhook.
	WebhookURL string        `mapstructure:"webhook_url" validate:"omitempty,url"`
	Timeout    time.Duration `mapstructure:"timeout"     validate:"gt=0"`
}
