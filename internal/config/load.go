package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. SCRYWORDS_SERVER_PORT.
const EnvPrefix = "SCRYWORDS"

// keys lists every configuration key so that environment variables are
// honored even when no config file mentions the key.
var keys = []string{
	"server.port",
	"server.log_level",
	"server.shutdown_timeout",
	"database.driver",
	"database.url",
	"database.max_open_conns",
	"session.shuffle_seed",
	"sweep.enabled",
	"sweep.interval",
	"sweep.per_owner_limit",
	"notifier.webhook_url",
	"notifier.timeout",
}

// setDefaults registers the default value of every optional setting.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "scry-words.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("session.shuffle_seed", 0)
	v.SetDefault("sweep.enabled", true)
	v.SetDefault("sweep.interval", "24h")
	v.SetDefault("sweep.per_owner_limit", 3)
	v.SetDefault("notifier.webhook_url", "")
	v.SetDefault("notifier.timeout", "5s")
}

// Load reads configuration from defaults, an optional YAML file, and
// environment variables, in increasing order of precedence.
// An empty configFile looks for scry-words.yaml in the working directory;
// a missing file is not an error, a malformed one is.
// Returns a populated Config struct or an error if loading/validation fails.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("scry-words")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct-tag constraints on the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
