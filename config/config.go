package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Config holds the configuration for the weatherstation server.
type Config struct {
	// Listen is the address the API server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// DatabasePath is the path to the sqlite database file.
	DatabasePath string `yaml:"database_path" mapstructure:"database_path"`
	// LogLevel controls the log verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// TokenTTL is the lifetime of tokens issued by the login endpoint.
	// Tokens issued by the plain token endpoint never expire.
	TokenTTL time.Duration `yaml:"token_ttl" mapstructure:"token_ttl"`
	// CORSOrigins is the list of origins allowed to call the API from a browser.
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	// Gzip enables gzip compression of responses.
	Gzip bool `yaml:"gzip" mapstructure:"gzip"`
}

// Load reads the configuration from the given file, falling back to a search
// in common locations. Environment variables with the WEATHERSTATION_ prefix
// override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("WEATHERSTATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.weatherstation")
		v.AddConfigPath("/etc/weatherstation")
	}

	if err := v.ReadInConfig(); err != nil {
		// Defaults and env vars are enough to run, a config file is optional.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		log.Debug("using config file", "file", v.ConfigFileUsed())
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:8000")
	v.SetDefault("database_path", "./data/weatherstation.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("token_ttl", 10*time.Hour)
	v.SetDefault("cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("gzip", true)
}

func validateConfig(c *Config) error {
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}
	return nil
}
