package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	DatabaseURL     string          `mapstructure:"database_url"`
	Storage         string          `mapstructure:"storage"`
	ServerPort      string          `mapstructure:"server_port"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig      `mapstructure:"cors"`
	Log             LogConfig       `mapstructure:"log"`
	Reporting       ReportingConfig `mapstructure:"reporting"`
	Email           EmailConfig     `mapstructure:"email"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

type ReportingConfig struct {
	Timezone string `mapstructure:"timezone"`
}

type EmailConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	From     string        `mapstructure:"from"`
	SMTPHost string        `mapstructure:"smtp_host"`
	SMTPPort int           `mapstructure:"smtp_port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"` // per message, dial to QUIT
}

// Load reads config.yaml from the current directory or ./config (or the
// explicit path when non-empty), applies KIOSK_* environment overrides and
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("KIOSK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage", StoragePostgres)
	v.SetDefault("database_url", "")
	v.SetDefault("server_port", "3001")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173", "http://localhost:3000"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("reporting.timezone", "UTC")
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.from", "")
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.timeout", 10*time.Second)
}

func (c *Config) Validate() error {
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	switch c.Storage {
	case StoragePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("database_url must be set when storage is %q", StoragePostgres)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q (want %q or %q)", c.Storage, StoragePostgres, StorageMemory)
	}

	if c.ServerPort == "" {
		c.ServerPort = "3001"
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Email.Enabled {
		if strings.TrimSpace(c.Email.SMTPHost) == "" || strings.TrimSpace(c.Email.From) == "" {
			return fmt.Errorf("email.smtp_host and email.from must be set when email is enabled")
		}
	}
	return nil
}

// Location is the zone whose calendar day bounds the daily stats.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Reporting.Timezone)
	if tz == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid reporting.timezone %q: %w", tz, err)
	}
	return loc, nil
}
