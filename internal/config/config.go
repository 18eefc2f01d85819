package config

import (
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/Luiggi-Git/carocha-functions/internal/credential"
	"github.com/Luiggi-Git/carocha-functions/internal/domain"
)

// Prefix is prepended to every variable. Each variable also falls back to its
// bare name, so Functions-style settings (AzureWebJobsStorage,
// PHOTOS_CONTAINER) work unchanged.
const Prefix = "photogate"

// envconfig upper-cases its fallback name, so the mixed-case Functions
// setting is read separately.
const functionsConnectionSetting = "AzureWebJobsStorage"

// Storage backends.
const (
	StorageAzure  = "azure"
	StorageMemory = "memory"
)

// Config holds all settings, loaded once at startup.
type Config struct {
	ConnectionString       string `envconfig:"AzureWebJobsStorage"`
	Container              string `envconfig:"PHOTOS_CONTAINER" default:"photos"`
	GrantWindowSeconds     int    `envconfig:"GRANT_WINDOW_SECONDS" default:"600"`
	ClockSkewBufferSeconds int    `envconfig:"CLOCK_SKEW_BUFFER_SECONDS" default:"60"`
	ListConcurrency        int    `envconfig:"LIST_CONCURRENCY" default:"16"`
	Storage                string `envconfig:"STORAGE" default:"azure"`
	LogLevel               string `envconfig:"LOG_LEVEL" default:"INFO"`

	// Credential is parsed from ConnectionString by Load.
	Credential credential.StoreCredential `ignored:"true"`
}

// Load reads the environment and validates the result. Any failure is a
// CONFIG_ERROR; callers should exit instead of serving.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, &domain.DomainError{
			Code:    domain.ErrCodeConfig,
			Message: "could not process environment",
			Err:     err,
		}
	}
	if cfg.ConnectionString == "" {
		cfg.ConnectionString, _ = os.LookupEnv(functionsConnectionSetting)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the numeric settings and parses the connection string.
func (c *Config) Validate() error {
	if c.GrantWindowSeconds <= 0 {
		return domain.NewConfigError("GRANT_WINDOW_SECONDS", "must be positive")
	}
	if c.ClockSkewBufferSeconds < 0 {
		return domain.NewConfigError("CLOCK_SKEW_BUFFER_SECONDS", "must not be negative")
	}
	if c.ListConcurrency <= 0 {
		return domain.NewConfigError("LIST_CONCURRENCY", "must be positive")
	}
	switch c.Storage {
	case StorageAzure, StorageMemory:
	default:
		return domain.NewConfigError("STORAGE", "must be azure or memory")
	}
	cred, err := credential.Parse(c.ConnectionString)
	if err != nil {
		return err
	}
	c.Credential = cred
	return nil
}

// GrantWindow is the validity of an issued grant.
func (c *Config) GrantWindow() time.Duration {
	return time.Duration(c.GrantWindowSeconds) * time.Second
}

// ClockSkewBuffer is how far grant start times are backdated.
func (c *Config) ClockSkewBuffer() time.Duration {
	return time.Duration(c.ClockSkewBufferSeconds) * time.Second
}
