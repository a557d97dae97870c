package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cryptellation/compliance/pkg/compliance"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables overriding configuration keys,
// e.g. COMPLIANCE_FETCH_TIMEOUT for fetch.timeout.
const EnvPrefix = "COMPLIANCE"

var (
	// ErrInvalidConfig is returned when a configuration value is out of range.
	ErrInvalidConfig = errors.New("invalid configuration")
)

type Repository struct {
	URL           string `mapstructure:"url"`
	DefaultBranch string `mapstructure:"default_branch"`
	Provider      string `mapstructure:"provider"`
}

type Product struct {
	ID         string     `mapstructure:"id"`
	Repository Repository `mapstructure:"repository"`
	// SBOM is the path of the product's CycloneDX or SPDX JSON export.
	SBOM string `mapstructure:"sbom"`
}

type GitHub struct {
	Token   string `mapstructure:"token"`
	BaseURL string `mapstructure:"base_url"`
}

type Fetch struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	CacheSize int           `mapstructure:"cache_size"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

type Database struct {
	// DSN selects the PostgreSQL dependency graph store. Empty keeps the
	// graph in memory.
	DSN string `mapstructure:"dsn"`
}

type Config struct {
	LogLevel          string                       `mapstructure:"log_level"`
	DistributionModel compliance.DistributionModel `mapstructure:"distribution_model"`
	GitHub            GitHub                       `mapstructure:"github"`
	Fetch             Fetch                        `mapstructure:"fetch"`
	Database          Database                     `mapstructure:"database"`
	// TablesPath overrides the embedded license tables.
	TablesPath string    `mapstructure:"tables_path"`
	Products   []Product `mapstructure:"products"`
}

// Product returns the configured product with the given ID.
func (c *Config) Product(id string) (Product, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("distribution_model", string(compliance.ModelProprietaryBinary))
	v.SetDefault("github.token", "")
	v.SetDefault("github.base_url", "")
	v.SetDefault("fetch.timeout", 10*time.Second)
	v.SetDefault("fetch.cache_size", 128)
	v.SetDefault("fetch.cache_ttl", 5*time.Minute)
	v.SetDefault("database.dsn", "")
	v.SetDefault("tables_path", "")
}

// Load reads the configuration file at configPath, if any, and applies
// environment overrides. GITHUB_TOKEN is accepted for github.token.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("github.token", EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if !c.DistributionModel.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, compliance.ErrUnknownDistributionModel, c.DistributionModel)
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("%w: fetch.timeout must not be negative", ErrInvalidConfig)
	}
	if c.Fetch.CacheSize < 0 {
		return fmt.Errorf("%w: fetch.cache_size must not be negative", ErrInvalidConfig)
	}

	seen := make(map[string]struct{}, len(c.Products))
	for i, p := range c.Products {
		if p.ID == "" {
			return fmt.Errorf("%w: products[%d] has no id", ErrInvalidConfig, i)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate product %q", ErrInvalidConfig, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}
