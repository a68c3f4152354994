// Package config loads client settings from a YAML file, a .env file and
// APICLIENT_* environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sotoon/apiclient-go/sdk/logging"
	"github.com/sotoon/apiclient-go/sdk/transport"
)

const envPrefix = "APICLIENT"

// Config is the full client configuration.
type Config struct {
	// Environment gates the interceptor's logging channel. Only
	// "development" enables it.
	Environment string           `yaml:"environment" mapstructure:"environment"`
	Transport   transport.Config `yaml:"transport" mapstructure:"transport"`
	Log         logging.Config   `yaml:"log" mapstructure:"log"`
}

// Validate checks the transport and log sections.
func (c *Config) Validate() error {
	if err := c.Transport.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}

type loaderOptions struct {
	configFile string
	envFile    string
}

// Option configures Load.
type Option func(*loaderOptions)

// WithConfigFile reads settings from a YAML file.
func WithConfigFile(path string) Option {
	return func(o *loaderOptions) { o.configFile = path }
}

// WithEnvFile loads a .env file into the process environment before
// reading variables. Variables that are already set win.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// Load builds a Config from defaults, the optional files and the environment.
func Load(opts ...Option) (*Config, error) {
	var o loaderOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil {
			return nil, fmt.Errorf("config: load env file %s: %w", o.envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	if o.configFile != "" {
		v.SetConfigFile(o.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", o.configFile, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.Transport.ApplyDefaults()
	cfg.Log.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("transport.base_url", "")
	v.SetDefault("transport.timeout", 30*time.Second)
	v.SetDefault("transport.request_id_header", "X-Request-ID")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.no_color", false)
	v.SetDefault("log.timestamp", true)
}
