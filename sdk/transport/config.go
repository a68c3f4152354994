package transport

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultRequestIDHeader = "X-Request-ID"
)

var validate = validator.New()

// Config holds the base configuration every request made through a Client
// inherits.
type Config struct {
	// BaseURL is prepended to relative request URLs.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`

	// Timeout bounds a single request, including reading the body. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// Headers are sent with every request. Request headers override them.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// RequestIDHeader carries the generated request ID. Defaults to X-Request-ID.
	RequestIDHeader string `yaml:"request_id_header" mapstructure:"request_id_header"`

	// RoundTripper performs the exchange. Defaults to a clone of http.DefaultTransport.
	RoundTripper http.RoundTripper `yaml:"-" mapstructure:"-" validate:"-"`

	// ValidateStatus decides which statuses resolve. Defaults to 2xx.
	ValidateStatus func(status int) bool `yaml:"-" mapstructure:"-" validate:"-"`

	// TracerProvider creates client spans. Defaults to the global provider.
	TracerProvider trace.TracerProvider `yaml:"-" mapstructure:"-" validate:"-"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RequestIDHeader == "" {
		c.RequestIDHeader = defaultRequestIDHeader
	}
	if c.ValidateStatus == nil {
		c.ValidateStatus = DefaultValidateStatus
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("transport: invalid config: %w", err)
	}
	return nil
}

// DefaultValidateStatus resolves 2xx statuses.
func DefaultValidateStatus(status int) bool {
	return status >= 200 && status < 300
}
