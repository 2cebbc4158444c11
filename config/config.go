// Package config loads the settings of a list client from the environment
// and builds the components it configures.
//
// With prefix "PORTAL" the variables are PORTAL_API_BASE_URL,
// PORTAL_API_TIMEOUT, PORTAL_PER_PAGE and so on.
package config

import (
	"time"

	"github.com/friendsofgo/errors"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nrfta/listing-go"
	"github.com/nrfta/listing-go/cache"
	"github.com/nrfta/listing-go/httplist"
	"github.com/nrfta/listing-go/resource"
)

// Config holds runtime configuration of list views and their endpoints.
type Config struct {
	APIBaseURL   string        `envconfig:"API_BASE_URL" required:"true" validate:"required,url"`
	APIToken     string        `envconfig:"API_TOKEN"`
	APITimeout   time.Duration `envconfig:"API_TIMEOUT" default:"30s" validate:"gt=0"`
	APIRetries   int           `envconfig:"API_RETRIES" default:"3" validate:"gte=0,lte=10"`
	APIRetryWait time.Duration `envconfig:"API_RETRY_WAIT" default:"1s" validate:"gte=0"`

	PerPage        int           `envconfig:"PER_PAGE" default:"10" validate:"gte=1,ltefield=MaxPerPage"`
	MaxPerPage     int           `envconfig:"MAX_PER_PAGE" default:"100" validate:"gte=1"`
	SearchDebounce time.Duration `envconfig:"SEARCH_DEBOUNCE" default:"500ms" validate:"gte=0"`

	// RedisAddr enables the list cache when set.
	RedisAddr string        `envconfig:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"5m" validate:"gte=0"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
}

var validate = validator.New()

// Load reads configuration from environment variables under prefix and
// validates it.
func Load(prefix string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, errors.Wrap(err, "read list config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid list config")
	}
	return nil
}

// HTTPConfig returns the transport settings of the list endpoints.
func (c *Config) HTTPConfig() httplist.Config {
	return httplist.Config{
		BaseURL:   c.APIBaseURL,
		Timeout:   c.APITimeout,
		Retries:   c.APIRetries,
		RetryWait: c.APIRetryWait,
	}
}

// HTTPClient builds the list endpoint client, authenticated with APIToken
// when set.
func (c *Config) HTTPClient(logger *zap.Logger) *httplist.Client {
	opts := []httplist.ClientOption{httplist.WithClientLogger(logger)}
	if c.APIToken != "" {
		opts = append(opts, httplist.WithHeader("Authorization", "Bearer "+c.APIToken))
	}
	return httplist.New(c.HTTPConfig(), opts...)
}

// PageConfig returns the page size policy.
func (c *Config) PageConfig() *listing.PageConfig {
	return listing.NewPageConfig().
		WithDefaultSize(c.PerPage).
		WithMaxSize(c.MaxPerPage)
}

// BindingOptions returns the options of a resource.Binding.
func (c *Config) BindingOptions(logger *zap.Logger) []resource.Option {
	return []resource.Option{
		resource.WithPerPage(c.PerPage),
		resource.WithSearchDebounce(c.SearchDebounce),
		resource.WithLogger(logger),
	}
}

// Cache returns the list cache, or nil when RedisAddr is empty. A nil
// *cache.Cache is valid and caches nothing.
func (c *Config) Cache(logger *zap.Logger) *cache.Cache {
	if c.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
	return cache.New(client, c.CacheTTL, cache.WithLogger(logger))
}
