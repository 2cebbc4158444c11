package listing

import "fmt"

const (
	// DefaultPerPage is the number of items per page when not specified.
	DefaultPerPage = 10

	// DefaultMaxPerPage is the default maximum page size a list endpoint accepts.
	// This protects against resource exhaustion from unreasonably large page requests.
	DefaultMaxPerPage = 100
)

// PageConfig holds page size policy for list endpoints.
// Use NewPageConfig() to create a config with sensible defaults,
// then customize using the With* methods.
//
// Example:
//
//	config := listing.NewPageConfig().WithMaxSize(50)
//	limit := config.EffectiveLimit(q.Limit)
type PageConfig struct {
	// DefaultSize is the page size used when the request does not carry one.
	DefaultSize int

	// MaxSize is the maximum allowed page size.
	MaxSize int
}

// NewPageConfig creates a PageConfig with sensible defaults:
// - DefaultSize: 10
// - MaxSize: 100
func NewPageConfig() *PageConfig {
	return &PageConfig{
		DefaultSize: DefaultPerPage,
		MaxSize:     DefaultMaxPerPage,
	}
}

// WithDefaultSize sets the default page size and returns the config for chaining.
func (c *PageConfig) WithDefaultSize(size int) *PageConfig {
	if size > 0 {
		c.DefaultSize = size
	}
	return c
}

// WithMaxSize sets the maximum page size and returns the config for chaining.
func (c *PageConfig) WithMaxSize(size int) *PageConfig {
	if size > 0 {
		c.MaxSize = size
	}
	return c
}

func (c *PageConfig) sizes() (defaultSize, maxSize int) {
	if c == nil {
		c = NewPageConfig()
	}

	defaultSize = c.DefaultSize
	if defaultSize <= 0 {
		defaultSize = DefaultPerPage
	}

	maxSize = c.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxPerPage
	}

	return defaultSize, maxSize
}

// EffectiveLimit returns the page size to use, applying defaults and caps.
// - If requested is zero or negative, returns DefaultSize
// - If requested exceeds MaxSize, returns MaxSize
// - Otherwise returns requested
func (c *PageConfig) EffectiveLimit(requested int) int {
	defaultSize, maxSize := c.sizes()

	if requested <= 0 {
		return defaultSize
	}

	if requested > maxSize {
		return maxSize
	}

	return requested
}

// Validate returns a *PageSizeError if requested exceeds MaxSize.
// Unlike EffectiveLimit which caps silently, Validate is for explicit
// rejection of invalid requests.
func (c *PageConfig) Validate(requested int) error {
	_, maxSize := c.sizes()

	if requested > maxSize {
		return &PageSizeError{
			Requested: requested,
			Maximum:   maxSize,
		}
	}

	return nil
}

// PageSizeError is returned when the requested page size exceeds the maximum allowed.
type PageSizeError struct {
	Requested int
	Maximum   int
}

func (e *PageSizeError) Error() string {
	return fmt.Sprintf("requested page size %d exceeds maximum allowed page size of %d",
		e.Requested, e.Maximum)
}

// QueryError is returned by ParseQuery when a query parameter is malformed.
type QueryError struct {
	Param  string
	Value  string
	Reason string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid query parameter %q=%q: %s", e.Param, e.Value, e.Reason)
}
