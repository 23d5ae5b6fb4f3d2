// config.go — Tunable defaults for the capture-and-correlation pipeline.
// Grounded on the teacher's pattern of named constants plus a defaulted
// constructor (internal/capture/types.go's NewCapture); generalized here to
// a single Config value so every tunable in spec.md §6 has one home instead
// of being scattered across package-level constants.
package config

import "time"

// Config holds every tunable the ingester, correlator, and query layer read.
// Zero Config{} is not valid; always construct via Default().
type Config struct {
	// MaxRequests bounds the finalized request store; the oldest record is
	// evicted once the store would exceed this size.
	MaxRequests int

	// MaxResponseBodySize is the truncation limit, in bytes, for a captured
	// text response body.
	MaxResponseBodySize int

	// ExcludePatterns drops any debug event whose URL matches, silently.
	ExcludePatterns []string

	// MaxCorrelationWindow bounds how far back (in wall-clock time) a
	// candidate action may be from a request's start and still qualify.
	MaxCorrelationWindow time.Duration

	// MinConfidence is the floor below which a Layer 2/3 candidate is discarded.
	MinConfidence float64

	// NetworkQuietPeriod is how long the in-flight count must stay at zero
	// before WaitForQuiescence reports the network idle.
	NetworkQuietPeriod time.Duration
}

// Default returns the documented defaults from spec.md §6.
func Default() Config {
	return Config{
		MaxRequests:           1000,
		MaxResponseBodySize:   524288,
		ExcludePatterns:       nil,
		MaxCorrelationWindow:  2000 * time.Millisecond,
		MinConfidence:         0.20,
		NetworkQuietPeriod:    500 * time.Millisecond,
	}
}

// Option mutates a Config in place; passed to New* constructors as varargs.
type Option func(*Config)

// WithMaxRequests overrides the finalized-store capacity.
func WithMaxRequests(n int) Option {
	return func(c *Config) { c.MaxRequests = n }
}

// WithMaxResponseBodySize overrides the response-body truncation limit.
func WithMaxResponseBodySize(n int) Option {
	return func(c *Config) { c.MaxResponseBodySize = n }
}

// WithExcludePatterns overrides the URL exclusion list.
func WithExcludePatterns(patterns []string) Option {
	return func(c *Config) { c.ExcludePatterns = patterns }
}

// WithMaxCorrelationWindow overrides the correlation time window.
func WithMaxCorrelationWindow(d time.Duration) Option {
	return func(c *Config) { c.MaxCorrelationWindow = d }
}

// WithMinConfidence overrides the Layer 2/3 confidence floor.
func WithMinConfidence(f float64) Option {
	return func(c *Config) { c.MinConfidence = f }
}

// WithNetworkQuietPeriod overrides the quiescence window.
func WithNetworkQuietPeriod(d time.Duration) Option {
	return func(c *Config) { c.NetworkQuietPeriod = d }
}

// Apply builds a Config from Default() plus the given options.
func Apply(opts ...Option) Config {
	c := Default()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
