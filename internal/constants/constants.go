// Package constants provides shared constant values used throughout the application.
package constants

import "time"

// HTTP server defaults
const (
	// DefaultHTTPPort is the default HTTP server port.
	DefaultHTTPPort = "3000"

	// DefaultReadTimeout is the default HTTP read timeout.
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout is the default HTTP write timeout.
	DefaultWriteTimeout = 15 * time.Second

	// DefaultIdleTimeout is the default HTTP idle timeout.
	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout is the default graceful shutdown timeout.
	DefaultShutdownTimeout = 10 * time.Second

	// MaxRequestBodyBytes caps the size of an accepted request body (1 MiB).
	MaxRequestBodyBytes = 1 << 20
)

// Cache durations
const (
	// StaticFileCacheDuration is the cache duration for CSS/JS files (1 hour).
	StaticFileCacheDuration = 3600
)

// Distribution limits
const (
	// InitialPercentage is the single entry a fresh form starts with.
	InitialPercentage = "100"

	// FullPercentage is the target sum of all distributions.
	FullPercentage = 100

	// MaxDistributions bounds the index accepted from clients. Writing past the
	// end grows the list, so an unbounded index would allocate without limit.
	MaxDistributions = 1000

	// DefaultMaxEvents is the number of dispatched actions kept in the activity log.
	DefaultMaxEvents = 100
)

// Formatting
const (
	// DefaultLocale matches the locale the calculator has always displayed amounts in.
	DefaultLocale = "id"

	// MaxFractionDigits is the number of fraction digits shown for amounts.
	MaxFractionDigits = 3
)
