package container

import (
	"time"
)

// AppOption defines a functional option for configuring AppContainer
type AppOption func(*AppOptions)

// AppOptions holds configuration options for AppContainer
type AppOptions struct {
	// Startup options
	EnableAutoReconnect     bool
	AutoReconnectTimeout    time.Duration
	MaxConcurrentReconnects int

	// Server options
	StartServerAsync        bool
	GracefulShutdownTimeout time.Duration

	// Logging options
	LogLevel                string
	EnableStructuredLogging bool

	// Development options
	EnableDebugMode bool
	EnableMetrics   bool
	EnableProfiling bool
}

// DefaultAppOptions returns default configuration options
func DefaultAppOptions() *AppOptions {
	return &AppOptions{
		EnableAutoReconnect:     true,
		AutoReconnectTimeout:    2 * time.Minute,
		MaxConcurrentReconnects: 5,
		StartServerAsync:        true,
		GracefulShutdownTimeout: 30 * time.Second,
		LogLevel:                "info",
		EnableStructuredLogging: true,
		EnableDebugMode:         false,
		EnableMetrics:           true,
		EnableProfiling:         false,
	}
}

// WithAutoReconnect enables/disables automatic session reconnection
func WithAutoReconnect(enabled bool) AppOption {
	return func(opts *AppOptions) {
		opts.EnableAutoReconnect = enabled
	}
}

// WithAutoReconnectTimeout sets the timeout for automatic reconnection
func WithAutoReconnectTimeout(timeout time.Duration) AppOption {
	return func(opts *AppOptions) {
		opts.AutoReconnectTimeout = timeout
	}
}

// WithMaxConcurrentReconnects sets the maximum number of concurrent reconnections
func WithMaxConcurrentReconnects(max int) AppOption {
	return func(opts *AppOptions) {
		opts.MaxConcurrentReconnects = max
	}
}

// WithServerAsync enables/disables asynchronous server startup
func WithServerAsync(async bool) AppOption {
	return func(opts *AppOptions) {
		opts.StartServerAsync = async
	}
}

// WithGracefulShutdownTimeout sets the graceful shutdown timeout
func WithGracefulShutdownTimeout(timeout time.Duration) AppOption {
	return func(opts *AppOptions) {
		opts.GracefulShutdownTimeout = timeout
	}
}

// WithLogLevel sets the logging level
func WithLogLevel(level string) AppOption {
	return func(opts *AppOptions) {
		opts.LogLevel = level
	}
}

// WithStructuredLogging enables/disables structured logging
func WithStructuredLogging(enabled bool) AppOption {
	return func(opts *AppOptions) {
		opts.EnableStructuredLogging = enabled
	}
}

// WithDebugMode enables/disables debug mode
func WithDebugMode(enabled bool) AppOption {
	return func(opts *AppOptions) {
		opts.EnableDebugMode = enabled
	}
}

// WithMetrics enables/disables metrics collection
func WithMetrics(enabled bool) AppOption {
	return func(opts *AppOptions) {
		opts.EnableMetrics = enabled
	}
}

// WithProfiling enables/disables profiling
func WithProfiling(enabled bool) AppOption {
	return func(opts *AppOptions) {
		opts.EnableProfiling = enabled
	}
}
