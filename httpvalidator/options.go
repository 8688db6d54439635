package httpvalidator

import (
	"fmt"
	"log/slog"
)

// Option is a functional option for configuring a Validator.
type Option func(*config) error

// config holds the configuration for validation operations.
type config struct {
	logger *slog.Logger

	// exceptions are regular expressions for intentionally uncontracted routes.
	exceptions []string

	// strictContract turns contract authoring warnings into setup errors.
	strictContract bool

	// redactHeaders omits offending header values from violations.
	redactHeaders bool
}

// defaultConfig returns the default configuration.
func defaultConfig() *config {
	return &config{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger used for contract warnings found during setup.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return fmt.Errorf("httpvalidator: logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithExceptions sets the exception patterns: regular expressions matched, in
// order, against the normalized request path when no contract route matches.
// A matching request is passed through with a valid verdict instead of a
// route-not-found error. Patterns are compiled by New; an invalid pattern
// makes New fail.
func WithExceptions(patterns ...string) Option {
	return func(c *config) error {
		c.exceptions = append(c.exceptions, patterns...)
		return nil
	}
}

// WithStrictContract makes New reject contracts with authoring errors instead
// of logging a warning:
//   - a parameter declared both required and with a default
//   - a parameter $ref that does not resolve
//   - a responses key that is not a status code, "default", or an extension
//
// Default is false.
func WithStrictContract(strict bool) Option {
	return func(c *config) error {
		c.strictContract = strict
		return nil
	}
}

// WithRedactHeaders omits the offending values of request and response headers
// from violations, for headers that may carry credentials.
// Default is false.
func WithRedactHeaders(redact bool) Option {
	return func(c *config) error {
		c.redactHeaders = redact
		return nil
	}
}
