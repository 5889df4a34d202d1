package pricing

import (
	"fmt"

	"cellgate-hq/pricelock/pkg/rule"
)

// Config contains configuration for the rule evaluator.
type Config struct {
	// MaxSteps is the number of AST nodes one evaluation may visit.
	// Default: 10000.
	MaxSteps int

	// MaxDepth is the deepest nesting accepted when parsing and evaluating.
	// Default: 64.
	MaxDepth int

	// MaxSourceBytes is the largest accepted rule text.
	// Default: 16384.
	MaxSourceBytes int

	// StrictValidation runs the static validator before evaluation and
	// rejects rules with findings, even if the failing code is unreachable.
	// Default: false.
	StrictValidation bool

	// SourceName is recorded in diagnostic locations.
	// Default: "witness".
	SourceName string
}

// DefaultConfig returns the default evaluator configuration.
func DefaultConfig() *Config {
	limits := rule.DefaultLimits()
	return &Config{
		MaxSteps:         limits.MaxSteps,
		MaxDepth:         limits.MaxDepth,
		MaxSourceBytes:   limits.MaxSourceBytes,
		StrictValidation: false,
		SourceName:       "witness",
	}
}

// Validate validates the evaluator configuration.
func (c *Config) Validate() error {
	if err := c.Limits().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.SourceName == "" {
		return fmt.Errorf("%w: source name must not be empty", ErrInvalidConfig)
	}
	return nil
}

// Limits returns the engine limits described by the configuration.
func (c *Config) Limits() rule.Limits {
	return rule.Limits{
		MaxSteps:       c.MaxSteps,
		MaxDepth:       c.MaxDepth,
		MaxSourceBytes: c.MaxSourceBytes,
	}
}

// WithMaxSteps sets the step budget.
func (c *Config) WithMaxSteps(steps int) *Config {
	c.MaxSteps = steps
	return c
}

// WithMaxDepth sets the nesting limit.
func (c *Config) WithMaxDepth(depth int) *Config {
	c.MaxDepth = depth
	return c
}

// WithMaxSourceBytes sets the rule text size limit.
func (c *Config) WithMaxSourceBytes(n int) *Config {
	c.MaxSourceBytes = n
	return c
}

// WithStrictValidation enables or disables static validation before evaluation.
func (c *Config) WithStrictValidation(enabled bool) *Config {
	c.StrictValidation = enabled
	return c
}

// WithSourceName sets the name used in diagnostic locations.
func (c *Config) WithSourceName(name string) *Config {
	c.SourceName = name
	return c
}
