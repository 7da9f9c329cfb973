package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/imamik/inception/internal/util/naming"
)

// Severity levels for validation findings.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationError represents a configuration validation error or warning.
type ValidationError struct {
	Field    string
	Message  string
	Severity string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ve.Severity, ve.Field, ve.Message)
}

// IsError returns true if this is an error (not a warning).
func (ve *ValidationError) IsError() bool {
	return ve.Severity != SeverityWarning
}

// Check runs every validation rule and returns all findings, errors and
// warnings alike, in rule order.
func (c *Config) Check() []*ValidationError {
	var findings []*ValidationError
	add := func(field, severity, format string, args ...any) {
		findings = append(findings, &ValidationError{
			Field:    field,
			Message:  fmt.Sprintf(format, args...),
			Severity: severity,
		})
	}

	switch {
	case c.Prefix == "":
		add("prefix", SeverityError, "prefix is required")
	case strings.Contains(c.Prefix, naming.Separator):
		add("prefix", SeverityError, "prefix %q must not contain the separator %q", c.Prefix, naming.Separator)
	case !isAlnum(c.Prefix):
		add("prefix", SeverityError, "prefix %q must be alphanumeric", c.Prefix)
	}

	if c.NumWorkers < 0 {
		add("num_workers", SeverityError, "num_workers must not be negative, got %d", c.NumWorkers)
	} else if c.NumWorkers > MaxWorkers {
		add("num_workers", SeverityError, "num_workers %d exceeds the maximum of %d", c.NumWorkers, MaxWorkers)
	}
	if c.NumControllers < 1 || c.NumControllers > MaxControllers {
		add("num_controllers", SeverityError, "num_controllers must be between 1 and %d, got %d", MaxControllers, c.NumControllers)
	}

	if c.Image == "" {
		add("image", SeverityError, "image is required")
	}
	if c.Flavor == "" {
		add("flavor", SeverityError, "flavor is required")
	}
	if c.ConfigRepoURL == "" {
		add("config_repo_url", SeverityError, "config_repo_url is required")
	}
	if c.User == "" {
		add("user", SeverityError, "user is required")
	}

	if c.Timeout <= 0 {
		add("timeout", SeverityError, "timeout must be positive, got %d", c.Timeout)
	}
	if c.PollInterval <= 0 {
		add("poll_interval", SeverityError, "poll_interval must be positive, got %d", c.PollInterval)
	} else if c.Timeout > 0 && c.PollInterval >= c.Timeout {
		add("poll_interval", SeverityWarning, "poll_interval %ds is not shorter than timeout %ds, readiness is polled once", c.PollInterval, c.Timeout)
	}
	if c.MaxParallel < 1 {
		add("max_parallel", SeverityError, "max_parallel must be at least 1, got %d", c.MaxParallel)
	}
	if c.CommandTimeout < 0 {
		add("command_timeout", SeverityError, "command_timeout must not be negative, got %d", c.CommandTimeout)
	}

	if c.KeyName == "" {
		add("key_name", SeverityWarning, "no key_name set, instances only accept keys injected through user data")
	}
	if !c.StrictHostKeys {
		add("strict_host_keys", SeverityWarning, "host key checking is disabled")
	}

	return findings
}

// Validate returns all error-severity findings joined, or nil.
func (c *Config) Validate() error {
	var errs []error
	for _, f := range c.Check() {
		if f.IsError() {
			errs = append(errs, f)
		}
	}
	return errors.Join(errs...)
}

// Warnings returns warning-severity findings.
func (c *Config) Warnings() []*ValidationError {
	var warnings []*ValidationError
	for _, f := range c.Check() {
		if !f.IsError() {
			warnings = append(warnings, f)
		}
	}
	return warnings
}

func isAlnum(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || (!unicode.IsLetter(r) && !unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}
