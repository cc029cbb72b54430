// Package config holds the service configuration collected from flags.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// Config is the full service configuration.
type Config struct {
	// Address is the interface the HTTP server binds to.
	Address string
	// Port is the HTTP server port.
	Port int
	// ServerAddress is the public host:port used when building status links.
	// Defaults to the bind address when empty.
	ServerAddress string
	// Templates is the directory holding HTML templates.
	Templates string
	// Token is the GitHub API credential.
	Token string
	// Verbosity counts -v flags.
	Verbosity int
}

// ConfigError marks an invalid configuration; the entry point maps it to a
// usage failure rather than a crash.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
}

// Validate checks the configuration and fills defaults.
func (c *Config) Validate() error {
	if c.Token == "" {
		return &ConfigError{Field: "token", Msg: "a GitHub token is required"}
	}
	if c.Port <= 0 || c.Port > 65535 {
		return &ConfigError{Field: "port", Msg: "must be between 1 and 65535"}
	}
	if c.Address == "" {
		return &ConfigError{Field: "address", Msg: "must not be empty"}
	}
	if c.Templates == "" {
		return &ConfigError{Field: "templates", Msg: "a template directory is required"}
	}
	if c.ServerAddress == "" {
		c.ServerAddress = c.ListenAddr()
	}
	return nil
}

// ListenAddr is the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
