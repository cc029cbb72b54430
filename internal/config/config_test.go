package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valid() Config {
	return Config{
		Address:   "0.0.0.0",
		Port:      8080,
		Templates: "templates",
		Token:     "ghp_test",
	}
}

func TestValidate(t *testing.T) {
	c := valid()
	require.NoError(t, c.Validate())
	assert.Equal(t, "0.0.0.0:8080", c.ListenAddr())
	assert.Equal(t, "0.0.0.0:8080", c.ServerAddress, "server address defaults to the bind address")
}

func TestValidateKeepsExplicitServerAddress(t *testing.T) {
	c := valid()
	c.ServerAddress = "tailor.example.com"
	require.NoError(t, c.Validate())
	assert.Equal(t, "tailor.example.com", c.ServerAddress)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing token", func(c *Config) { c.Token = "" }, "token"},
		{"port zero", func(c *Config) { c.Port = 0 }, "port"},
		{"port too high", func(c *Config) { c.Port = 70000 }, "port"},
		{"empty address", func(c *Config) { c.Address = "" }, "address"},
		{"missing templates", func(c *Config) { c.Templates = "" }, "templates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, IsConfigError(err))

			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestListenAddrIPv6(t *testing.T) {
	c := Config{Address: "::1", Port: 9000}
	assert.Equal(t, "[::1]:9000", c.ListenAddr())
}
