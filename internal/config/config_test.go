package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		SecretKey:       "secret",
		Algorithm:       "HS256",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_Algorithm(t *testing.T) {
	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		cfg := validConfig()
		cfg.Algorithm = alg
		assert.NoError(t, cfg.Validate(), alg)
	}
	for _, alg := range []string{"RS256", "none", "hs256", ""} {
		cfg := validConfig()
		cfg.Algorithm = alg
		assert.Error(t, cfg.Validate(), alg)
	}
}

func TestValidate_EmptySecret(t *testing.T) {
	cfg := validConfig()
	cfg.SecretKey = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_TokenExpiries(t *testing.T) {
	cfg := validConfig()
	cfg.AccessTokenTTL = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.RefreshTokenTTL = -time.Hour
	assert.Error(t, cfg.Validate())

	// Access TTL must be strictly shorter than refresh TTL.
	cfg = validConfig()
	cfg.AccessTokenTTL = cfg.RefreshTokenTTL
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.AccessTokenTTL = cfg.RefreshTokenTTL + time.Minute
	assert.Error(t, cfg.Validate())
}

func TestParseOrigins(t *testing.T) {
	assert.Nil(t, parseOrigins(""))
	assert.Equal(t, []string{"http://localhost:3000"}, parseOrigins("http://localhost:3000"))
	assert.Equal(t,
		[]string{"https://app.example.com", "https://admin.example.com"},
		parseOrigins(" https://app.example.com , https://admin.example.com "),
	)
	assert.Equal(t, []string{"https://a.example.com"}, parseOrigins("https://a.example.com,,"))
}
