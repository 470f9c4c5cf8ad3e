package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DATABASE_DSN", "sqlite://bpay.db")
	t.Setenv("ACCESS_TOKEN_SECRET", "s3cr3t")
	t.Setenv("ACCESS_TOKEN_TTL", "30m")
	t.Setenv("HASH_ALGORITHM", "argon2id")
	t.Setenv("HASH_COST", "12")
	t.Setenv("DEFAULT_ROLE", "member")
	t.Setenv("ADMIN_ROLE", "root")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("ENABLE_TOKEN_ENDPOINT", "false")
	t.Setenv("UNIFY_LOGIN_ERRORS", "true")
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("LOG_LEVEL", "debug")

	c := &Config{}
	c.LoadDefaults()
	require.NoError(t, parseEnv(c))

	assert.Equal(t, ":8081", c.EndpointAddrHTTP)
	assert.Equal(t, "sqlite://bpay.db", c.DatabaseDSN)
	assert.Equal(t, "s3cr3t", c.SecretKey)
	assert.Equal(t, 30*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, HashArgon2id, c.HashAlgorithm)
	assert.Equal(t, 12, c.HashCost)
	assert.Equal(t, "member", c.DefaultRole)
	assert.Equal(t, "root", c.AdminRole)
	assert.Equal(t, "https://a.example,https://b.example", c.CORSAllowedOrigins)
	assert.False(t, c.EnableTokenEndpoint)
	assert.True(t, c.UnifyLoginErrors)
	assert.Equal(t, "debug", c.GinMode)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestParseEnv_HTTPAddressWinsOverPort(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("HTTP_ADDRESS", "127.0.0.1:9999")

	c := &Config{}
	c.LoadDefaults()
	require.NoError(t, parseEnv(c))
	assert.Equal(t, "127.0.0.1:9999", c.EndpointAddrHTTP)
}

func TestParseEnv_BadValues(t *testing.T) {
	for key, value := range map[string]string{
		"ACCESS_TOKEN_TTL":      "forever",
		"HASH_COST":             "ten",
		"ENABLE_TOKEN_ENDPOINT": "maybe",
		"UNIFY_LOGIN_ERRORS":    "sometimes",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			c := &Config{}
			c.LoadDefaults()
			err := parseEnv(c)
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestParseEnv_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, EnvFileName), []byte("ACCESS_TOKEN_SECRET=from-dotenv\nLOG_LEVEL=warn\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// t.Setenv restores the original values; the secret must be truly unset
	// for godotenv to fill it in.
	t.Setenv("ACCESS_TOKEN_SECRET", "")
	require.NoError(t, os.Unsetenv("ACCESS_TOKEN_SECRET"))

	// LOG_LEVEL from the real environment wins over the file.
	t.Setenv("LOG_LEVEL", "error")

	c := &Config{}
	c.LoadDefaults()
	require.NoError(t, parseEnv(c))

	assert.Equal(t, "from-dotenv", c.SecretKey)
	assert.Equal(t, "error", c.LogLevel)
}
