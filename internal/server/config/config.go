// Package config handles configuration for the server, including defaults,
// environment overlay, JSON overlay and command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Supported values for Config.HashAlgorithm.
const (
	HashBcrypt   = "bcrypt"
	HashArgon2id = "argon2id"
)

// Config holds runtime settings for the B-Pay server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the HTTP API.
//   - DatabaseDSN: store selector and connection string
//     (postgres://..., sqlite://path, memory://).
//   - SecretKey: HMAC secret for signing JWTs (HS256).
//   - AccessTokenValidityDuration: lifetime of every issued token.
//   - HashAlgorithm / HashCost: PIN hashing scheme and bcrypt work factor.
//   - DefaultRole: role stored when registration omits one.
//   - AdminRole: role required to list users.
//   - CORSAllowedOrigins: comma-separated origins, "*" for any.
//   - EnableTokenEndpoint: serve POST /jwt.
//   - UnifyLoginErrors: answer "Invalid credentials" for unknown emails too.
//   - GinMode / LogLevel: gin mode and minimum log level.
type Config struct {
	EndpointAddrHTTP            string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	HashAlgorithm               string
	HashCost                    int
	DefaultRole                 string
	AdminRole                   string
	CORSAllowedOrigins          string
	EnableTokenEndpoint         bool
	UnifyLoginErrors            bool
	GinMode                     string
	LogLevel                    string
}

// LoadDefaults populates Config with development defaults. SecretKey is left
// empty on purpose and must be supplied.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":3000"
	c.DatabaseDSN = "memory://"
	c.SecretKey = ""
	c.AccessTokenValidityDuration = time.Hour
	c.HashAlgorithm = HashBcrypt
	c.HashCost = 10
	c.DefaultRole = "user"
	c.AdminRole = "admin"
	c.CORSAllowedOrigins = "*"
	c.EnableTokenEndpoint = true
	c.UnifyLoginErrors = false
	c.GinMode = "release"
	c.LogLevel = "info"
}

// Validate reports the first setting the server cannot start with.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("secret key is required (ACCESS_TOKEN_SECRET or -s)")
	}
	if c.AccessTokenValidityDuration <= 0 {
		return fmt.Errorf("access token validity must be positive, got %s", c.AccessTokenValidityDuration)
	}
	switch c.HashAlgorithm {
	case HashBcrypt:
		if c.HashCost < bcrypt.MinCost || c.HashCost > bcrypt.MaxCost {
			return fmt.Errorf("bcrypt cost %d outside [%d, %d]", c.HashCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
	case HashArgon2id:
	default:
		return fmt.Errorf("unknown hash algorithm %q", c.HashAlgorithm)
	}
	if c.DatabaseDSN == "" {
		return errors.New("database DSN is required")
	}
	if c.DefaultRole == "" {
		return errors.New("default role must not be empty")
	}
	return nil
}

// String masks the secret so the config can be logged.
func (c *Config) String() string {
	return fmt.Sprintf("Config{HTTP: %s, DB: %s, TTL: %s, Hash: %s/%d, Secret: ***}",
		c.EndpointAddrHTTP, redactDSN(c.DatabaseDSN), c.AccessTokenValidityDuration, c.HashAlgorithm, c.HashCost)
}

// LoadConfig builds a Config by applying defaults, then overlaying the
// environment (including an optional .env file), an optional JSON file and
// finally command-line flags. The result is validated.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}
	if err := parseJson(cfg); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
