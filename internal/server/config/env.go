package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvFileName is loaded from the working directory when present. Variables
// already set in the process environment win over the file.
const EnvFileName = ".env"

// parseEnv overlays settings from environment variables.
//
//	PORT                   listen port, becomes ":<PORT>"
//	HTTP_ADDRESS           full listen address, wins over PORT
//	DATABASE_DSN           store DSN
//	ACCESS_TOKEN_SECRET    JWT signing secret
//	ACCESS_TOKEN_TTL       token lifetime, Go duration ("1h")
//	HASH_ALGORITHM         bcrypt | argon2id
//	HASH_COST              bcrypt cost
//	DEFAULT_ROLE, ADMIN_ROLE
//	CORS_ALLOWED_ORIGINS   comma-separated
//	ENABLE_TOKEN_ENDPOINT, UNIFY_LOGIN_ERRORS  booleans
//	GIN_MODE, LOG_LEVEL
func parseEnv(cfg *Config) error {
	_ = godotenv.Load(EnvFileName)

	if v := os.Getenv("PORT"); v != "" {
		cfg.EndpointAddrHTTP = ":" + strings.TrimPrefix(v, ":")
	}
	setString(&cfg.EndpointAddrHTTP, "HTTP_ADDRESS")
	setString(&cfg.DatabaseDSN, "DATABASE_DSN")
	setString(&cfg.SecretKey, "ACCESS_TOKEN_SECRET")
	setString(&cfg.HashAlgorithm, "HASH_ALGORITHM")
	setString(&cfg.DefaultRole, "DEFAULT_ROLE")
	setString(&cfg.AdminRole, "ADMIN_ROLE")
	setString(&cfg.CORSAllowedOrigins, "CORS_ALLOWED_ORIGINS")
	setString(&cfg.GinMode, "GIN_MODE")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("ACCESS_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ACCESS_TOKEN_TTL: %w", err)
		}
		cfg.AccessTokenValidityDuration = d
	}
	if v := os.Getenv("HASH_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HASH_COST: %w", err)
		}
		cfg.HashCost = n
	}
	if err := setBool(&cfg.EnableTokenEndpoint, "ENABLE_TOKEN_ENDPOINT"); err != nil {
		return err
	}
	if err := setBool(&cfg.UnifyLoginErrors, "UNIFY_LOGIN_ERRORS"); err != nil {
		return err
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

// redactDSN hides the password part of URL-style DSNs.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	return u.Redacted()
}
