package config

import (
	"encoding/json"
	"os"

	"github.com/bpay/bpay/internal/flagx"
	"github.com/bpay/bpay/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Pointer fields distinguish an
// absent key from a zero value, so a partial file only touches what it names.
type JsonConfig struct {
	EndpointAddrHTTP            *string         `json:"endpoint_addr_http"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	HashAlgorithm               *string         `json:"hash_algorithm"`
	HashCost                    *int            `json:"hash_cost"`
	DefaultRole                 *string         `json:"default_role"`
	AdminRole                   *string         `json:"admin_role"`
	CORSAllowedOrigins          *string         `json:"cors_allowed_origins"`
	EnableTokenEndpoint         *bool           `json:"enable_token_endpoint"`
	UnifyLoginErrors            *bool           `json:"unify_login_errors"`
	GinMode                     *string         `json:"gin_mode"`
	LogLevel                    *string         `json:"log_level"`
}

// parseJson overlays values from the JSON file named by -c/-config or
// $CONFIG. No path means nothing to load.
func parseJson(config *Config) error {
	path := flagx.ConfigPath()
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	copyIfSet(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	copyIfSet(&config.DatabaseDSN, c.DatabaseDSN)
	copyIfSet(&config.SecretKey, c.SecretKey)
	copyIfSet(&config.HashAlgorithm, c.HashAlgorithm)
	copyIfSet(&config.HashCost, c.HashCost)
	copyIfSet(&config.DefaultRole, c.DefaultRole)
	copyIfSet(&config.AdminRole, c.AdminRole)
	copyIfSet(&config.CORSAllowedOrigins, c.CORSAllowedOrigins)
	copyIfSet(&config.EnableTokenEndpoint, c.EnableTokenEndpoint)
	copyIfSet(&config.UnifyLoginErrors, c.UnifyLoginErrors)
	copyIfSet(&config.GinMode, c.GinMode)
	copyIfSet(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
}

func copyIfSet[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
