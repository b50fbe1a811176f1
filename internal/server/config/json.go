package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/projectboard/internal/flagx"
	"github.com/dmitrijs2005/projectboard/internal/timex"
	"github.com/tidwall/jsonc"
)

// JsonConfig is the on-disk shape of the optional config file. Comments and
// trailing commas are allowed. Durations
// accept "15m"-style strings or integer nanoseconds. Absent keys leave the
// corresponding Config field untouched.
type JsonConfig struct {
	EndpointAddrHTTP      *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC      *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN           *string         `json:"database_dsn"`
	DBMaxOpenConns        *int            `json:"db_max_open_conns"`
	DBMaxIdleConns        *int            `json:"db_max_idle_conns"`
	DBConnMaxLifetime     *timex.Duration `json:"db_conn_max_lifetime"`
	SecretKey             *string         `json:"secret_key"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration"`
	AuthRateLimit         *int            `json:"auth_rate_limit"`
	AuthRateWindow        *timex.Duration `json:"auth_rate_window"`
	RedisAddr             *string         `json:"redis_addr"`
	CORSOrigin            *string         `json:"cors_origin"`
	TrustedProxies        *[]string       `json:"trusted_proxies"`
	ShutdownTimeout       *timex.Duration `json:"shutdown_timeout"`
	LogLevel              *string         `json:"log_level"`
}

// parseJson loads the file named by -c/-config, if any, over config.
// An unreadable or malformed file panics: a typo in a config path should
// stop the server rather than silently start it on defaults.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(jsonc.ToJSON(file), c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	if c.EndpointAddrHTTP != nil {
		config.EndpointAddrHTTP = *c.EndpointAddrHTTP
	}
	if c.EndpointAddrGRPC != nil {
		config.EndpointAddrGRPC = *c.EndpointAddrGRPC
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.DBMaxOpenConns != nil {
		config.DBMaxOpenConns = *c.DBMaxOpenConns
	}
	if c.DBMaxIdleConns != nil {
		config.DBMaxIdleConns = *c.DBMaxIdleConns
	}
	if c.DBConnMaxLifetime != nil {
		config.DBConnMaxLifetime = c.DBConnMaxLifetime.Duration
	}
	if c.SecretKey != nil {
		config.SecretKey = *c.SecretKey
	}
	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.AuthRateLimit != nil {
		config.AuthRateLimit = *c.AuthRateLimit
	}
	if c.AuthRateWindow != nil {
		config.AuthRateWindow = c.AuthRateWindow.Duration
	}
	if c.RedisAddr != nil {
		config.RedisAddr = *c.RedisAddr
	}
	if c.CORSOrigin != nil {
		config.CORSOrigin = *c.CORSOrigin
	}
	if c.TrustedProxies != nil {
		config.TrustedProxies = *c.TrustedProxies
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.LogLevel != nil {
		config.LogLevel = *c.LogLevel
	}
}
