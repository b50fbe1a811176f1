package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/projectboard/internal/flagx"
	"github.com/dmitrijs2005/projectboard/internal/timex"
	"github.com/joho/godotenv"
)

// parseEnv overlays values from the environment. A dotenv file (".env", or
// the path given with -env) is loaded first; variables already present in
// the process environment are not overwritten by it.
//
// Recognised variables:
//
//	PORT               HTTP port (bound on all interfaces)
//	GRPC_ADDR          gRPC health endpoint address
//	DATABASE_URL       PostgreSQL DSN
//	DB_MAX_CONNS       connection pool bound
//	DB_MAX_IDLE_CONNS  idle connections kept
//	DB_CONN_LIFETIME   connection recycle age ("30m")
//	JWT_SECRET         token signing secret
//	JWT_EXPIRES_IN     token lifetime ("1d", "12h")
//	RATE_LIMIT_MAX     auth attempts per window
//	RATE_LIMIT_WINDOW  auth window ("15m")
//	REDIS_ADDR         host:port of the rate-limit store
//	CORS_ORIGIN        allowed origin
//	TRUSTED_PROXIES    comma-separated proxy IPs or CIDRs
//	LOG_LEVEL          debug|info|warn|error
//
// Malformed numbers and durations are ignored and the previous value kept.
func parseEnv(config *Config) {
	envFile := flagx.EnvFile()
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			panic(err)
		}
	} else {
		// optional
		_ = godotenv.Load()
	}

	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		config.EndpointAddrHTTP = ":" + v
	}
	setString(&config.EndpointAddrGRPC, "GRPC_ADDR")
	setString(&config.DatabaseDSN, "DATABASE_URL")
	setInt(&config.DBMaxOpenConns, "DB_MAX_CONNS")
	setInt(&config.DBMaxIdleConns, "DB_MAX_IDLE_CONNS")
	setDuration(&config.DBConnMaxLifetime, "DB_CONN_LIFETIME")
	setString(&config.SecretKey, "JWT_SECRET")
	setDuration(&config.TokenValidityDuration, "JWT_EXPIRES_IN")
	setInt(&config.AuthRateLimit, "RATE_LIMIT_MAX")
	setDuration(&config.AuthRateWindow, "RATE_LIMIT_WINDOW")
	setString(&config.RedisAddr, "REDIS_ADDR")
	setString(&config.CORSOrigin, "CORS_ORIGIN")
	setList(&config.TrustedProxies, "TRUSTED_PROXIES")
	setString(&config.LogLevel, "LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setList(dst *[]string, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}

func setInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func setDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	if d, err := timex.ParseDays(v); err == nil {
		*dst = d
	}
}
