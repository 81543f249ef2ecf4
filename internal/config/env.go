package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies BOOKS_* variables on top of cfg. Unparseable
// values leave the current setting in place.
func ApplyEnvOverrides(cfg *Config) {
	cfg.Server.Addr = envStringWithFallback("BOOKS_ADDR", cfg.Server.Addr)
	cfg.Server.AllowNullOrigin = envBoolWithFallback("BOOKS_ALLOW_NULL_ORIGIN", cfg.Server.AllowNullOrigin)

	cfg.Catalog.Kind = envStringWithFallback("BOOKS_CATALOG_SOURCE", cfg.Catalog.Kind)
	cfg.Catalog.Path = envStringWithFallback("BOOKS_CATALOG_PATH", cfg.Catalog.Path)
	cfg.Catalog.DSN = envStringWithFallback("BOOKS_CATALOG_DSN", cfg.Catalog.DSN)
	cfg.Catalog.Query = envStringWithFallback("BOOKS_CATALOG_QUERY", cfg.Catalog.Query)

	s3 := &cfg.Catalog.S3
	s3.Region = envStringWithFallback("BOOKS_S3_REGION", s3.Region)
	s3.Bucket = envStringWithFallback("BOOKS_S3_BUCKET", s3.Bucket)
	s3.Key = envStringWithFallback("BOOKS_S3_KEY", s3.Key)
	s3.Endpoint = envStringWithFallback("BOOKS_S3_ENDPOINT", s3.Endpoint)
	s3.AccessKeyID = envStringWithFallback("BOOKS_S3_ACCESS_KEY_ID", s3.AccessKeyID)
	s3.SecretAccessKey = envStringWithFallback("BOOKS_S3_SECRET_ACCESS_KEY", s3.SecretAccessKey)
	s3.PathStyle = envBoolWithFallback("BOOKS_S3_PATH_STYLE", s3.PathStyle)

	cfg.RateLimit.Enabled = envBoolWithFallback("BOOKS_RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.RPS = envFloatWithFallback("BOOKS_RATE_LIMIT_RPS", cfg.RateLimit.RPS)
	cfg.RateLimit.Burst = envIntWithFallback("BOOKS_RATE_LIMIT_BURST", cfg.RateLimit.Burst)

	cfg.Client.BaseURL = envStringWithFallback("BOOKS_CLIENT_BASE_URL", cfg.Client.BaseURL)
	cfg.Client.Timeout = envDurationWithFallback("BOOKS_CLIENT_TIMEOUT", cfg.Client.Timeout)

	cfg.Log.Level = envStringWithFallback("BOOKS_LOG_LEVEL", cfg.Log.Level)
}

func envString(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envStringWithFallback(key, fallback string) string {
	if v := envString(key); v != "" {
		return v
	}
	return fallback
}

func envBoolWithFallback(key string, fallback bool) bool {
	switch strings.ToLower(envString(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func envIntWithFallback(key string, fallback int) int {
	raw := envString(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloatWithFallback(key string, fallback float64) float64 {
	raw := envString(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envDurationWithFallback(key string, fallback time.Duration) time.Duration {
	raw := envString(key)
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
