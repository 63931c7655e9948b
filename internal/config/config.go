package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is read once per cold start. Empty table/bucket/topic values
// disable the matching optional stage.
type Config struct {
	LogLevel string

	CacheTable      string
	CacheTTLSeconds int64

	ExportBucket string
	ExportPrefix string

	TopicArn string

	AthenaDatabase  string
	AthenaTable     string
	AthenaWorkgroup string
	AthenaOutput    string // s3://bucket/prefix/
}

func FromEnv() Config {
	return Config{
		LogLevel: envOr("LOG_LEVEL", "info"),

		CacheTable:      env("DETECTION_CACHE_TABLE"),
		CacheTTLSeconds: envInt64("DETECTION_CACHE_TTL_SECONDS", 3600),

		ExportBucket: env("BLOCKS_EXPORT_BUCKET"),
		ExportPrefix: envOr("BLOCKS_EXPORT_PREFIX", "blocks/"),

		TopicArn: env("DETECTION_TOPIC_ARN"),

		AthenaDatabase:  env("ATHENA_DATABASE"),
		AthenaTable:     env("ATHENA_TABLE"),
		AthenaWorkgroup: envOr("ATHENA_WORKGROUP", "primary"),
		AthenaOutput:    env("ATHENA_OUTPUT"),
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envOr(key, def string) string {
	if v := env(key); v != "" {
		return v
	}
	return def
}

func envInt64(key string, def int64) int64 {
	v := env(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
