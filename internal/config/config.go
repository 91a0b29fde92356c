package config

import (
	"os"
	"strconv"
	"time"
)

// Config is built once at startup and passed by reference into every
// component. Nothing reads the environment after Load returns.
type Config struct {
	HTTPAddr      string
	PageSize      int
	SourceTimeout time.Duration

	AdzunaAppID   string
	AdzunaAppKey  string
	AdzunaBaseURL string

	FindWorkAPIKey  string
	FindWorkBaseURL string

	JoobleAPIKey  string
	JoobleBaseURL string

	ReedAPIKey  string
	ReedBaseURL string

	MuseBaseURL string

	CompletionsAPIKey  string
	CompletionsBaseURL string
	CompletionsModel   string
	CompletionsTimeout time.Duration

	GeoBaseURL      string
	DefaultCurrency string

	OTLPCollectorURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	NATSURL         string
	NATSConnTimeout time.Duration

	ClickHouseDSN          string
	ClickHouseMaxOpenConns int
	ClickHouseMaxIdleConns int
	ClickHouseConnMaxLife  time.Duration
	ClickHouseUsername     string
	ClickHousePassword     string
	ClickHouseDatabase     string
}

func Load() (*Config, error) {
	config := &Config{
		HTTPAddr:      getEnvString("HTTP_ADDR", ":8080"),
		PageSize:      getEnvInt("PAGE_SIZE", 20),
		SourceTimeout: getEnvDuration("SOURCE_TIMEOUT", 15*time.Second),

		AdzunaAppID:   getEnvString("ADZUNA_APP_ID", ""),
		AdzunaAppKey:  getEnvString("ADZUNA_APP_KEY", ""),
		AdzunaBaseURL: getEnvString("ADZUNA_BASE_URL", "https://api.adzuna.com/v1/api"),

		FindWorkAPIKey:  getEnvString("FINDWORK_API_KEY", ""),
		FindWorkBaseURL: getEnvString("FINDWORK_BASE_URL", "https://findwork.dev/api"),

		JoobleAPIKey:  getEnvString("JOOBLE_API_KEY", ""),
		JoobleBaseURL: getEnvString("JOOBLE_BASE_URL", "https://jooble.org/api"),

		ReedAPIKey:  getEnvString("REED_API_KEY", ""),
		ReedBaseURL: getEnvString("REED_BASE_URL", "https://www.reed.co.uk/api/1.0"),

		MuseBaseURL: getEnvString("MUSE_BASE_URL", "https://www.themuse.com/api/public"),

		CompletionsAPIKey:  getEnvString("COMPLETIONS_API_KEY", ""),
		CompletionsBaseURL: getEnvString("COMPLETIONS_BASE_URL", "https://api.openai.com/v1"),
		CompletionsModel:   getEnvString("COMPLETIONS_MODEL", "gpt-4o-mini"),
		CompletionsTimeout: getEnvDuration("COMPLETIONS_TIMEOUT", 20*time.Second),

		GeoBaseURL:      getEnvString("GEO_BASE_URL", "https://ipapi.co"),
		DefaultCurrency: getEnvString("DEFAULT_CURRENCY", "USD"),

		OTLPCollectorURL: getEnvString("OTLP_COLLECTOR_URL", ""),

		RedisAddr:     getEnvString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 24*time.Hour),

		NATSURL:         getEnvString("NATS_URL", ""),
		NATSConnTimeout: getEnvDuration("NATS_CONN_TIMEOUT", 10*time.Second),

		ClickHouseDSN:          getEnvString("CLICKHOUSE_DSN", "localhost:9000"),
		ClickHouseMaxOpenConns: getEnvInt("CLICKHOUSE_MAX_OPEN_CONNS", 10),
		ClickHouseMaxIdleConns: getEnvInt("CLICKHOUSE_MAX_IDLE_CONNS", 5),
		ClickHouseConnMaxLife:  getEnvDuration("CLICKHOUSE_CONN_MAX_LIFE", time.Hour),
		ClickHouseUsername:     getEnvString("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword:     getEnvString("CLICKHOUSE_PASSWORD", ""),
		ClickHouseDatabase:     getEnvString("CLICKHOUSE_DATABASE", "jobsearch"),
	}

	return config, nil
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
