package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/crichq/standings/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	DBURL              string
	CacheEnabled       bool
	CacheTTL           time.Duration
	CORSAllowedOrigins []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration

	FeedBaseURL               string
	FeedAPIKey                string
	FeedTimeout               time.Duration
	FeedMaxRetries            int
	FeedCircuitEnabled        bool
	FeedCircuitFailureCount   int
	FeedCircuitOpenTimeout    time.Duration
	FeedCircuitHalfOpenMaxReq int

	InternalJobToken string

	QueueEnabled              bool
	QueueBaseURL              string
	QueueToken                string
	QueueTargetBaseURL        string
	QueueRetries              int
	QueueDelay                time.Duration
	QueueCircuitEnabled       bool
	QueueCircuitFailureCount  int
	QueueCircuitOpenTimeout   time.Duration
	QueueCircuitHalfOpenMaxRq int

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration

	LogLevel logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	feedTimeout, err := time.ParseDuration(getEnv("CRICKET_FEED_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICKET_FEED_TIMEOUT: %w", err)
	}
	if feedTimeout <= 0 {
		return Config{}, fmt.Errorf("CRICKET_FEED_TIMEOUT must be > 0")
	}
	feedMaxRetries, err := getEnvAsInt("CRICKET_FEED_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICKET_FEED_MAX_RETRIES: %w", err)
	}
	if feedMaxRetries < 0 {
		return Config{}, fmt.Errorf("CRICKET_FEED_MAX_RETRIES must be >= 0")
	}
	feedCircuitEnabled, err := strconv.ParseBool(getEnv("CRICKET_FEED_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICKET_FEED_CIRCUIT_ENABLED: %w", err)
	}
	feedCircuitFailureCount, err := getEnvAsInt("CRICKET_FEED_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICKET_FEED_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if feedCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("CRICKET_FEED_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	feedCircuitOpenTimeout, err := time.ParseDuration(getEnv("CRICKET_FEED_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICKET_FEED_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if feedCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("CRICKET_FEED_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	feedCircuitHalfOpenMaxReq, err := getEnvAsInt("CRICKET_FEED_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICKET_FEED_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if feedCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("CRICKET_FEED_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	queueEnabled, err := strconv.ParseBool(getEnv("REFRESH_QUEUE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_QUEUE_ENABLED: %w", err)
	}
	queueRetries, err := getEnvAsInt("REFRESH_QUEUE_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_QUEUE_RETRIES: %w", err)
	}
	if queueRetries < 0 {
		return Config{}, fmt.Errorf("REFRESH_QUEUE_RETRIES must be >= 0")
	}
	queueDelay, err := time.ParseDuration(getEnv("REFRESH_QUEUE_DELAY", "0s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_QUEUE_DELAY: %w", err)
	}
	if queueDelay < 0 {
		return Config{}, fmt.Errorf("REFRESH_QUEUE_DELAY must be >= 0")
	}
	queueCircuitEnabled, err := strconv.ParseBool(getEnv("REFRESH_QUEUE_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_QUEUE_CIRCUIT_ENABLED: %w", err)
	}
	queueCircuitFailureCount, err := getEnvAsInt("REFRESH_QUEUE_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_QUEUE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if queueCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("REFRESH_QUEUE_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	queueCircuitOpenTimeout, err := time.ParseDuration(getEnv("REFRESH_QUEUE_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_QUEUE_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if queueCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("REFRESH_QUEUE_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	queueCircuitHalfOpenMaxReq, err := getEnvAsInt("REFRESH_QUEUE_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_QUEUE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if queueCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("REFRESH_QUEUE_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	queueBaseURL := strings.TrimSpace(getEnv("REFRESH_QUEUE_BASE_URL", "https://qstash.upstash.io"))
	queueToken := strings.TrimSpace(getEnv("REFRESH_QUEUE_TOKEN", ""))
	queueTargetBaseURL := strings.TrimSpace(getEnv("REFRESH_QUEUE_TARGET_BASE_URL", ""))
	internalJobToken := strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", ""))
	if queueEnabled {
		if queueToken == "" {
			return Config{}, fmt.Errorf("REFRESH_QUEUE_TOKEN is required when REFRESH_QUEUE_ENABLED=true")
		}
		if queueTargetBaseURL == "" {
			return Config{}, fmt.Errorf("REFRESH_QUEUE_TARGET_BASE_URL is required when REFRESH_QUEUE_ENABLED=true")
		}
		if internalJobToken == "" {
			return Config{}, fmt.Errorf("INTERNAL_JOB_TOKEN is required when REFRESH_QUEUE_ENABLED=true")
		}
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "cricket-standings-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:              strings.TrimSpace(getEnv("DB_URL", "")),
		CacheEnabled:       cacheEnabled,
		CacheTTL:           cacheTTL,
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,

		FeedBaseURL:               strings.TrimSpace(getEnv("CRICKET_FEED_BASE_URL", "https://api.cricketfeed.io/v1")),
		FeedAPIKey:                strings.TrimSpace(getEnv("CRICKET_FEED_API_KEY", "")),
		FeedTimeout:               feedTimeout,
		FeedMaxRetries:            feedMaxRetries,
		FeedCircuitEnabled:        feedCircuitEnabled,
		FeedCircuitFailureCount:   feedCircuitFailureCount,
		FeedCircuitOpenTimeout:    feedCircuitOpenTimeout,
		FeedCircuitHalfOpenMaxReq: feedCircuitHalfOpenMaxReq,

		InternalJobToken: internalJobToken,

		QueueEnabled:              queueEnabled,
		QueueBaseURL:              queueBaseURL,
		QueueToken:                queueToken,
		QueueTargetBaseURL:        queueTargetBaseURL,
		QueueRetries:              queueRetries,
		QueueDelay:                queueDelay,
		QueueCircuitEnabled:       queueCircuitEnabled,
		QueueCircuitFailureCount:  queueCircuitFailureCount,
		QueueCircuitOpenTimeout:   queueCircuitOpenTimeout,
		QueueCircuitHalfOpenMaxRq: queueCircuitHalfOpenMaxReq,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:       pyroscopeEnabled,
		PyroscopeServerAddress: pyroscopeServerAddress,
		PyroscopeAuthToken:     strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeUploadRate:    pyroscopeUploadRate,

		LogLevel: parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}

	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
