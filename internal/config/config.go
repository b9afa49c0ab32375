package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgRetry "github.com/ywlim06-debug/dolddari-coach/internal/pkg/retry"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"

	CacheDriverNone   = "none"
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr           string        `env:"SERVER_ADDR,notEmpty"`
	ServerReadTimeout    time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	ServerWriteTimeout   time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"120s"`
	ServerIdleTimeout    time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	ServerRequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"110s"`
	CORSAllowedOrigins   []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Storage configuration
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"data/coach.db"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Session cache configuration
	CacheCfg CacheConfig `envPrefix:"CACHE_"`

	// External service configurations
	LLMConnectorCfg LLMConnectorConfig `envPrefix:"LLM_"`

	// Interview engine tunables
	EngineCfg EngineConfig `envPrefix:"ENGINE_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

type CacheConfig struct {
	Driver          string        `env:"DRIVER" envDefault:"memory"`
	TTL             time.Duration `env:"TTL" envDefault:"30m"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
	RedisAddr       string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
}

type LLMConnectorConfig struct {
	HTTPClientConfig
	ChatEndpoint string               `env:"CHAT_ENDPOINT" envDefault:"/v1/chat/completions"`
	Models       []string             `env:"MODELS" envSeparator:"," envDefault:"gpt-4o-mini"`
	MaxTokens    int                  `env:"MAX_TOKENS" envDefault:"1200"`
	Retry        pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"5s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"30s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// EngineConfig holds the interview engine thresholds and sampling settings.
type EngineConfig struct {
	SimilarityThreshold float64 `env:"SIMILARITY_THRESHOLD" envDefault:"0.75"`
	Strictness          string  `env:"STRICTNESS" envDefault:"lenient"`
	LenientMinLength    int     `env:"LENIENT_MIN_LENGTH" envDefault:"10"`
	StrictMinLength     int     `env:"STRICT_MIN_LENGTH" envDefault:"18"`

	SummaryMaxChars int `env:"SUMMARY_MAX_CHARS" envDefault:"1200"`
	SummaryCadence  int `env:"SUMMARY_CADENCE" envDefault:"3"`
	RecentWindow    int `env:"RECENT_WINDOW" envDefault:"4"`
	ConflictWindow  int `env:"CONFLICT_WINDOW" envDefault:"6"`

	DefaultQuestions int `env:"DEFAULT_QUESTIONS" envDefault:"7"`
	MinQuestions     int `env:"MIN_QUESTIONS" envDefault:"3"`
	MaxQuestions     int `env:"MAX_QUESTIONS" envDefault:"12"`

	QuestionTemperature float64 `env:"QUESTION_TEMPERATURE" envDefault:"0.35"`
	RetryTemperature    float64 `env:"RETRY_TEMPERATURE" envDefault:"0.8"`
	ProbeTemperature    float64 `env:"PROBE_TEMPERATURE" envDefault:"0.5"`
	ConflictTemperature float64 `env:"CONFLICT_TEMPERATURE" envDefault:"0.2"`
	SummaryTemperature  float64 `env:"SUMMARY_TEMPERATURE" envDefault:"0.2"`
	ReportTemperature   float64 `env:"REPORT_TEMPERATURE" envDefault:"0.4"`

	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"en"`
	DefaultPersona  string `env:"DEFAULT_PERSONA" envDefault:"analytical"`
	DebugTraceLimit int    `env:"DEBUG_TRACE_LIMIT" envDefault:"50"`
}

// DefaultEngineConfig mirrors the envDefault values above.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		SimilarityThreshold: 0.75,
		Strictness:          "lenient",
		LenientMinLength:    10,
		StrictMinLength:     18,
		SummaryMaxChars:     1200,
		SummaryCadence:      3,
		RecentWindow:        4,
		ConflictWindow:      6,
		DefaultQuestions:    7,
		MinQuestions:        3,
		MaxQuestions:        12,
		QuestionTemperature: 0.35,
		RetryTemperature:    0.8,
		ProbeTemperature:    0.5,
		ConflictTemperature: 0.2,
		SummaryTemperature:  0.2,
		ReportTemperature:   0.4,
		DefaultLanguage:     "en",
		DefaultPersona:      "analytical",
		DebugTraceLimit:     50,
	}
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	return parseConfig(*envFlag)
}

func parseConfig(environment string) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	// Validate storage configuration
	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required when STORAGE_DRIVER=postgres")
		}
		if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
			errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
		}
		if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
			errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
		}
	case StorageDriverSQLite:
		if cfg.SQLitePath == "" {
			errors = append(errors, "SQLITE_PATH is required when STORAGE_DRIVER=sqlite")
		}
	default:
		errors = append(errors, fmt.Sprintf("STORAGE_DRIVER must be postgres or sqlite, got %q", cfg.StorageDriver))
	}

	// Validate cache configuration
	switch cfg.CacheCfg.Driver {
	case CacheDriverNone, CacheDriverMemory:
	case CacheDriverRedis:
		if cfg.CacheCfg.RedisAddr == "" {
			errors = append(errors, "CACHE_REDIS_ADDR is required when CACHE_DRIVER=redis")
		}
	default:
		errors = append(errors, fmt.Sprintf("CACHE_DRIVER must be none, memory or redis, got %q", cfg.CacheCfg.Driver))
	}
	if cfg.CacheCfg.TTL <= 0 {
		errors = append(errors, fmt.Sprintf("CACHE_TTL must be positive, got %s", cfg.CacheCfg.TTL))
	}

	// Validate LLM connector configuration
	if !cfg.EnableMocks {
		if cfg.LLMConnectorCfg.Url == "" {
			errors = append(errors, "LLM_SERVICE_URL is required when ENABLE_MOCKS=false")
		}
		if len(cfg.LLMConnectorCfg.Models) == 0 {
			errors = append(errors, "LLM_MODELS must list at least one model")
		}
	}

	errors = append(errors, validateEngineConfig(&cfg.EngineCfg)...)

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func validateEngineConfig(cfg *EngineConfig) []string {
	var errors []string

	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 1 {
		errors = append(errors, fmt.Sprintf("ENGINE_SIMILARITY_THRESHOLD must be in (0, 1], got %v", cfg.SimilarityThreshold))
	}
	if cfg.Strictness != "lenient" && cfg.Strictness != "strict" {
		errors = append(errors, fmt.Sprintf("ENGINE_STRICTNESS must be lenient or strict, got %q", cfg.Strictness))
	}
	if cfg.SummaryMaxChars < 200 {
		errors = append(errors, fmt.Sprintf("ENGINE_SUMMARY_MAX_CHARS must be at least 200, got %d", cfg.SummaryMaxChars))
	}
	if cfg.SummaryCadence < 1 || cfg.RecentWindow < 1 || cfg.ConflictWindow < 2 {
		errors = append(errors, "ENGINE_SUMMARY_CADENCE and ENGINE_RECENT_WINDOW must be positive, ENGINE_CONFLICT_WINDOW at least 2")
	}
	if cfg.MinQuestions < 1 || cfg.MinQuestions > cfg.MaxQuestions {
		errors = append(errors, fmt.Sprintf("ENGINE_MIN_QUESTIONS must be between 1 and ENGINE_MAX_QUESTIONS(%d), got %d", cfg.MaxQuestions, cfg.MinQuestions))
	}
	if cfg.DefaultQuestions < cfg.MinQuestions || cfg.DefaultQuestions > cfg.MaxQuestions {
		errors = append(errors, fmt.Sprintf("ENGINE_DEFAULT_QUESTIONS must be between %d and %d, got %d", cfg.MinQuestions, cfg.MaxQuestions, cfg.DefaultQuestions))
	}
	switch cfg.DefaultPersona {
	case "analytical", "values", "action":
	default:
		errors = append(errors, fmt.Sprintf("ENGINE_DEFAULT_PERSONA must be analytical, values or action, got %q", cfg.DefaultPersona))
	}

	return errors
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
