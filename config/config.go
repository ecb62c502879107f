package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type AppConfig struct {
	Port      string
	Timezone  string
	StaticDir string

	DBDialect string // sqlite|postgres
	DBPath    string
	DBURL     string

	MLPython          string
	MLDir             string
	MLEvalScript      string
	MLRecommendScript string
	MLTimeout         time.Duration
	MLMaxConcurrency  int

	AIEndpoint string
	AIAPIKey   string
	AIModel    string

	WeatherEndpoint string
	WeatherAPIKey   string

	EmbEndpoint string
	EmbAPIKey   string
	EmbModel    string

	KBAllowedDomains string
	CropRulesPath    string

	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and the environment. envErr reports a .env
// problem so the caller can log it once a logger exists.
func Load() (cfg AppConfig, envErr error) {
	envErr = godotenv.Load()

	get := func(k, def string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		return def
	}
	cfg = AppConfig{
		Port:      get("PORT", "3000"),
		Timezone:  get("TZ", "Africa/Nairobi"),
		StaticDir: get("STATIC_DIR", "public"),

		DBDialect: get("DB_DIALECT", "sqlite"),
		DBPath:    get("DB_PATH", "mkulima.db"),
		DBURL:     get("DATABASE_URL", ""),

		MLPython:          get("ML_PYTHON", "python3"),
		MLDir:             get("ML_DIR", "ml"),
		MLEvalScript:      get("ML_EVAL_SCRIPT", "process_predict.py"),
		MLRecommendScript: get("ML_RECOMMEND_SCRIPT", "predict.py"),
		MLTimeout:         duration(get("ML_TIMEOUT", "30s"), 30*time.Second),
		MLMaxConcurrency:  integer(get("ML_MAX_CONCURRENCY", "4"), 4),

		AIEndpoint: get("AI_ENDPOINT", ""),
		AIAPIKey:   get("AI_API_KEY", ""),
		AIModel:    get("AI_MODEL", "deepseek-ai/DeepSeek-V3"),

		WeatherEndpoint: get("WEATHER_ENDPOINT", "https://api.openweathermap.org"),
		WeatherAPIKey:   get("WEATHER_API_KEY", ""),

		EmbEndpoint: get("EMB_ENDPOINT", ""),
		EmbAPIKey:   get("EMB_API_KEY", ""),
		EmbModel:    get("EMB_MODEL", ""),

		KBAllowedDomains: get("KB_ALLOWED_DOMAINS", ""),
		CropRulesPath:    get("CROP_RULES_PATH", ""),

		LogLevel:  get("LOG_LEVEL", "info"),
		LogFormat: get("LOG_FORMAT", "json"),
	}
	return cfg, envErr
}

// DSN returns the connection string for the configured dialect.
func (c AppConfig) DSN() string {
	if c.DBDialect == "postgres" {
		return c.DBURL
	}
	return c.DBPath
}

// Fields renders the config for logging with secrets masked.
func (c AppConfig) Fields() []zap.Field {
	return []zap.Field{
		zap.String("port", c.Port),
		zap.String("db_dialect", c.DBDialect),
		zap.String("db", mask(c.DSN(), c.DBDialect == "postgres")),
		zap.String("ml_dir", c.MLDir),
		zap.Duration("ml_timeout", c.MLTimeout),
		zap.Int("ml_max_concurrency", c.MLMaxConcurrency),
		zap.Bool("ai_configured", c.AIEndpoint != "" && c.AIAPIKey != ""),
		zap.Bool("weather_configured", c.WeatherAPIKey != ""),
		zap.Bool("embeddings_configured", c.EmbEndpoint != ""),
	}
}

func mask(s string, secret bool) string {
	if !secret || s == "" {
		return s
	}
	return "***"
}

func duration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}

func integer(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return def
}
