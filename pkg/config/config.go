package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Solver    SolverConfig
	Timetable TimetableConfig
	Roster    RosterConfig
	Export    ExportConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SolverConfig describes how to reach and poll the external scheduling solver.
type SolverConfig struct {
	BaseURL         string
	RequestTimeout  time.Duration
	PollInterval    time.Duration
	MaxPollFailures int
}

// TimetableConfig tunes the grid and heatmap projections.
type TimetableConfig struct {
	// SlotBoundaries are "HH:MM" bucket lower bounds for the heatmap index.
	SlotBoundaries []string
	SlotLabels     []string
}

// RosterConfig gates the optional student-roster collaborator.
type RosterConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

// ExportConfig toggles timetable export endpoints.
type ExportConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Solver = SolverConfig{
		BaseURL:         v.GetString("SOLVER_BASE_URL"),
		RequestTimeout:  parseDuration(v.GetString("SOLVER_REQUEST_TIMEOUT"), 10*time.Second),
		PollInterval:    parseDuration(v.GetString("SOLVER_POLL_INTERVAL"), 2*time.Second),
		MaxPollFailures: v.GetInt("SOLVER_MAX_POLL_FAILURES"),
	}

	cfg.Timetable = TimetableConfig{
		SlotBoundaries: splitAndTrim(v.GetString("TIMETABLE_SLOT_BOUNDARIES")),
		SlotLabels:     splitAndTrim(v.GetString("TIMETABLE_SLOT_LABELS")),
	}

	cfg.Roster = RosterConfig{
		Enabled:  v.GetBool("ENABLE_ROSTER"),
		CacheTTL: parseDuration(v.GetString("ROSTER_CACHE_TTL"), 15*time.Minute),
	}

	cfg.Export = ExportConfig{
		Enabled: v.GetBool("ENABLE_EXPORT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "exam_roster")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SOLVER_BASE_URL", "http://localhost:9090")
	v.SetDefault("SOLVER_REQUEST_TIMEOUT", "10s")
	v.SetDefault("SOLVER_POLL_INTERVAL", "2s")
	v.SetDefault("SOLVER_MAX_POLL_FAILURES", 5)

	v.SetDefault("TIMETABLE_SLOT_BOUNDARIES", "08:00,12:00,17:00")
	v.SetDefault("TIMETABLE_SLOT_LABELS", "morning,afternoon,evening")

	v.SetDefault("ENABLE_ROSTER", false)
	v.SetDefault("ROSTER_CACHE_TTL", "15m")

	v.SetDefault("ENABLE_EXPORT", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
