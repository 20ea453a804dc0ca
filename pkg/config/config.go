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

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Cache    CacheConfig
	Engine   EngineConfig
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

// CacheConfig governs the Redis read-cache for allocation queries.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// CalendarConfig parameterizes the weekly slot grid.
type CalendarConfig struct {
	ActiveDays      []int // ISO weekday numbers, 1=Monday .. 6=Saturday
	PeriodsPerShift int
	LessonMinutes   int
	MorningStart    string
	AfternoonStart  string
	EveningStart    string
}

// WeightsConfig holds the soft-constraint penalty weights. Weights are run
// configuration, not entity data; a zero weight disables the term.
type WeightsConfig struct {
	TeacherWindow      float64
	ClassWindow        float64
	SameDayRepeat      float64
	UnevenDistribution float64
}

// EngineConfig tunes the timetable generation engine.
type EngineConfig struct {
	Calendar      CalendarConfig
	Weights       WeightsConfig
	Trajectories  int
	BaseSeed      int64
	DefaultBudget time.Duration
	MaxBudget     time.Duration
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

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	cfg.Engine = EngineConfig{
		Calendar: CalendarConfig{
			ActiveDays:      parseDays(v.GetString("ENGINE_ACTIVE_DAYS")),
			PeriodsPerShift: v.GetInt("ENGINE_PERIODS_PER_SHIFT"),
			LessonMinutes:   v.GetInt("ENGINE_LESSON_MINUTES"),
			MorningStart:    v.GetString("ENGINE_MORNING_START"),
			AfternoonStart:  v.GetString("ENGINE_AFTERNOON_START"),
			EveningStart:    v.GetString("ENGINE_EVENING_START"),
		},
		Weights: WeightsConfig{
			TeacherWindow:      v.GetFloat64("ENGINE_WEIGHT_TEACHER_WINDOW"),
			ClassWindow:        v.GetFloat64("ENGINE_WEIGHT_CLASS_WINDOW"),
			SameDayRepeat:      v.GetFloat64("ENGINE_WEIGHT_SAME_DAY_REPEAT"),
			UnevenDistribution: v.GetFloat64("ENGINE_WEIGHT_UNEVEN_DISTRIBUTION"),
		},
		Trajectories:  v.GetInt("ENGINE_TRAJECTORIES"),
		BaseSeed:      v.GetInt64("ENGINE_BASE_SEED"),
		DefaultBudget: parseDuration(v.GetString("ENGINE_DEFAULT_BUDGET"), 60*time.Second),
		MaxBudget:     parseDuration(v.GetString("ENGINE_MAX_BUDGET"), 280*time.Second),
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
	v.SetDefault("DB_NAME", "horario")
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

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "5m")

	// Weekly grid defaults: Monday-Friday, six 50-minute periods per shift.
	v.SetDefault("ENGINE_ACTIVE_DAYS", "1,2,3,4,5")
	v.SetDefault("ENGINE_PERIODS_PER_SHIFT", 6)
	v.SetDefault("ENGINE_LESSON_MINUTES", 50)
	v.SetDefault("ENGINE_MORNING_START", "07:30")
	v.SetDefault("ENGINE_AFTERNOON_START", "13:10")
	v.SetDefault("ENGINE_EVENING_START", "18:50")

	v.SetDefault("ENGINE_WEIGHT_TEACHER_WINDOW", 2.0)
	v.SetDefault("ENGINE_WEIGHT_CLASS_WINDOW", 2.0)
	v.SetDefault("ENGINE_WEIGHT_SAME_DAY_REPEAT", 1.5)
	v.SetDefault("ENGINE_WEIGHT_UNEVEN_DISTRIBUTION", 1.0)

	v.SetDefault("ENGINE_TRAJECTORIES", 4)
	v.SetDefault("ENGINE_BASE_SEED", 1)
	v.SetDefault("ENGINE_DEFAULT_BUDGET", "60s")
	// Kept strictly below the upstream request timeout (~290s) so the engine
	// always answers within its own budget.
	v.SetDefault("ENGINE_MAX_BUDGET", "280s")
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

func parseDays(raw string) []int {
	var days []int
	for _, part := range splitAndTrim(raw) {
		switch part {
		case "1", "2", "3", "4", "5", "6":
			days = append(days, int(part[0]-'0'))
		}
	}
	if len(days) == 0 {
		return []int{1, 2, 3, 4, 5}
	}
	return days
}
