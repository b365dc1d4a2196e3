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

// RosterRemovalPolicy controls what happens to teachers that disappear from
// a newly imported roster file.
type RosterRemovalPolicy string

const (
	RosterRemovalSoftDelete RosterRemovalPolicy = "soft_delete"
	RosterRemovalFlagOnly   RosterRemovalPolicy = "flag_only"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig

	Imports     ImportsConfig
	Matching    MatchingConfig
	Progress    ProgressConfig
	Locality    LocalityConfig
	Tenants     TenantsConfig
	ReviewQueue ReviewQueueConfig
	Cache       CacheConfig
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

// ImportsConfig governs batch import behaviour across all sources.
type ImportsConfig struct {
	Enabled         bool
	RunLockTTL      time.Duration
	MaxFileSizeByte int64
	RosterRemoval   RosterRemovalPolicy
}

// MatchingConfig tunes identity resolution.
type MatchingConfig struct {
	FuzzyThreshold float64
	FuzzyEnabled   bool
}

// ProgressConfig defines the reporting window used for teacher progress derivation.
type ProgressConfig struct {
	AcademicYearStartMonth int
	DefaultTargetSessions  int
}

// LocalityConfig lists the cities and states treated as local when deriving
// volunteer locality status.
type LocalityConfig struct {
	LocalCities []string
	LocalStates []string
}

// TenantsConfig gates district store provisioning and routing.
type TenantsConfig struct {
	Enabled      bool
	SchemaPrefix string
}

// ReviewQueueConfig gates the manual review endpoints.
type ReviewQueueConfig struct {
	Enabled bool
}

// CacheConfig tunes derived-status caching.
type CacheConfig struct {
	Enabled  bool
	TTL      time.Duration
	KeySpace string
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

	maxImportSize := v.GetInt64("IMPORTS_MAX_FILE_SIZE")
	if maxImportSize <= 0 {
		maxImportSize = 20 * 1024 * 1024
	}
	cfg.Imports = ImportsConfig{
		Enabled:         v.GetBool("ENABLE_IMPORTS"),
		RunLockTTL:      parseDuration(v.GetString("IMPORTS_RUN_LOCK_TTL"), 30*time.Minute),
		MaxFileSizeByte: maxImportSize,
		RosterRemoval:   rosterPolicy(v.GetString("IMPORTS_ROSTER_REMOVAL_POLICY")),
	}

	cfg.Matching = MatchingConfig{
		FuzzyThreshold: v.GetFloat64("MATCHING_FUZZY_THRESHOLD"),
		FuzzyEnabled:   v.GetBool("MATCHING_FUZZY_ENABLED"),
	}

	cfg.Progress = ProgressConfig{
		AcademicYearStartMonth: v.GetInt("PROGRESS_YEAR_START_MONTH"),
		DefaultTargetSessions:  v.GetInt("PROGRESS_DEFAULT_TARGET_SESSIONS"),
	}

	cfg.Locality = LocalityConfig{
		LocalCities: splitAndTrim(v.GetString("LOCALITY_CITIES")),
		LocalStates: splitAndTrim(v.GetString("LOCALITY_STATES")),
	}

	cfg.Tenants = TenantsConfig{
		Enabled:      v.GetBool("ENABLE_TENANTS"),
		SchemaPrefix: v.GetString("TENANTS_SCHEMA_PREFIX"),
	}

	cfg.ReviewQueue = ReviewQueueConfig{
		Enabled: v.GetBool("ENABLE_REVIEW_QUEUE"),
	}

	cfg.Cache = CacheConfig{
		Enabled:  v.GetBool("ENABLE_STATUS_CACHE"),
		TTL:      parseDuration(v.GetString("STATUS_CACHE_TTL"), 10*time.Minute),
		KeySpace: v.GetString("STATUS_CACHE_KEYSPACE"),
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
	v.SetDefault("DB_NAME", "volunteer_hub")
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

	v.SetDefault("ENABLE_IMPORTS", true)
	v.SetDefault("IMPORTS_RUN_LOCK_TTL", "30m")
	v.SetDefault("IMPORTS_MAX_FILE_SIZE", 20*1024*1024)
	v.SetDefault("IMPORTS_ROSTER_REMOVAL_POLICY", string(RosterRemovalFlagOnly))

	v.SetDefault("MATCHING_FUZZY_THRESHOLD", 0.85)
	v.SetDefault("MATCHING_FUZZY_ENABLED", true)

	v.SetDefault("PROGRESS_YEAR_START_MONTH", 7)
	v.SetDefault("PROGRESS_DEFAULT_TARGET_SESSIONS", 1)

	v.SetDefault("LOCALITY_CITIES", "")
	v.SetDefault("LOCALITY_STATES", "")

	v.SetDefault("ENABLE_TENANTS", false)
	v.SetDefault("TENANTS_SCHEMA_PREFIX", "district_")

	v.SetDefault("ENABLE_REVIEW_QUEUE", true)

	v.SetDefault("ENABLE_STATUS_CACHE", false)
	v.SetDefault("STATUS_CACHE_TTL", "10m")
	v.SetDefault("STATUS_CACHE_KEYSPACE", "vhub")
}

func rosterPolicy(raw string) RosterRemovalPolicy {
	switch RosterRemovalPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case RosterRemovalSoftDelete:
		return RosterRemovalSoftDelete
	case RosterRemovalFlagOnly:
		return RosterRemovalFlagOnly
	default:
		return RosterRemovalFlagOnly
	}
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
