package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	Forecast  ForecastConfig  `mapstructure:"forecast"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Feed      FeedConfig      `mapstructure:"feed"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
	CORS         CORSConfig `mapstructure:"cors"`
}

// CORSConfig cross-origin settings
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL settings
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// DSN builds the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT settings
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// LogConfig logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ForecastConfig blood demand forecasting settings
type ForecastConfig struct {
	DaysThreshold     int                `mapstructure:"days_threshold"`
	TrainingSamples   int                `mapstructure:"training_samples"`
	Seed              uint64             `mapstructure:"seed"`
	MinR2             float64            `mapstructure:"min_r2"`
	ModelPath         string             `mapstructure:"model_path"`
	DefaultPopulation float64            `mapstructure:"default_population"`
	RegionPopulations map[string]float64 `mapstructure:"region_populations"`
	MaxForecastBatch  int                `mapstructure:"max_forecast_batch"`
	MaxMatchBatch     int                `mapstructure:"max_match_batch"`
}

// SchedulerConfig periodic batch jobs (cron expressions)
type SchedulerConfig struct {
	Enabled               bool   `mapstructure:"enabled"`
	ExpiryScanSpec        string `mapstructure:"expiry_scan_spec"`
	PredictionRefreshSpec string `mapstructure:"prediction_refresh_spec"`
}

// FeedConfig external disaster prediction feed
type FeedConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads configuration.
// Precedence: environment > config file > defaults. A .env file, when
// present, is loaded into the environment first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// ── defaults ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_body_bytes", 10<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "relief_ops")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "12h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("forecast.days_threshold", 7)
	v.SetDefault("forecast.training_samples", 5000)
	v.SetDefault("forecast.seed", 42)
	v.SetDefault("forecast.min_r2", 0.5)
	v.SetDefault("forecast.model_path", "models/blood-demand")
	v.SetDefault("forecast.default_population", 40)
	v.SetDefault("forecast.region_populations", map[string]float64{
		"Southeast Asia": 50,
		"East Asia":      45,
		"South Asia":     60,
		"Central Asia":   30,
		"Western Asia":   35,
	})
	v.SetDefault("forecast.max_forecast_batch", 20)
	v.SetDefault("forecast.max_match_batch", 50)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.expiry_scan_spec", "0 6 * * *")
	v.SetDefault("scheduler.prediction_refresh_spec", "*/30 * * * *")

	v.SetDefault("feed.url", "")
	v.SetDefault("feed.timeout", "10s")

	// ── config file ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── environment ──
	v.SetEnvPrefix("RELIEF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the service cannot run without
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("invalid config: auth.jwt_secret must be set")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("invalid config: auth.jwt_secret must be at least 16 characters")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port must be within 1-65535")
	}
	if c.Forecast.DaysThreshold <= 0 {
		return fmt.Errorf("invalid config: forecast.days_threshold must be positive")
	}
	if c.Forecast.MinR2 <= 0 || c.Forecast.MinR2 >= 1 {
		return fmt.Errorf("invalid config: forecast.min_r2 must be within (0,1)")
	}
	return nil
}
