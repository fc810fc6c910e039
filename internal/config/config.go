package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	CatalogSourceFile     = "file"
	CatalogSourcePostgres = "postgres"

	JobStoreMemory = "memory"
	JobStoreRedis  = "redis"
)

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Catalog  CatalogConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Area     AreaConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
	// PublicBaseURL перекрывает protocol://host при построении resultsUrl
	PublicBaseURL string
	AllowOrigins  string
}

type AuthConfig struct {
	Token string
}

type CatalogConfig struct {
	Source string
	Path   string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AreaConfig - параметры асинхронного поиска по радиусу
type AreaConfig struct {
	JobStore      string
	Delay         time.Duration
	Retention     time.Duration
	MaxJobs       int
	SweepInterval time.Duration
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	setDefaults(v)

	// .env необязателен: в контейнере всё приходит через переменные окружения
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("API_ENV", "development")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("AUTH_TOKEN", "dGhlc2VjcmV0dG9rZW4=")
	v.SetDefault("CATALOG_SOURCE", CatalogSourceFile)
	v.SetDefault("CATALOG_PATH", "addresses.json")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 5)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("JOB_STORE", JobStoreMemory)
	v.SetDefault("AREA_DELAY_MS", 2000)
	v.SetDefault("AREA_RETENTION_SEC", 3600)
	v.SetDefault("AREA_MAX_JOBS", 10000)
	v.SetDefault("AREA_SWEEP_INTERVAL_SEC", 60)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:          v.GetString("API_HOST"),
			Port:          v.GetInt("API_PORT"),
			Env:           v.GetString("API_ENV"),
			PublicBaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
			AllowOrigins:  v.GetString("CORS_ALLOW_ORIGINS"),
		},
		Auth: AuthConfig{
			Token: v.GetString("AUTH_TOKEN"),
		},
		Catalog: CatalogConfig{
			Source: strings.ToLower(v.GetString("CATALOG_SOURCE")),
			Path:   v.GetString("CATALOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Area: AreaConfig{
			JobStore:      strings.ToLower(v.GetString("JOB_STORE")),
			Delay:         time.Duration(v.GetInt("AREA_DELAY_MS")) * time.Millisecond,
			Retention:     time.Duration(v.GetInt("AREA_RETENTION_SEC")) * time.Second,
			MaxJobs:       v.GetInt("AREA_MAX_JOBS"),
			SweepInterval: time.Duration(v.GetInt("AREA_SWEEP_INTERVAL_SEC")) * time.Second,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case CatalogSourceFile, CatalogSourcePostgres:
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.Catalog.Source)
	}

	switch c.Area.JobStore {
	case JobStoreMemory, JobStoreRedis:
	default:
		return fmt.Errorf("unknown JOB_STORE %q", c.Area.JobStore)
	}

	if c.Auth.Token == "" {
		return errors.New("AUTH_TOKEN must not be empty")
	}
	// при нулевой задержке сканирование может завершиться раньше, чем Submit вернет id
	if c.Area.Delay <= 0 {
		return errors.New("AREA_DELAY_MS must be positive")
	}
	if c.Area.Retention < 0 {
		return errors.New("AREA_RETENTION_SEC must not be negative")
	}
	if c.Area.MaxJobs < 0 {
		return errors.New("AREA_MAX_JOBS must not be negative")
	}

	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DSN - строка подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
