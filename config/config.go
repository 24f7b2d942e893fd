package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "CANDLESTORE"

type Config struct {
	Environment string         `mapstructure:"environment"`
	Log         LogConfig      `mapstructure:"log"`
	Store       StoreConfig    `mapstructure:"store"`
	Staging     StagingConfig  `mapstructure:"staging"`
	Ingest      IngestConfig   `mapstructure:"ingest"`
	HTTP        HTTPConfig     `mapstructure:"http"`
	GitHub      GitHubConfig   `mapstructure:"github"`
	Quote       QuoteConfig    `mapstructure:"quote"`
	Server      ServerConfig   `mapstructure:"server"`
	Postgres    PostgresConfig `mapstructure:"postgres"`
	Redis       RedisConfig    `mapstructure:"redis"`
}

// Options defines the logger configuration options.
type LogConfig struct {
	Level      string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format     string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile string `mapstructure:"output_file"` // file path to store logs (optional)
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"` // "file", "postgres", "redis" or "memory"
	Dir     string `mapstructure:"dir"`     // root of the file backend
}

type StagingConfig struct {
	Dir string `mapstructure:"dir"` // defaults to the OS temp dir
}

type IngestConfig struct {
	Layout string `mapstructure:"layout"` // "auto", "narrow" or "wide"
}

type HTTPConfig struct {
	Timeout              time.Duration `mapstructure:"timeout"`
	UserAgent            string        `mapstructure:"user_agent"`
	Retries              int           `mapstructure:"retries"`
	RetryInitialInterval time.Duration `mapstructure:"retry_initial_interval"`
	MinInterval          time.Duration `mapstructure:"min_interval"`
}

type GitHubConfig struct {
	APIBaseURL    string `mapstructure:"api_base_url"`
	DefaultBranch string `mapstructure:"default_branch"`
}

type QuoteConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "dev")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_file", "")

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.dir", defaultDataDir())
	v.SetDefault("staging.dir", "")
	v.SetDefault("ingest.layout", "auto")

	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.user_agent", "candlestore/1.0")
	v.SetDefault("http.retries", 3)
	v.SetDefault("http.retry_initial_interval", 500*time.Millisecond)
	v.SetDefault("http.min_interval", 0)

	v.SetDefault("github.api_base_url", "https://api.github.com")
	v.SetDefault("github.default_branch", "main")
	v.SetDefault("quote.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("server.addr", ":8080")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "candlestore")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timezone", "UTC")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "candlestore")
}

// Load loads application configuration using Viper.
// It reads path (or config.yaml next to the executable) and overrides with
// CANDLESTORE_* environment variables. Without an explicit path a missing
// config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config") // config.yaml
		v.SetConfigType("yaml")

		ex, _ := os.Executable()
		if strings.Contains(ex, "go-build") {
			pwd, _ := os.Getwd()
			v.AddConfigPath(filepath.Join(pwd, "../../config"))
		} else {
			v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
		}
		v.AddConfigPath("config")
		v.AddConfigPath(".")
	}

	// Support environment variables with dot notation (e.g., CANDLESTORE_STORE_DIR)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "candlestore")
	}
	return "data"
}
