package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	ContentStore ContentStoreConfig `mapstructure:"content_store"`
	Assets       AssetsConfig       `mapstructure:"assets"`
	Tracing      TracingConfig      `mapstructure:"tracing"`
	Redis        RedisConfig
	CORS         CORSConfig      `mapstructure:"cors"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit"`

	// runtime flags, set from the command line rather than the file
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

// ContentStoreConfig selects and configures the lesson content backend:
// "github" talks to the Contents API, "git" writes a local checkout and
// shells out to git, "memory" is for development.
type ContentStoreConfig struct {
	Type string `mapstructure:"type"`

	GitHubOwner  string `mapstructure:"github_owner"`
	GitHubRepo   string `mapstructure:"github_repo"`
	GitHubBranch string `mapstructure:"github_branch"`
	GitHubToken  string `mapstructure:"github_token"`
	GitHubAPIURL string `mapstructure:"github_api_url"`

	GitWorkdir string `mapstructure:"git_workdir"`
	GitPush    bool   `mapstructure:"git_push"`
}

type AssetsConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("SATIFY")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Content store; the PAT is server configuration and never comes from a client
	viper.BindEnv("content_store.type", "CONTENT_STORE_TYPE")
	viper.BindEnv("content_store.github_owner", "GITHUB_OWNER")
	viper.BindEnv("content_store.github_repo", "GITHUB_REPO")
	viper.BindEnv("content_store.github_branch", "GITHUB_BRANCH")
	viper.BindEnv("content_store.github_token", "GITHUB_TOKEN")
	viper.BindEnv("content_store.git_workdir", "GIT_WORKDIR")

	// Assets
	viper.BindEnv("assets.type", "ASSETS_TYPE")
	viper.BindEnv("assets.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("assets.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("assets.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("assets.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if cfg.ContentStore.GitHubAPIURL == "" {
		cfg.ContentStore.GitHubAPIURL = "https://api.github.com"
	}
	if cfg.ContentStore.GitHubBranch == "" {
		cfg.ContentStore.GitHubBranch = "main"
	}

	if cfg.Assets.Type == "local" {
		if _, err := os.Stat(cfg.Assets.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Assets.LocalPath, 0755)
		}
	}

	return &cfg, nil
}
