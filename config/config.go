package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MaxMessageColumn tweets.tweet_data 的列宽
const MaxMessageColumn = 280

// Config 应用配置
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Log        LogConfig        `mapstructure:"log"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Message    MessageConfig    `mapstructure:"message"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres, sqlite
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	FeedTTL time.Duration `mapstructure:"feed_ttl"`
}

type NotifyConfig struct {
	Backend    string `mapstructure:"backend"` // log, redis, nats
	Queue      string `mapstructure:"queue"`
	NatsURL    string `mapstructure:"nats_url"`
	NatsStream string `mapstructure:"nats_stream"`
	Subject    string `mapstructure:"subject"`
}

type DispatcherConfig struct {
	Workers   int           `mapstructure:"workers"`
	QueueSize int           `mapstructure:"queue_size"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type SMTPConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	From        string `mapstructure:"from"`
	MaxAttempts int    `mapstructure:"max_attempts"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	Issuer     string        `mapstructure:"issuer"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

type LogConfig struct {
	Level        string        `mapstructure:"level"`
	Development  bool          `mapstructure:"development"`
	File         string        `mapstructure:"file"`
	MaxAge       time.Duration `mapstructure:"max_age"`
	RotationTime time.Duration `mapstructure:"rotation_time"`
}

type SentryConfig struct {
	DSN              string  `mapstructure:"dsn"`
	Environment      string  `mapstructure:"environment"`
	TracesSampleRate float64 `mapstructure:"traces_sample_rate"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
	Insecure    bool    `mapstructure:"insecure"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type MessageConfig struct {
	MaxLength int `mapstructure:"max_length"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "host=localhost user=postgres password=postgres dbname=socialfeed port=5432 sslmode=disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.feed_ttl", 2*time.Minute)

	v.SetDefault("notify.backend", "log")
	v.SetDefault("notify.queue", "mail:activation")
	v.SetDefault("notify.nats_url", "nats://localhost:4222")
	v.SetDefault("notify.nats_stream", "NOTIFY")
	v.SetDefault("notify.subject", "notify.email.activation")

	v.SetDefault("dispatcher.workers", 4)
	v.SetDefault("dispatcher.queue_size", 1024)
	v.SetDefault("dispatcher.timeout", 5*time.Second)

	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.max_attempts", 3)

	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.issuer", "social-feed")
	v.SetDefault("auth.bcrypt_cost", 12)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_age", 7*24*time.Hour)
	v.SetDefault("log.rotation_time", 24*time.Hour)

	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.traces_sample_rate", 0.1)

	v.SetDefault("tracing.service_name", "social-feed")
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("tracing.insecure", true)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.rps", 20)
	v.SetDefault("ratelimit.burst", 40)

	v.SetDefault("message.max_length", 280)
}

// Load 读取 .env、config.yaml 与 SOCIALFEED_ 前缀环境变量
func Load(paths ...string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("SOCIALFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 启动前的基本校验
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Notify.Backend {
	case "log", "redis", "nats":
	default:
		return fmt.Errorf("unsupported notify backend %q", c.Notify.Backend)
	}
	if c.Message.MaxLength <= 0 || c.Message.MaxLength > MaxMessageColumn {
		return fmt.Errorf("message.max_length must be in 1..%d", MaxMessageColumn)
	}
	if c.Server.Mode == "release" && c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required in release mode")
	}
	return nil
}
