package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvTesting     = "testing"
	EnvProduction  = "production"

	DefaultPath = "./configs/config.yaml"
	// 开发环境默认密钥，生产环境禁止使用
	DefaultSecret = "dev-secret-key-change-in-production"
	TestSecret    = "test-secret-key"
)

type HTTP struct {
	Host              string   `mapstructure:"host"`
	Port              int      `mapstructure:"port"`
	ReadTimeoutSec    int      `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec   int      `mapstructure:"write_timeout_sec"`
	IdleTimeoutSec    int      `mapstructure:"idle_timeout_sec"`
	RequestTimeoutSec int      `mapstructure:"request_timeout_sec"`
	MaxBodyBytes      int64    `mapstructure:"max_body_bytes"`
	RateLimitRPS      float64  `mapstructure:"rate_limit_rps"`
	RateLimitBurst    int      `mapstructure:"rate_limit_burst"`
	RateLimitPerIP    bool     `mapstructure:"rate_limit_per_ip"`
	MaxInFlight       int64    `mapstructure:"max_in_flight"`
	CORSAllowOrigins  []string `mapstructure:"cors_allow_origins"`
}

type App struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	HTTP HTTP   `mapstructure:"http"`
}

type LogFile struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type Log struct {
	Level string  `mapstructure:"level"`
	JSON  bool    `mapstructure:"json"`
	File  LogFile `mapstructure:"file"`
}

type JWT struct {
	Secret         string `mapstructure:"secret"`
	Issuer         string `mapstructure:"issuer"`
	AccessTTLMin   int    `mapstructure:"access_ttl_min"`
	RefreshTTLDays int    `mapstructure:"refresh_ttl_days"`
}

func (j JWT) AccessTTL() time.Duration  { return time.Duration(j.AccessTTLMin) * time.Minute }
func (j JWT) RefreshTTL() time.Duration { return time.Duration(j.RefreshTTLDays) * 24 * time.Hour }

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTLSec   int    `mapstructure:"ttl_sec"`
}

func (r Redis) TTL() time.Duration { return time.Duration(r.TTLSec) * time.Second }

type DB struct {
	Driver             string `mapstructure:"driver"`
	DSN                string `mapstructure:"dsn"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int    `mapstructure:"conn_max_lifetime_min"`
	AutoMigrate        bool   `mapstructure:"auto_migrate"`
	LogLevel           string `mapstructure:"log_level"`
}

type Tracing struct {
	Enable      bool    `mapstructure:"enable"`
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type Config struct {
	App     App     `mapstructure:"app"`
	Log     Log     `mapstructure:"log"`
	JWT     JWT     `mapstructure:"jwt"`
	DB      DB      `mapstructure:"db"`
	Redis   Redis   `mapstructure:"redis"`
	Tracing Tracing `mapstructure:"tracing"`
}

func (c *Config) IsProduction() bool { return c.App.Env == EnvProduction }
func (c *Config) IsTesting() bool    { return c.App.Env == EnvTesting }

// Load 读取 yaml + APP_ 前缀环境变量；默认路径下文件不存在时只用默认值
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	explicit := path != ""
	if !explicit {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultPath
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if explicit {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	applyEnvDefaults(&c, v)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "project-management-api")
	v.SetDefault("app.env", EnvDevelopment)
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.read_timeout_sec", 5)
	v.SetDefault("app.http.write_timeout_sec", 15)
	v.SetDefault("app.http.idle_timeout_sec", 60)
	v.SetDefault("app.http.request_timeout_sec", 10)
	v.SetDefault("app.http.max_body_bytes", 1<<20)
	v.SetDefault("app.http.rate_limit_rps", 0)
	v.SetDefault("app.http.rate_limit_burst", 0)
	v.SetDefault("app.http.rate_limit_per_ip", true)
	v.SetDefault("app.http.max_in_flight", 0)
	v.SetDefault("app.http.cors_allow_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.filename", "logs/api.log")
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.max_age_days", 30)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("jwt.secret", DefaultSecret)
	v.SetDefault("jwt.issuer", "project-management-api")
	v.SetDefault("jwt.access_ttl_min", 60)
	v.SetDefault("jwt.refresh_ttl_days", 30)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime_min", 30)
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("db.log_level", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl_sec", 60)

	v.SetDefault("tracing.enable", false)
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// 按运行环境补默认值（仅在未显式配置时）
func applyEnvDefaults(c *Config, v *viper.Viper) {
	switch c.App.Env {
	case EnvTesting:
		if c.DB.DSN == "" {
			c.DB.Driver = "sqlite"
			c.DB.DSN = "file::memory:"
		}
		if !v.IsSet("jwt.secret") || c.JWT.Secret == DefaultSecret {
			c.JWT.Secret = TestSecret
		}
	case EnvProduction:
		if !v.IsSet("log.json") {
			c.Log.JSON = true
		}
	default:
		if c.DB.DSN == "" && c.DB.Driver == "sqlite" {
			c.DB.DSN = "dev.db"
		}
	}
}

var (
	ErrUnknownEnv        = errors.New("config: app.env must be development, testing or production")
	ErrProductionSecret  = errors.New("config: jwt.secret must be set in production")
	ErrProductionDSN     = errors.New("config: db.dsn must be set in production")
	ErrNonPositiveTokens = errors.New("config: jwt token ttl must be positive")
	ErrNonPositiveCache  = errors.New("config: redis.ttl_sec must be positive")
)

func (c *Config) Validate() error {
	switch c.App.Env {
	case EnvDevelopment, EnvTesting, EnvProduction:
	default:
		return ErrUnknownEnv
	}
	if c.JWT.AccessTTLMin <= 0 || c.JWT.RefreshTTLDays <= 0 {
		return ErrNonPositiveTokens
	}
	if c.Redis.Addr != "" && c.Redis.TTLSec <= 0 {
		return ErrNonPositiveCache
	}
	if c.IsProduction() {
		if c.JWT.Secret == "" || c.JWT.Secret == DefaultSecret {
			return ErrProductionSecret
		}
		if c.DB.DSN == "" {
			return ErrProductionDSN
		}
	}
	return nil
}
