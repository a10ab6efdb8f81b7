package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"` // sqlite / postgres
	DSN     string `mapstructure:"dsn"`    // file path for sqlite, URL for postgres
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SecurityConfig struct {
	BcryptCost  int `mapstructure:"bcrypt_cost"`
	HashWorkers int `mapstructure:"hash_workers"`
}

type SessionConfig struct {
	Backend       string `mapstructure:"backend"` // database / redis
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	SweepCron     string `mapstructure:"sweep_cron"` // empty disables the sweep
}

type LogConfig struct {
	File   string `mapstructure:"file"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text / json
}

type AppSubConfig struct {
	PageSize int  `mapstructure:"page_size"`
	SeedDemo bool `mapstructure:"seed_demo"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Session  SessionConfig  `mapstructure:"session"`
	Log      LogConfig      `mapstructure:"log"`
	App      AppSubConfig   `mapstructure:"app"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/reforco.db")
	v.SetDefault("database.log_mode", false)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "reforco-escolar")
	v.SetDefault("jwt.expire_hours", 7*24)

	v.SetDefault("security.bcrypt_cost", 10)
	v.SetDefault("security.hash_workers", 0) // 0 = runtime.NumCPU()

	v.SetDefault("session.backend", "database")
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.redis_password", "")
	v.SetDefault("session.redis_db", 0)
	v.SetDefault("session.sweep_cron", "")

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("app.page_size", 20)
	v.SetDefault("app.seed_demo", true)
}

// Load reads configuration from the given file (e.g. "config.yaml").
// A missing file is not an error when path is empty; every key has a default
// and can be overridden through RFE_* environment variables, e.g. RFE_JWT_SECRET.
func Load(path string) (*Config, error) {
	// local secrets; existing env vars win
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("RFE") // reforco escolar
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("config: jwt.secret is required")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unsupported database.driver %q", c.Database.Driver)
	}
	switch c.Session.Backend {
	case "database", "redis":
	default:
		return fmt.Errorf("config: unsupported session.backend %q", c.Session.Backend)
	}
	if c.JWT.ExpireHours <= 0 {
		c.JWT.ExpireHours = 7 * 24
	}
	if c.App.PageSize <= 0 || c.App.PageSize > 100 {
		c.App.PageSize = 20
	}
	return nil
}
