package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. HMS_JWT_SECRET.
const EnvPrefix = "HMS"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" split_words:"true"`
	Log       LogConfig       `mapstructure:"log"`
	Security  SecurityConfig  `mapstructure:"security"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" split_words:"true"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" split_words:"true"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" split_words:"true"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" split_words:"true"`
}

// DatabaseConfig takes either a full URL or the individual DSN fields.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" split_words:"true"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" split_words:"true"`
}

type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	Issuer        string `mapstructure:"issuer"`
	Audience      string `mapstructure:"audience"`
	ExpiryMinutes int    `mapstructure:"expiry_minutes" split_words:"true"`
}

func (c JWTConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryMinutes) * time.Minute
}

// RedisConfig enables the shared token revocation store when URL is set.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type RateLimitConfig struct {
	LoginRPS   float64 `mapstructure:"login_rps" split_words:"true"`
	LoginBurst int     `mapstructure:"login_burst" split_words:"true"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type SecurityConfig struct {
	BcryptCost int  `mapstructure:"bcrypt_cost" split_words:"true"`
	HSTS       bool `mapstructure:"hsts"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins" split_words:"true"`
}

// BootstrapConfig names the admin created at startup when it is missing.
type BootstrapConfig struct {
	AdminUsername string `mapstructure:"admin_username" split_words:"true"`
	AdminPassword string `mapstructure:"admin_password" split_words:"true"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "hms")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("jwt.issuer", "hms-api")
	v.SetDefault("jwt.audience", "hms-clients")
	v.SetDefault("jwt.expiry_minutes", 60)

	v.SetDefault("rate_limit.login_rps", 1.0)
	v.SetDefault("rate_limit.login_burst", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("cors.allow_origins", []string{"*"})
}

// Load reads config.yaml from path, or from . and ./config when path is
// empty, then applies HMS_* environment overrides. A missing file is not an
// error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.JWT.Secret) == "" {
		problems = append(problems, "jwt.secret is required")
	}
	if c.JWT.ExpiryMinutes <= 0 {
		problems = append(problems, "jwt.expiry_minutes must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.RateLimit.LoginRPS <= 0 || c.RateLimit.LoginBurst <= 0 {
		problems = append(problems, "rate_limit.login_rps and rate_limit.login_burst must be positive")
	}
	if (c.Bootstrap.AdminUsername == "") != (c.Bootstrap.AdminPassword == "") {
		problems = append(problems, "bootstrap.admin_username and bootstrap.admin_password must be set together")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
