// config/config.go
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration stores all the configurations
type Configuration struct {
	Server        ServerConfiguration
	Database      DatabaseConfiguration
	Auth          AuthConfiguration
	Redis         RedisConfiguration
	RateLimit     RateLimitConfiguration
	Slack         SlackConfiguration
	Elasticsearch ElasticsearchConfiguration
	Log           LogConfiguration
	CSV           CSVConfiguration
}

// ServerConfiguration stores the port and other web server settings
type ServerConfiguration struct {
	Port            string
	BaseURL         string
	ShutdownTimeout time.Duration
}

// DatabaseConfiguration stores data for database connection
type DatabaseConfiguration struct {
	Driver string
	DSN    string
}

// AuthConfiguration holds the bearer token settings
type AuthConfiguration struct {
	JWTSecret string
	Issuer    string
	DevMode   bool
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Addr              string
	Password          string
	DB                int
	OwnershipCacheTTL time.Duration
}

type RateLimitConfiguration struct {
	Requests int
	Window   time.Duration
}

// SlackConfiguration is optional; an empty token logs notifications instead
type SlackConfiguration struct {
	Token  string
	APIURL string
}

// ElasticsearchConfiguration stores data for Elasticsearch connection
type ElasticsearchConfiguration struct {
	URL   string
	Index string
}

type LogConfiguration struct {
	Level       string
	OutputPaths []string
}

type CSVConfiguration struct {
	MaxBytes int64
	MaxRows  int
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.baseURL", "http://localhost:3000")
	v.SetDefault("server.shutdownTimeout", "5s")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "file:accessflow.db?_pragma=foreign_keys(1)")
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.issuer", "accessflow")
	v.SetDefault("auth.devMode", false)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ownershipCacheTTL", "1m")
	v.SetDefault("rateLimit.requests", 100)
	v.SetDefault("rateLimit.window", "1m")
	v.SetDefault("slack.token", "")
	v.SetDefault("slack.apiURL", "")
	v.SetDefault("elasticsearch.url", "")
	v.SetDefault("elasticsearch.index", "access-audit-logs")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.outputPaths", []string{"stdout"})
	v.SetDefault("csv.maxBytes", 5*1024*1024)
	v.SetDefault("csv.maxRows", 1000)
}

// Load reads the optional config file at path (or config/config.yaml),
// then environment variables prefixed with ACCESSFLOW_.
func Load(path string) (*Configuration, error) {
	if err := godotenv.Load(); err == nil {
		log.Println(".env file loaded")
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("config")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("ACCESSFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else if path != "" {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Configuration) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Auth.JWTSecret == "" {
		if !c.Auth.DevMode {
			return fmt.Errorf("auth.jwtSecret is required outside dev mode")
		}
		c.Auth.JWTSecret = "dev-secret-only"
	}
	if c.CSV.MaxRows <= 0 || c.CSV.MaxBytes <= 0 {
		return fmt.Errorf("csv limits must be positive")
	}
	return nil
}
