// Package config loads ledger settings from defaults, an optional YAML file,
// a local .env file and the process environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
	LogMode     bool   `mapstructure:"log_mode"`
}

type SessionConfig struct {
	// Secret signs session and flash cookies. Empty means a random key is
	// generated per process, which logs everyone out on restart.
	Secret       string        `mapstructure:"secret"`
	CookieName   string        `mapstructure:"cookie_name"`
	TTL          time.Duration `mapstructure:"ttl"`
	SecureCookie bool          `mapstructure:"secure_cookie"`
}

type TemplatesConfig struct {
	Dir    string `mapstructure:"dir"`
	Reload bool   `mapstructure:"reload"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Session   SessionConfig   `mapstructure:"session"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Log       LogConfig       `mapstructure:"log"`
}

// EnvPrefix is prepended to every key, e.g. LEDGER_DATABASE_DSN.
const EnvPrefix = "LEDGER"

// Load reads configuration. path may be empty; LEDGER_CONFIG is consulted
// then, and a missing file is not an error. defaultDSN seeds database.dsn so
// each binary can keep its own local database file.
func Load(path, defaultDSN string) (*Config, error) {
	// .env never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, defaultDSN)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// names kept from earlier deployments
	_ = v.BindEnv("database.dsn", EnvPrefix+"_DATABASE_DSN", "DB_DSN")
	_ = v.BindEnv("database.auto_migrate", EnvPrefix+"_DATABASE_AUTO_MIGRATE", "DB_AUTO_MIGRATE")
	_ = v.BindEnv("session.secret", EnvPrefix+"_SESSION_SECRET", "SESSION_SECRET")

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if port := os.Getenv("PORT"); port != "" && os.Getenv(EnvPrefix+"_SERVER_ADDR") == "" {
		c.Server.Addr = ":" + port
	}
	return &c, nil
}

func setDefaults(v *viper.Viper, defaultDSN string) {
	if defaultDSN == "" {
		defaultDSN = "ledger.db"
	}
	v.SetDefault("server.addr", ":8081")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.dsn", defaultDSN)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.log_mode", false)
	v.SetDefault("session.secret", "")
	v.SetDefault("session.cookie_name", "ledger_session")
	v.SetDefault("session.ttl", 30*24*time.Hour)
	v.SetDefault("session.secure_cookie", false)
	v.SetDefault("templates.dir", "")
	v.SetDefault("templates.reload", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Server.Addr) == "" {
		problems = append(problems, "server address cannot be empty")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		problems = append(problems, fmt.Sprintf("invalid server mode '%s': must be debug, release or test", c.Server.Mode))
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		problems = append(problems, "database DSN cannot be empty")
	}
	if c.Session.CookieName == "" {
		problems = append(problems, "session cookie name cannot be empty")
	}
	if c.Session.TTL < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid session ttl %v: must be at least 1 minute", c.Session.TTL))
	}
	if c.Session.Secret != "" && len(c.Session.Secret) < 16 {
		problems = append(problems, "session secret must be at least 16 characters")
	}
	if c.Templates.Reload && c.Templates.Dir == "" {
		problems = append(problems, "template reload requires templates.dir")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level '%s'", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be text or json", c.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}
