package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the runtime configuration of the directory server.
type Config struct {
	Port          string         `mapstructure:"port"`
	DatabaseURL   string         `mapstructure:"database_url"`
	SessionSecret string         `mapstructure:"session_secret"`
	SiteURL       string         `mapstructure:"site_url"`
	SiteName      string         `mapstructure:"site_name"`
	TemplatesDir  string         `mapstructure:"templates_dir"`
	StaticDir     string         `mapstructure:"static_dir"`
	LogLevel      string         `mapstructure:"log_level"`
	CacheTTL      time.Duration  `mapstructure:"cache_ttl"`
	AdminEmails   []string       `mapstructure:"admin_emails"`
	ImgurClientID string         `mapstructure:"imgur_client_id"`
	SMTP          SMTPConfig     `mapstructure:"smtp"`
	Tracking      TrackingConfig `mapstructure:"tracking"`
}

type SMTPConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type TrackingConfig struct {
	QueueSize int `mapstructure:"queue_size"`
}

const defaultSessionSecret = "secret_key_change_me"

// env names for every key; nested keys would otherwise need SMTP.HOST style variables
var envBindings = map[string]string{
	"port":                "PORT",
	"database_url":        "DATABASE_URL",
	"session_secret":      "SESSION_SECRET",
	"site_url":            "SITE_URL",
	"site_name":           "SITE_NAME",
	"templates_dir":       "TEMPLATES_DIR",
	"static_dir":          "STATIC_DIR",
	"log_level":           "LOG_LEVEL",
	"cache_ttl":           "CACHE_TTL",
	"admin_emails":        "ADMIN_EMAILS",
	"imgur_client_id":     "IMGUR_CLIENT_ID",
	"smtp.enabled":        "SMTP_ENABLED",
	"smtp.host":           "SMTP_HOST",
	"smtp.port":           "SMTP_PORT",
	"smtp.username":       "SMTP_USERNAME",
	"smtp.password":       "SMTP_PASSWORD",
	"smtp.from":           "SMTP_FROM",
	"tracking.queue_size": "TRACKING_QUEUE_SIZE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("database_url", "host=localhost user=postgres password=postgres dbname=aitools port=5432 sslmode=disable TimeZone=UTC")
	v.SetDefault("session_secret", defaultSessionSecret)
	v.SetDefault("site_url", "http://localhost:8080")
	v.SetDefault("site_name", "AI Tools Directory")
	v.SetDefault("templates_dir", "./web/templates")
	v.SetDefault("static_dir", "./web/static")
	v.SetDefault("log_level", "warn")
	v.SetDefault("cache_ttl", "5m")
	v.SetDefault("admin_emails", []string{})
	v.SetDefault("imgur_client_id", "")

	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")

	v.SetDefault("tracking.queue_size", 256)
}

// Load reads configuration from defaults, an optional config file and the
// environment, in increasing order of precedence. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	for i, email := range cfg.AdminEmails {
		cfg.AdminEmails[i] = strings.ToLower(strings.TrimSpace(email))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports configuration that would make the server misbehave.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port must not be empty"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("database_url must not be empty"))
	}
	if len(c.SessionSecret) < 8 {
		errs = append(errs, errors.New("session_secret must be at least 8 characters"))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, errors.New("cache_ttl must not be negative"))
	}
	if c.Tracking.QueueSize <= 0 {
		errs = append(errs, errors.New("tracking.queue_size must be positive"))
	}
	if c.SMTP.Enabled && (c.SMTP.Host == "" || c.SMTP.From == "") {
		errs = append(errs, errors.New("smtp.host and smtp.from are required when smtp is enabled"))
	}
	return errors.Join(errs...)
}

// InsecureSecret reports whether the session secret is still the shipped default.
func (c *Config) InsecureSecret() bool {
	return c.SessionSecret == defaultSessionSecret
}

// IsAdminEmail reports whether email is listed in admin_emails.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, admin := range c.AdminEmails {
		if admin == email {
			return true
		}
	}
	return false
}
