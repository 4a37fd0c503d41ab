// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	HelpScout HelpScoutConfig `mapstructure:"helpscout"`
	GeoIP     GeoIPConfig     `mapstructure:"geoip"`
	Forward   ForwardConfig   `mapstructure:"forward"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// IsDevelopment reports whether the service runs in development mode.
// Development mode exposes the list endpoint and substitutes a fixed
// test IP for geolocation lookups.
func (a AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"` // public URL used to build submission permalinks
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// Enabled reports whether a Postgres host is configured. Without one the
// service falls back to the in-memory submission store.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// HelpScoutConfig holds the Mailbox API credentials and routing identifiers.
// Mailbox and custom field IDs come from inspecting the Help Scout settings
// URLs; they stay in the environment rather than in config files.
type HelpScoutConfig struct {
	AppID      string `mapstructure:"app_id"`
	AppSecret  string `mapstructure:"app_secret"`
	BaseURL    string `mapstructure:"base_url"`
	MailboxID  int64  `mapstructure:"mailbox_id"`
	AlertEmail string `mapstructure:"alert_email"` // recipient of the internal fallback ticket

	CustomFields CustomFieldsConfig `mapstructure:"custom_fields"`
}

type CustomFieldsConfig struct {
	Theme         int64 `mapstructure:"theme"`
	StoreURL      int64 `mapstructure:"store_url"`
	StorePassword int64 `mapstructure:"store_password"`
}

type GeoIPConfig struct {
	DatabasePath string `mapstructure:"database_path"`
	TestIP       string `mapstructure:"test_ip"` // substituted for the client IP in development
}

type ForwardConfig struct {
	Timeout int `mapstructure:"timeout"` // milliseconds, bounds the whole forward attempt
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
