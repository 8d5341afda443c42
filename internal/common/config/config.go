// internal/common/config/config.go
package config

import (
	"time"
	_ "time/tzdata"
)

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig              `mapstructure:"app"`
	Server     ServerConfig           `mapstructure:"server"`
	Submission SubmissionConfig       `mapstructure:"submission"`
	Session    SessionConfig          `mapstructure:"session"`
	Locale     LocaleConfig           `mapstructure:"locale"`
	Content    ContentConfig          `mapstructure:"content"`
	Database   DatabaseConfig         `mapstructure:"database"`
	Logging    LoggingConfig          `mapstructure:"logging"`
	Stages     map[string]StageConfig `mapstructure:"stages"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Addr              string `mapstructure:"addr"`
	ReadHeaderTimeout int    `mapstructure:"read_header_timeout"` // milliseconds
	ShutdownTimeout   int    `mapstructure:"shutdown_timeout"`    // milliseconds
	RequestTimeout    int    `mapstructure:"request_timeout"`     // milliseconds
}

// SubmissionConfig controls the simulated submission.
type SubmissionConfig struct {
	Delay        int `mapstructure:"delay"`         // milliseconds
	CopyFeedback int `mapstructure:"copy_feedback"` // milliseconds
}

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type SessionConfig struct {
	Store      string `mapstructure:"store"`
	TTL        int    `mapstructure:"ttl"` // seconds
	CookieName string `mapstructure:"cookie_name"`
	KeyPrefix  string `mapstructure:"key_prefix"`
}

type LocaleConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// ContentConfig points at the result-view content registry. An empty path uses the embedded default.
type ContentConfig struct {
	RegistryPath string `mapstructure:"registry_path"`
	InviteURL    string `mapstructure:"invite_url"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StageConfig holds the settings applicable to every flow stage.
type StageConfig struct {
	Timeout int `mapstructure:"timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// SubmissionDelay returns the simulated latency.
func (c *Config) SubmissionDelay() time.Duration {
	return GetDuration(c.Submission.Delay)
}

// CopyFeedback returns how long the "copied" label stays on the copy button.
func (c *Config) CopyFeedback() time.Duration {
	return GetDuration(c.Submission.CopyFeedback)
}

// SessionTTL returns the idle lifetime of a session.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTL) * time.Second
}

// Location loads the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Locale.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
