package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix              = "CLEANNOTES"
	defaultHTTPAddress     = "127.0.0.1:8080"
	defaultStorageDriver   = StorageSQLite
	defaultDatabasePath    = "cleannotes.db"
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultAuthSubject     = "owner"
	defaultTokenTTLMinutes = 60 * 24
	defaultEventBuffer     = 1
	defaultRateLimitRPS    = 50
	defaultRateLimitBurst  = 20
)

// Supported storage drivers.
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// AppConfig captures runtime configuration for the notes service and CLI.
type AppConfig struct {
	HTTPAddress    string
	StorageDriver  string
	DatabasePath   string
	LogLevel       string
	LogFormat      string
	SigningSecret  string
	AuthSubject    string
	TokenTTL       time.Duration
	EventBuffer    int
	RateLimitRPS   int
	RateLimitBurst int
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("http.rate_limit_rps", defaultRateLimitRPS)
	configViper.SetDefault("http.rate_limit_burst", defaultRateLimitBurst)
	configViper.SetDefault("storage.driver", defaultStorageDriver)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("log.format", defaultLogFormat)
	configViper.SetDefault("auth.subject", defaultAuthSubject)
	configViper.SetDefault("auth.token_ttl_minutes", defaultTokenTTLMinutes)
	configViper.SetDefault("editor.event_buffer", defaultEventBuffer)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:    configViper.GetString("http.address"),
		StorageDriver:  strings.ToLower(strings.TrimSpace(configViper.GetString("storage.driver"))),
		DatabasePath:   configViper.GetString("database.path"),
		LogLevel:       configViper.GetString("log.level"),
		LogFormat:      configViper.GetString("log.format"),
		SigningSecret:  configViper.GetString("auth.signing_secret"),
		AuthSubject:    configViper.GetString("auth.subject"),
		TokenTTL:       time.Duration(configViper.GetInt("auth.token_ttl_minutes")) * time.Minute,
		EventBuffer:    configViper.GetInt("editor.event_buffer"),
		RateLimitRPS:   configViper.GetInt("http.rate_limit_rps"),
		RateLimitBurst: configViper.GetInt("http.rate_limit_burst"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

// RequireSigningSecret reports an error when the API signing secret is missing.
// Only commands that issue or verify tokens need it.
func (c AppConfig) RequireSigningSecret() error {
	if strings.TrimSpace(c.SigningSecret) == "" {
		return fmt.Errorf("auth.signing_secret is required")
	}
	return nil
}

func (c AppConfig) validate() error {
	switch c.StorageDriver {
	case StorageSQLite:
		if strings.TrimSpace(c.DatabasePath) == "" {
			return fmt.Errorf("database.path is required")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.StorageDriver)
	}
	if strings.TrimSpace(c.AuthSubject) == "" {
		return fmt.Errorf("auth.subject is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl_minutes must be positive")
	}
	if c.EventBuffer <= 0 {
		return fmt.Errorf("editor.event_buffer must be positive")
	}
	return nil
}
