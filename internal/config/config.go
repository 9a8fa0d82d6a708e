// Package config handles the configuration directory, config file and paths.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// ConfigFile is the optional YAML settings file inside the config directory.
	ConfigFile = "config.yaml"

	// DatabaseFile is the default task database filename.
	DatabaseFile = "tasks.db"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// EnvPrefix prefixes environment overrides, e.g. TODO_IMPORT_SOURCE.
	EnvPrefix = "TODO"
)

// Import sources.
const (
	SourceDummyJSON   = "dummyjson"
	SourceGoogleTasks = "googletasks"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `yaml:"-" mapstructure:"-"`

	// Debug enables debug logging.
	Debug bool `yaml:"-" mapstructure:"-"`

	// Quiet suppresses informational output.
	Quiet bool `yaml:"-" mapstructure:"-"`

	// Database is the task database path. Relative paths are resolved against Dir.
	Database string `yaml:"database" mapstructure:"database"`

	Import ImportConfig `yaml:"import" mapstructure:"import"`
	Serve  ServeConfig  `yaml:"serve" mapstructure:"serve"`
}

// ImportConfig configures the one-time remote import.
type ImportConfig struct {
	Source     string        `yaml:"source" mapstructure:"source"`
	URL        string        `yaml:"url" mapstructure:"url"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	GoogleList string        `yaml:"google_list" mapstructure:"google_list"`
}

// ServeConfig configures the local HTTP API.
type ServeConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// Defaults returns a Config with every setting at its default value.
func Defaults() *Config {
	return &Config{
		Database: DatabaseFile,
		Import: ImportConfig{
			Source:     SourceDummyJSON,
			URL:        "https://dummyjson.com/todos",
			Timeout:    10 * time.Second,
			GoogleList: "@default",
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:8765",
		},
	}
}

// New creates a Config for the default or specified config directory and
// merges config.yaml and TODO_* environment overrides over the defaults.
// If configDir is empty, uses XDG_CONFIG_HOME/todo or $HOME/.config/todo.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	cfg := Defaults()
	cfg.Dir = dir
	if err := cfg.load(); err != nil {
		return nil, err
	}

	switch cfg.Import.Source {
	case SourceDummyJSON, SourceGoogleTasks:
	default:
		return nil, fmt.Errorf("invalid import source: %s", cfg.Import.Source)
	}
	return cfg, nil
}

func (c *Config) load() error {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database", c.Database)
	v.SetDefault("import.source", c.Import.Source)
	v.SetDefault("import.url", c.Import.URL)
	v.SetDefault("import.timeout", c.Import.Timeout)
	v.SetDefault("import.google_list", c.Import.GoogleList)
	v.SetDefault("serve.addr", c.Serve.Addr)

	path := c.ConfigPath()
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
	}

	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// DatabasePath returns the task database path.
func (c *Config) DatabasePath() string {
	db := c.Database
	if db == "" {
		db = DatabaseFile
	}
	if filepath.IsAbs(db) || strings.HasPrefix(db, "~") {
		return db
	}
	return filepath.Join(c.Dir, db)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
