package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Portal  PortalConfig  `yaml:"portal"`
	Backup  BackupConfig  `yaml:"backup"`
	History HistoryConfig `yaml:"history"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"`
	SessionTTL   time.Duration `yaml:"session_ttl" envconfig:"SESSION_TTL"`
}

// PortalConfig holds remote GIS portal configuration.
type PortalConfig struct {
	URL     string        `yaml:"url" envconfig:"PORTAL_URL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"PORTAL_TIMEOUT"`
}

// BackupConfig holds backup destination configuration.
type BackupConfig struct {
	// Root is the directory all backups must land under. Made absolute
	// during Load.
	Root string `yaml:"root" envconfig:"BACKUP_ROOT"`

	// CredentialsFile optionally points at a USERNAME=/PASSWORD= file the
	// terminal front end reads before prompting.
	CredentialsFile string `yaml:"credentials_file" envconfig:"AGO_CREDENTIALS_FILE"`
}

// HistoryConfig holds backup history persistence configuration.
type HistoryConfig struct {
	// Path is the sqlite database file; empty disables history.
	Path string `yaml:"path" envconfig:"HISTORY_PATH"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute,
			SessionTTL:   8 * time.Hour,
		},
		Portal: PortalConfig{
			URL:     "https://www.arcgis.com",
			Timeout: 30 * time.Second,
		},
		Backup: BackupConfig{
			Root: "./backups",
		},
	}
}

// Load reads configuration from file and environment variables.
// Precedence: built-in defaults, then the file, then the environment.
// Defaults live in Default() rather than in struct tags: envconfig applies
// tag defaults whenever the variable is unset, which would wipe out file
// values on the later env pass.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// The backup root is fixed for the process lifetime; pin it down to an
	// absolute path once, here.
	root, err := filepath.Abs(cfg.Backup.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve backup root: %w", err)
	}
	cfg.Backup.Root = root

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Backup.Root == "" {
		return fmt.Errorf("BACKUP_ROOT is required")
	}
	if c.Portal.URL == "" {
		return fmt.Errorf("PORTAL_URL is required")
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
