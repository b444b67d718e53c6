package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds runtime settings for the task manager.
type Config struct {
	Server  Server  `mapstructure:"server" yaml:"server"`
	Storage Storage `mapstructure:"storage" yaml:"storage"`
	Persist Persist `mapstructure:"persist" yaml:"persist"`
}

// Server configures the HTTP listener.
type Server struct {
	Port string `mapstructure:"port" yaml:"port"`
}

// Storage selects the key-value backend.
type Storage struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // "sqlite", "mysql" or "memory"
	Path   string `mapstructure:"path" yaml:"path"`     // sqlite database file
	DSN    string `mapstructure:"dsn" yaml:"dsn"`       // mysql data source name
}

// Persist tunes background writes of the task list.
type Persist struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Server: Server{Port: "8080"},
		Storage: Storage{
			Driver: "sqlite",
			Path:   "./data/taskmanager.db",
		},
		Persist: Persist{Timeout: 5 * time.Second},
	}
}

// Load reads configuration from path (optional), then environment.
// Environment variables use the TASKMANAGER_ prefix, e.g.
// TASKMANAGER_STORAGE_DRIVER. PORT and DB_PATH are honoured as well.
func Load(path string) (*Config, error) {
	def := Default()

	v := viper.New()
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("storage.driver", def.Storage.Driver)
	v.SetDefault("storage.path", def.Storage.Path)
	v.SetDefault("storage.dsn", def.Storage.DSN)
	v.SetDefault("persist.timeout", def.Persist.Timeout)

	v.SetEnvPrefix("taskmanager")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.port", "TASKMANAGER_SERVER_PORT", "PORT")
	_ = v.BindEnv("storage.path", "TASKMANAGER_STORAGE_PATH", "DB_PATH")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the sqlite driver")
		}
	case "mysql":
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for the mysql driver")
		}
	case "memory":
	default:
		return fmt.Errorf("storage.driver must be 'sqlite', 'mysql', or 'memory', got %q", c.Storage.Driver)
	}

	if c.Persist.Timeout <= 0 {
		return errors.New("persist.timeout must be positive")
	}

	return nil
}

// WriteDefault writes the default configuration as YAML to path.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	header := []byte("# taskmanager configuration\n")
	return os.WriteFile(path, append(header, data...), 0644)
}
