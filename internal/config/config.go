package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendSQLite  = "sqlite"
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"
)

const (
	dirName        = ".todo"
	fileName       = "config.yaml"
	defaultAddr    = "127.0.0.1:8080"
	defaultDBFile  = "todo.db"
	defaultBackend = BackendSQLite
)

// Config represents the todo configuration file.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
}

// StorageConfig selects and locates the entry store.
type StorageConfig struct {
	Backend string `yaml:"backend"`        // sqlite, leveldb or memory
	Path    string `yaml:"path,omitempty"` // file for sqlite, directory for leveldb
}

// ServerConfig configures `todo serve`.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: defaultBackend,
			Path:    filepath.Join("~", dirName, defaultDBFile),
		},
		Server: ServerConfig{Addr: defaultAddr},
	}
}

// Validate rejects unknown backends and missing required values.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendLevelDB:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for backend %q", c.Storage.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q (valid: sqlite, leveldb, memory)", c.Storage.Backend)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}

// StoragePath returns Storage.Path with a leading ~ expanded.
func (c *Config) StoragePath() (string, error) {
	return ExpandHome(c.Storage.Path)
}

// LoadConfig reads .todo/config.yaml from the specified directory.
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, dirName, fileName))
}

// LoadFile reads a config file. Fields the file omits keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve finds the configuration to use.
// Resolution order: explicit path, then cwd, then home, then defaults.
// It returns the file the config came from, or "" for defaults.
func Resolve(explicit, cwd string) (*Config, string, error) {
	if explicit != "" {
		cfg, err := LoadFile(explicit)
		return cfg, explicit, err
	}

	candidates := []string{filepath.Join(cwd, dirName, fileName)}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, dirName, fileName))
	}

	for _, path := range candidates {
		cfg, err := LoadFile(path)
		if err == nil {
			return cfg, path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, path, err
		}
	}
	return Default(), "", nil
}

// SaveConfig writes config.yaml to directory
func SaveConfig(dir string, cfg *Config) error {
	todoDir := filepath.Join(dir, dirName)
	if err := os.MkdirAll(todoDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s dir: %w", dirName, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(todoDir, fileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
