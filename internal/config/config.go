// Package config manages YAML-based configuration and CLI flag overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPort is the port used when none is configured.
const DefaultPort = 8000

// DefaultMaxTextBytes caps how much decoded text is kept per file record.
const DefaultMaxTextBytes = 400_000

// Config holds all configuration options for codehub.
type Config struct {
	// Root is the project directory to scan and serve.
	Root string `yaml:"root,omitempty"`

	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Open     bool   `yaml:"open"`
	Watch    bool   `yaml:"watch"`
	KeepFile bool   `yaml:"keep_file"`
	Report   bool   `yaml:"report"`
	Verbose  bool   `yaml:"verbose"`

	// Exclude lists directory names pruned from every scan. The defaults
	// cover version-control metadata, dependency caches, build output,
	// virtualenvs, and editor metadata.
	Exclude []string `yaml:"exclude"`

	// MaxTextBytes caps the decoded text kept for a single file record.
	MaxTextBytes int `yaml:"max_text_bytes"`

	// Internal: path to config file for saving
	configPath string
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Root:         ".",
		Host:         "127.0.0.1",
		Port:         DefaultPort,
		Open:         false,
		Watch:        true,
		KeepFile:     false,
		Report:       false,
		MaxTextBytes: DefaultMaxTextBytes,
		Exclude: []string{
			".git", "node_modules", "venv", ".venv", "env", ".env",
			"build", "dist", "target", "__pycache__", ".pytest_cache",
			".mypy_cache", ".tox", ".idea", ".vscode",
		},
	}
}

// GetConfigDir returns the config directory path
func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/codehub"
	}
	return filepath.Join(home, ".config", "codehub")
}

// GetConfigPath returns the full path to the config file
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// Load loads configuration from the given file, or from the default
// locations when path is empty (~/.config/codehub/config.yaml, then a
// local codehub.yaml). A missing default file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	cfgPath := path
	if cfgPath == "" {
		globalConfig := GetConfigPath()
		if _, err := os.Stat(globalConfig); err == nil {
			cfgPath = globalConfig
		} else if _, err := os.Stat("codehub.yaml"); err == nil {
			cfgPath = "codehub.yaml"
		}
	}

	if cfgPath != "" {
		if err := cfg.loadFromFile(cfgPath); err != nil && path != "" {
			// Only fatal when the user explicitly named a config file
			return nil, err
		}
		cfg.configPath = cfgPath
	} else {
		cfg.configPath = GetConfigPath()
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// Save saves the current configuration to the config file
func (c *Config) Save() error {
	configDir := filepath.Dir(c.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	// Copy without internal fields for saving
	saveConfig := struct {
		Host         string   `yaml:"host"`
		Port         int      `yaml:"port"`
		Open         bool     `yaml:"open"`
		Watch        bool     `yaml:"watch"`
		KeepFile     bool     `yaml:"keep_file"`
		Report       bool     `yaml:"report"`
		Exclude      []string `yaml:"exclude"`
		MaxTextBytes int      `yaml:"max_text_bytes"`
	}{
		Host:         c.Host,
		Port:         c.Port,
		Open:         c.Open,
		Watch:        c.Watch,
		KeepFile:     c.KeepFile,
		Report:       c.Report,
		Exclude:      c.Exclude,
		MaxTextBytes: c.MaxTextBytes,
	}

	data, err := yaml.Marshal(saveConfig)
	if err != nil {
		return err
	}

	return os.WriteFile(c.configPath, data, 0644)
}

// ResolveRoot validates the configured root and resolves it to an absolute
// path. An empty root, a missing path, or a non-directory is a configuration
// error.
func (c *Config) ResolveRoot() (string, error) {
	if c.Root == "" {
		return "", fmt.Errorf("no directory selected")
	}
	abs, err := filepath.Abs(c.Root)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory does not exist: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	c.Root = abs
	return abs, nil
}

// IsDeniedDir checks if a bare directory name is on the deny-list
func (c *Config) IsDeniedDir(name string) bool {
	for _, exclude := range c.Exclude {
		if name == exclude {
			return true
		}
	}
	return false
}

// GetConfigFilePath returns the path to the config file
func (c *Config) GetConfigFilePath() string {
	return c.configPath
}
