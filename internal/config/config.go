package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/campusfinder/internal/route"
	"github.com/idilsaglam/campusfinder/internal/store/jsonstore"
)

// Config holds all CampusFinder client configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	UI      UIConfig      `yaml:"ui"`
}

// ServerConfig points at the Lost & Found API.
type ServerConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"` // empty or "0" = no timeout
}

// StorageConfig locates the session and log files.
type StorageConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig configures the diagnostic log.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // relative paths are under storage.dir
}

// UIConfig configures the terminal front-end.
type UIConfig struct {
	Theme     string `yaml:"theme"` // classic, neon, mono
	StartPage string `yaml:"start_page"`
}

const (
	DefaultBaseURL = "http://localhost:8080/api"
	fileName       = "config.yaml"
)

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: DefaultBaseURL,
		},
		Storage: StorageConfig{
			Dir: defaultDir(),
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "campusfinder.log",
		},
		UI: UIConfig{
			Theme:     "classic",
			StartPage: string(route.Home),
		},
	}
}

func defaultDir() string {
	dir, err := jsonstore.DefaultDir()
	if err != nil {
		return ".campusfinder"
	}
	return dir
}

// DefaultPath is config.yaml inside the storage dir (honouring CAMPUSFINDER_HOME).
func DefaultPath() string {
	dir := defaultDir()
	if env := os.Getenv("CAMPUSFINDER_HOME"); env != "" {
		dir = env
	}
	return filepath.Join(dir, fileName)
}

// Load reads path over the defaults. A missing file is not an error.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CAMPUSFINDER_SERVER"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("CAMPUSFINDER_HOME"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("CAMPUSFINDER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CAMPUSFINDER_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// RequestTimeout parses Server.Timeout; zero means none.
func (c *Config) RequestTimeout() time.Duration {
	if c.Server.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Server.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// LogPath resolves Logging.File against Storage.Dir.
func (c *Config) LogPath() string {
	if c.Logging.File == "" || filepath.IsAbs(c.Logging.File) {
		return c.Logging.File
	}
	return filepath.Join(c.Storage.Dir, c.Logging.File)
}

// StartPath is the first page the TUI opens.
func (c *Config) StartPath() route.Path {
	p, err := route.Parse(c.UI.StartPage)
	if err != nil {
		return route.Home
	}
	return p
}

func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Server.BaseURL, "http://") && !strings.HasPrefix(c.Server.BaseURL, "https://") {
		return fmt.Errorf("server.base_url must be an http(s) URL, got %q", c.Server.BaseURL)
	}
	if c.Server.Timeout != "" {
		if d, err := time.ParseDuration(c.Server.Timeout); err != nil || d < 0 {
			return fmt.Errorf("server.timeout: invalid duration %q", c.Server.Timeout)
		}
	}
	if c.Storage.Dir == "" {
		return fmt.Errorf("storage.dir is required")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	if c.UI.StartPage != "" {
		if _, err := route.Parse(c.UI.StartPage); err != nil {
			return fmt.Errorf("ui.start_page: %w", err)
		}
	}
	return nil
}
