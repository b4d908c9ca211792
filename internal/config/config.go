package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config models mzstay.yml.
type Config struct {
	API struct {
		// BaseURL of the remote backend. Empty means offline: local demo
		// sign-in becomes the only way in.
		BaseURL string `yaml:"base_url"`
	} `yaml:"api"`
	LocalLogin struct {
		Enabled  bool   `yaml:"enabled"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Role     string `yaml:"role"`
	} `yaml:"local_login"`
	Server struct {
		Addr      string `yaml:"addr"`
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// LocalLoginAllowed reports whether the demo account may be used: either
// explicitly enabled or forced by the absence of a backend.
func (c *Config) LocalLoginAllowed() bool {
	return c.LocalLogin.Enabled || strings.TrimSpace(c.API.BaseURL) == ""
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.LocalLogin.Username == "" {
		return fmt.Errorf("config.local_login.username is required")
	}
	if c.LocalLogin.Password == "" {
		return fmt.Errorf("config.local_login.password is required")
	}
	if c.LocalLogin.Role == "" {
		return fmt.Errorf("config.local_login.role is required")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config.log.level %q unknown", c.Log.Level)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("config.log.format %q unknown", c.Log.Format)
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "mzstay.yml")
}

// Load reads and validates config from the workspace.
func Load(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; run mz config init", Path(workspace))
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns the default config when the file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config from raw YAML bytes. Unset fields
// fall back to defaults before validation.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration: offline demo mode.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.LocalLogin.Username == "" {
		cfg.LocalLogin.Username = "demo"
	}
	if cfg.LocalLogin.Password == "" {
		cfg.LocalLogin.Password = "demo1234"
	}
	if cfg.LocalLogin.Role == "" {
		cfg.LocalLogin.Role = "cleaner"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":7040"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

// GenerateDefault returns the default config YAML for mz config init.
func GenerateDefault() string {
	return defaultTemplate
}

const defaultTemplate = `api:
  # Remote backend base URL. Leave empty for offline demo mode.
  base_url: ""

local_login:
  enabled: true
  username: demo
  password: demo1234
  role: cleaner

server:
  addr: ":7040"
  jwt_secret: ""

log:
  level: info
  format: console
`
