package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Collections served by the backend, in tab order.
var Collections = []string{"reservations", "contracts", "payments", "credit"}

// Themes are the catppuccin flavors accepted for the theme key.
var Themes = []string{"latte", "frappe", "macchiato", "mocha"}

type Config struct {
	Theme       string                      `yaml:"theme"`
	LogLevel    string                      `yaml:"log_level"`
	Backend     BackendConfig               `yaml:"backend"`
	Table       TableConfig                 `yaml:"table"`
	Collections map[string]CollectionConfig `yaml:"collections"`
}

type BackendConfig struct {
	URL      string        `yaml:"url"`
	TokenEnv string        `yaml:"token_env"`
	Timeout  time.Duration `yaml:"timeout"`
}

type TableConfig struct {
	PageSize         int `yaml:"page_size"`
	Breakpoint       int `yaml:"breakpoint"`
	DialogBreakpoint int `yaml:"dialog_breakpoint"`
	LateralPanelSize int `yaml:"lateral_panel_size"`
}

// CollectionConfig overrides table settings for one collection. Zero
// values fall back to the table defaults.
type CollectionConfig struct {
	Expansion string `yaml:"expansion"`
	PageSize  int    `yaml:"page_size"`
}

func DefaultConfig() Config {
	return Config{
		Theme:    "mocha",
		LogLevel: "info",
		Backend: BackendConfig{
			URL:      "http://127.0.0.1:8787",
			TokenEnv: "SALESDESK_TOKEN",
			Timeout:  10 * time.Second,
		},
		Table: TableConfig{
			PageSize:         10,
			Breakpoint:       100,
			DialogBreakpoint: 72,
			LateralPanelSize: 40,
		},
		Collections: map[string]CollectionConfig{
			"reservations": {Expansion: "lateral"},
			"contracts":    {Expansion: "vertical"},
			"payments":     {Expansion: "vertical", PageSize: 20},
			"credit":       {Expansion: "lateral"},
		},
	}
}

func Load() (Config, error) {
	return LoadFrom(Path(""))
}

// LoadFrom reads a config file over the defaults. A missing file is not an
// error.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// fillDefaults restores defaults for keys present but left empty.
func (c *Config) fillDefaults() {
	d := DefaultConfig()
	if c.Theme == "" {
		c.Theme = d.Theme
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Backend.URL == "" {
		c.Backend.URL = d.Backend.URL
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = d.Backend.Timeout
	}
	if c.Table.PageSize == 0 {
		c.Table.PageSize = d.Table.PageSize
	}
	if c.Table.Breakpoint == 0 {
		c.Table.Breakpoint = d.Table.Breakpoint
	}
	if c.Table.DialogBreakpoint == 0 {
		c.Table.DialogBreakpoint = d.Table.DialogBreakpoint
	}
	if c.Table.LateralPanelSize == 0 {
		c.Table.LateralPanelSize = d.Table.LateralPanelSize
	}
	if c.Collections == nil {
		c.Collections = map[string]CollectionConfig{}
	}
	for name, cc := range d.Collections {
		if _, ok := c.Collections[name]; !ok {
			c.Collections[name] = cc
		}
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if !slices.Contains(Themes, c.Theme) {
		errs = append(errs, fmt.Errorf("theme %q: want one of %v", c.Theme, Themes))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q: want debug, info, warn or error", c.LogLevel))
	}
	if u, err := url.Parse(c.Backend.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.url %q: want an http(s) URL", c.Backend.URL))
	}
	if c.Backend.Timeout < 0 {
		errs = append(errs, errors.New("backend.timeout: must not be negative"))
	}
	if c.Table.PageSize < 1 {
		errs = append(errs, errors.New("table.page_size: must be positive"))
	}
	if c.Table.Breakpoint < 1 || c.Table.DialogBreakpoint < 1 {
		errs = append(errs, errors.New("table breakpoints: must be positive"))
	}
	if p := c.Table.LateralPanelSize; p < 20 || p > 80 {
		errs = append(errs, fmt.Errorf("table.lateral_panel_size %d: want 20..80", p))
	}
	for name, cc := range c.Collections {
		if !slices.Contains(Collections, name) {
			errs = append(errs, fmt.Errorf("collections.%s: unknown collection", name))
		}
		if cc.Expansion != "" && cc.Expansion != "vertical" && cc.Expansion != "lateral" {
			errs = append(errs, fmt.Errorf("collections.%s.expansion %q: want vertical or lateral", name, cc.Expansion))
		}
		if cc.PageSize < 0 {
			errs = append(errs, fmt.Errorf("collections.%s.page_size: must not be negative", name))
		}
	}
	return errors.Join(errs...)
}

// Collection returns the effective settings for one collection.
func (c Config) Collection(name string) CollectionConfig {
	cc := c.Collections[name]
	if cc.Expansion == "" {
		cc.Expansion = "vertical"
	}
	if cc.PageSize == 0 {
		cc.PageSize = c.Table.PageSize
	}
	return cc
}

// Token returns the backend bearer token from the environment variable
// named by backend.token_env.
func (c Config) Token() (string, bool) {
	if c.Backend.TokenEnv == "" {
		return "", false
	}
	v := os.Getenv(c.Backend.TokenEnv)
	return v, v != ""
}

// Dir returns the config directory: override when set, else
// $XDG_CONFIG_HOME/salesdesk, else ~/.config/salesdesk.
func Dir(override string) string {
	if override != "" {
		return override
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "salesdesk")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "salesdesk")
	}
	return filepath.Join(home, ".config", "salesdesk")
}

// Path returns the config file inside Dir(override).
func Path(override string) string {
	return filepath.Join(Dir(override), "config.yaml")
}
