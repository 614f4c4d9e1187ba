// Package config loads the optional YAML settings file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vegasq/sheetql/preset"
	"github.com/vegasq/sheetql/query"
)

// Config holds the settings a file may override.
type Config struct {
	// MaxLimit caps the LIMIT of any query
	MaxLimit int `yaml:"max_limit"`

	// DefaultLimit is used for custom queries when no limit is given
	DefaultLimit int `yaml:"default_limit"`

	// PreviewRows is the number of rows shown when a sheet is previewed
	PreviewRows int `yaml:"preview_rows"`

	// SanitizeCSV prefixes exported cells that spreadsheets would run as formulas
	SanitizeCSV bool `yaml:"sanitize_csv"`

	// Roles maps a sheet kind ("failure_details", "low_deliverability") to
	// role => preferred column name
	Roles map[string]map[string]string `yaml:"roles"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		MaxLimit:     query.MaxLimit,
		DefaultLimit: query.DefaultLimit,
		PreviewRows:  50,
	}
}

// Load reads path and overlays it on the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(b)
}

// Parse overlays YAML data on the defaults and validates the result. When
// the file lowers max_limit without setting default_limit, the default limit
// is lowered to match.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config: %w", err)
	}

	var set struct {
		DefaultLimit *int `yaml:"default_limit"`
	}
	if err := yaml.Unmarshal(data, &set); err != nil {
		return Default(), fmt.Errorf("failed to parse config: %w", err)
	}
	if set.DefaultLimit == nil && cfg.MaxLimit > 0 && cfg.DefaultLimit > cfg.MaxLimit {
		cfg.DefaultLimit = cfg.MaxLimit
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate checks limits and role names.
func (c Config) Validate() error {
	if c.MaxLimit < 1 {
		return fmt.Errorf("max_limit must be positive, got %d", c.MaxLimit)
	}
	if err := query.ValidateLimit(c.DefaultLimit, c.MaxLimit); err != nil {
		return fmt.Errorf("default_limit: %w", err)
	}
	if c.PreviewRows < 0 {
		return fmt.Errorf("preview_rows must not be negative, got %d", c.PreviewRows)
	}

	for name, roles := range c.Roles {
		kind, err := preset.ParseKind(name)
		if err != nil {
			return fmt.Errorf("roles: %w", err)
		}
		known := preset.DefaultRoles(kind)
		for role := range roles {
			if _, ok := known[preset.Role(role)]; !ok {
				return fmt.Errorf("roles.%s: %w: %q", name, preset.ErrUnknownRole, role)
			}
		}
	}
	return nil
}

// RoleDefaults returns the built-in role defaults for kind with the file's
// entries applied.
func (c Config) RoleDefaults(kind preset.SheetKind) preset.Defaults {
	overrides := make(preset.Defaults, len(c.Roles[kind.String()]))
	for role, col := range c.Roles[kind.String()] {
		overrides[preset.Role(role)] = col
	}
	return preset.DefaultRoles(kind).Merge(overrides)
}
