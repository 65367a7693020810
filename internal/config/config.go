// Package config loads .furarc project settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file looked up at the project root.
const FileName = ".furarc"

// DefaultProject names the store file when no project is configured.
const DefaultProject = "data"

// ErrInvalidConfig marks configuration problems. They are reported before any
// scan work begins.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the project configuration.
type Config struct {
	// Project names the store file under .fura/.
	Project string `mapstructure:"project" json:"project"`
	// Alias maps import prefixes to root-relative directories, e.g. "@": "./src".
	Alias map[string]string `mapstructure:"alias" json:"alias"`
	// Exclude lists names or globs skipped at any depth.
	Exclude []string `mapstructure:"exclude" json:"exclude"`
	// Include lists root-relative path prefixes analyzed for unused files.
	Include []string `mapstructure:"include" json:"include"`
	// Entry lists root-relative entry files.
	Entry       []string `mapstructure:"entry" json:"entry"`
	Concurrency int      `mapstructure:"concurrency" json:"concurrency"`
}

// Default returns an empty configuration with defaults applied.
func Default() *Config {
	return &Config{Project: DefaultProject, Alias: map[string]string{}}
}

// Load reads the config at configPath, or root/.furarc when configPath is
// empty. A missing default file yields Default(); a missing explicit file is
// an error.
func Load(root, configPath string) (*Config, error) {
	explicit := configPath != ""
	if !explicit {
		configPath = filepath.Join(root, FileName)
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if explicit {
			return nil, fmt.Errorf("%w: config file %s not found", ErrInvalidConfig, configPath)
		}
		return Default(), nil
	} else if err != nil {
		return nil, fmt.Errorf("error checking config file %s: %w", configPath, err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType(configType(configPath))
	v.SetDefault("project", DefaultProject)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: error reading config file %s: %v", ErrInvalidConfig, configPath, err)
	}
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: error unmarshalling config file %s: %v", ErrInvalidConfig, configPath, err)
	}

	// viper folds keys to lower case; alias prefixes are case-sensitive.
	aliases, err := readAliases(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: error reading alias table from %s: %v", ErrInvalidConfig, configPath, err)
	}
	cfg.Alias = aliases
	return cfg, nil
}

func configType(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// readAliases decodes only the alias table. JSON is valid YAML, so one decoder
// serves both formats.
func readAliases(configPath string) (map[string]string, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var raw struct {
		Alias map[string]string `yaml:"alias"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.Alias == nil {
		return map[string]string{}, nil
	}
	return raw.Alias, nil
}

// Validate checks the settings every command relies on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Project) == "" || strings.ContainsAny(c.Project, `/\`) || c.Project == "." || c.Project == ".." {
		return fmt.Errorf("%w: project %q must be a plain name", ErrInvalidConfig, c.Project)
	}
	for key, target := range c.Alias {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("%w: alias with empty key", ErrInvalidConfig)
		}
		if strings.TrimSpace(target) == "" {
			return fmt.Errorf("%w: alias %q has an empty target", ErrInvalidConfig, key)
		}
	}
	if err := validateRelative("include", c.Include); err != nil {
		return err
	}
	if err := validateRelative("entry", c.Entry); err != nil {
		return err
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must be >= 0, got %d", ErrInvalidConfig, c.Concurrency)
	}
	return nil
}

// ValidateUnused additionally requires entry files and include prefixes.
func (c *Config) ValidateUnused() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.Entry) == 0 {
		return fmt.Errorf("%w: at least one entry file is required", ErrInvalidConfig)
	}
	if len(c.Include) == 0 {
		return fmt.Errorf("%w: at least one include path is required", ErrInvalidConfig)
	}
	return nil
}

func validateRelative(key string, values []string) error {
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			return fmt.Errorf("%w: %s contains an empty path", ErrInvalidConfig, key)
		}
		if path.IsAbs(filepath.ToSlash(value)) || filepath.IsAbs(value) {
			return fmt.Errorf("%w: %s path %q must be relative to the project root", ErrInvalidConfig, key, value)
		}
	}
	return nil
}
