package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/tomljson/internal/mapper"
	"github.com/mcncl/tomljson/internal/models"
)

// UnknownExtensionPolicy decides what happens to files whose extension maps
// to neither format.
type UnknownExtensionPolicy string

const (
	UnknownExtensionSkip  UnknownExtensionPolicy = "skip"
	UnknownExtensionError UnknownExtensionPolicy = "error"
)

// Config represents the complete configuration for tomljson
type Config struct {
	TOML             FormatConfig           `yaml:"toml"`
	JSON             JSONConfig             `yaml:"json"`
	Nulls            NullsConfig            `yaml:"nulls"`
	UnknownExtension UnknownExtensionPolicy `yaml:"unknown_extension"`
	Jobs             int                    `yaml:"jobs"`
	Dev              DevConfig              `yaml:"dev"`
}

// FormatConfig lists the extensions recognised for a format
type FormatConfig struct {
	Extensions []string `yaml:"extensions"`
}

// JSONConfig controls JSON recognition and output
type JSONConfig struct {
	Extensions []string `yaml:"extensions"`
	Indent     int      `yaml:"indent"`
}

// NullsConfig controls how JSON nulls are mapped to TOML
type NullsConfig struct {
	Policy   mapper.NullPolicy `yaml:"policy"`
	Sentinel string            `yaml:"sentinel"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		TOML: FormatConfig{
			Extensions: []string{".toml"},
		},
		JSON: JSONConfig{
			Extensions: []string{".json"},
			Indent:     2,
		},
		Nulls: NullsConfig{
			Policy:   mapper.NullPolicyError,
			Sentinel: mapper.DefaultNullSentinel,
		},
		UnknownExtension: UnknownExtensionSkip,
		Jobs:             1,
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".tomljson.yml", ".tomljson.yaml", "tomljson.yml", "tomljson.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate normalizes extensions and rejects unknown policies and
// extensions claimed by both formats.
func (c *Config) Validate() error {
	var err error
	if c.TOML.Extensions, err = normalizeExtensions(c.TOML.Extensions); err != nil {
		return fmt.Errorf("toml: %w", err)
	}
	if c.JSON.Extensions, err = normalizeExtensions(c.JSON.Extensions); err != nil {
		return fmt.Errorf("json: %w", err)
	}
	for _, ext := range c.TOML.Extensions {
		for _, other := range c.JSON.Extensions {
			if ext == other {
				return fmt.Errorf("extension %q is configured for both TOML and JSON", ext)
			}
		}
	}

	switch c.Nulls.Policy {
	case "":
		c.Nulls.Policy = mapper.NullPolicyError
	case mapper.NullPolicyError, mapper.NullPolicySentinel:
	default:
		return fmt.Errorf("unknown null policy %q (want %q or %q)", c.Nulls.Policy, mapper.NullPolicyError, mapper.NullPolicySentinel)
	}

	switch c.UnknownExtension {
	case "":
		c.UnknownExtension = UnknownExtensionSkip
	case UnknownExtensionSkip, UnknownExtensionError:
	default:
		return fmt.Errorf("unknown unknown_extension policy %q (want %q or %q)", c.UnknownExtension, UnknownExtensionSkip, UnknownExtensionError)
	}

	if c.JSON.Indent < 0 || c.JSON.Indent > 16 {
		return fmt.Errorf("json indent must be between 1 and 16 (0 selects the default), got %d", c.JSON.Indent)
	}
	if c.JSON.Indent == 0 {
		c.JSON.Indent = 2
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	if c.Jobs == 0 {
		c.Jobs = 1
	}
	return nil
}

func normalizeExtensions(exts []string) ([]string, error) {
	if len(exts) == 0 {
		return nil, fmt.Errorf("at least one extension is required")
	}
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || ext == "." {
			return nil, fmt.Errorf("empty extension")
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out, nil
}

// FormatForExtension returns the format a file extension belongs to.
// Matching is case-insensitive.
func (c *Config) FormatForExtension(ext string) (models.Format, bool) {
	ext = strings.ToLower(ext)
	for _, e := range c.TOML.Extensions {
		if e == ext {
			return models.FormatTOML, true
		}
	}
	for _, e := range c.JSON.Extensions {
		if e == ext {
			return models.FormatJSON, true
		}
	}
	return 0, false
}

// OutputExtension returns the extension used for files written in format f.
func (c *Config) OutputExtension(f models.Format) string {
	if f == models.FormatJSON {
		return c.JSON.Extensions[0]
	}
	return c.TOML.Extensions[0]
}

// MapperOptions returns the mapper options described by the config.
func (c *Config) MapperOptions() mapper.Options {
	return mapper.Options{
		NullPolicy:   c.Nulls.Policy,
		NullSentinel: c.Nulls.Sentinel,
	}
}

// CLIOverrides carries the command-line flags that may override the file.
// Zero values mean "not set".
type CLIOverrides struct {
	Jobs   int
	Indent int
	Nulls  string
	Strict bool
	Debug  bool
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, cli CLIOverrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cli.Jobs > 0 {
		cfg.Jobs = cli.Jobs
	}
	if cli.Indent > 0 {
		cfg.JSON.Indent = cli.Indent
	}
	if cli.Nulls != "" {
		cfg.Nulls.Policy = mapper.NullPolicy(cli.Nulls)
	}
	if cli.Strict {
		cfg.UnknownExtension = UnknownExtensionError
	}
	if cli.Debug {
		cfg.Dev.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
