package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/fsvalue/internal/convert"
	"github.com/mcncl/fsvalue/internal/output"
	"github.com/mcncl/fsvalue/internal/resource"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for fsvalue
type Config struct {
	Project       string       `yaml:"project"`
	Database      string       `yaml:"database"`
	SpecialValues string       `yaml:"special_values"`
	DetectTimes   bool         `yaml:"detect_times"`
	Output        OutputConfig `yaml:"output"`
	Shape         ShapeConfig  `yaml:"shape"`
	Dev           DevConfig    `yaml:"dev"`
}

// OutputConfig controls how results are serialised
type OutputConfig struct {
	Format string `yaml:"format"`
	Indent int    `yaml:"indent"`
}

// ShapeConfig controls Go struct generation from wire documents
type ShapeConfig struct {
	Package       string            `yaml:"package"`
	RootName      string            `yaml:"root_name"`
	FieldMappings map[string]string `yaml:"field_mappings"`
	Format        bool              `yaml:"format"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Database:      resource.DefaultDatabase,
		SpecialValues: string(convert.ModeLiteral),
		Output: OutputConfig{
			Format: string(output.JSON),
			Indent: output.DefaultIndent,
		},
		Shape: ShapeConfig{
			Package:       "main",
			RootName:      "Document",
			FieldMappings: make(map[string]string),
			Format:        true,
		},
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
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".fsvalue.yml", ".fsvalue.yaml", "fsvalue.yml", "fsvalue.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	if _, err := convert.ParseSpecialValueMode(c.SpecialValues); err != nil {
		return err
	}
	if _, err := output.ParseFormat(c.Output.Format); err != nil {
		return err
	}
	if c.Output.Indent < 0 {
		return fmt.Errorf("output.indent must not be negative, got %d", c.Output.Indent)
	}
	if strings.Contains(c.Database, "/") {
		return fmt.Errorf("database %q must not contain '/'", c.Database)
	}
	return nil
}

// Client returns the resource-name client for the configured project and database.
func (c *Config) Client() *resource.Client {
	return resource.NewClient(c.Project, c.Database)
}

// SpecialValueMode returns the parsed decoder mode, falling back to literal.
func (c *Config) SpecialValueMode() convert.SpecialValueMode {
	mode, err := convert.ParseSpecialValueMode(c.SpecialValues)
	if err != nil {
		return convert.ModeLiteral
	}
	return mode
}

// GetFieldName returns the Go field name for a document field key
func (c *Config) GetFieldName(key string) string {
	if mapped, exists := c.Shape.FieldMappings[key]; exists {
		return mapped
	}
	return strcase.ToCamel(key)
}

// Overrides carries values given on the command line. Empty strings and nil pointers
// leave the file value in place.
type Overrides struct {
	Project       string
	Database      string
	SpecialValues string
	DetectTimes   *bool
	Format        string
	Indent        *int
	Package       string
	RootName      string
	Debug         bool
}

// LoadConfigWithCLI loads config with CLI argument precedence: CLI > config file > defaults
func LoadConfigWithCLI(configPath string, cli Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cli.Project != "" {
		cfg.Project = cli.Project
	}
	if cli.Database != "" {
		cfg.Database = cli.Database
	}
	if cli.SpecialValues != "" {
		cfg.SpecialValues = cli.SpecialValues
	}
	if cli.DetectTimes != nil {
		cfg.DetectTimes = *cli.DetectTimes
	}
	if cli.Format != "" {
		cfg.Output.Format = cli.Format
	}
	if cli.Indent != nil {
		cfg.Output.Indent = *cli.Indent
	}
	if cli.Package != "" {
		cfg.Shape.Package = cli.Package
	}
	if cli.RootName != "" {
		cfg.Shape.RootName = cli.RootName
	}
	// --debug can only switch debugging on
	if cli.Debug {
		cfg.Dev.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
