package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mcncl/fsvalue/internal/convert"
	"github.com/mcncl/fsvalue/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "fsvalue_config_*.yml")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(tmpFile.Name()) })

	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())
	return tmpFile.Name()
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg := NewConfig()

	assert.Empty(t, cfg.Project)
	assert.Equal(t, "(default)", cfg.Database)
	assert.Equal(t, "literal", cfg.SpecialValues)
	assert.False(t, cfg.DetectTimes)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 2, cfg.Output.Indent)
	assert.Equal(t, "main", cfg.Shape.Package)
	assert.Equal(t, "Document", cfg.Shape.RootName)
	assert.True(t, cfg.Shape.Format)
	assert.False(t, cfg.Dev.Debug)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_LoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
project: "demo"
database: "orders"
special_values: "handle"
detect_times: true
output:
  format: "yaml"
  indent: 4
shape:
  package: "models"
  root_name: "User"
  field_mappings:
    user_id: "UserID"
  format: false
dev:
  debug: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Project)
	assert.Equal(t, "orders", cfg.Database)
	assert.Equal(t, convert.ModeHandle, cfg.SpecialValueMode())
	assert.True(t, cfg.DetectTimes)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, 4, cfg.Output.Indent)
	assert.Equal(t, "models", cfg.Shape.Package)
	assert.Equal(t, "User", cfg.Shape.RootName)
	assert.Equal(t, "UserID", cfg.Shape.FieldMappings["user_id"])
	assert.False(t, cfg.Shape.Format)
	assert.True(t, cfg.Dev.Debug)

	client := cfg.Client()
	assert.Equal(t, "projects/demo/databases/orders/documents", client.Root())
}

func TestConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `project: "demo"`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Project)
	assert.Equal(t, "(default)", cfg.Database)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "Document", cfg.Shape.RootName)
}

func TestConfig_LoadNonexistentFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestConfig_LoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, `
project: "demo"
output:
  format: [unclosed
`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		target error
	}{
		{name: "unknown special values", modify: func(c *Config) { c.SpecialValues = "magic" }},
		{name: "unknown format", modify: func(c *Config) { c.Output.Format = "xml" }, target: errors.ErrUnsupportedFormat},
		{name: "negative indent", modify: func(c *Config) { c.Output.Indent = -1 }},
		{name: "database with slash", modify: func(c *Config) { c.Database = "a/b" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestConfig_LoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `special_values: "magic"`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config file")
}

func TestConfig_FindConfigFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tmpDir) }()

	nestedDir := filepath.Join(tmpDir, "project", "subdir")
	require.NoError(t, os.MkdirAll(nestedDir, 0o755))

	configPath := filepath.Join(tmpDir, "project", ".fsvalue.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(`project: "found"`), 0o644))

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()
	require.NoError(t, os.Chdir(nestedDir))

	// Should find it in the parent directory
	foundPath := FindConfigFile()
	require.NotEmpty(t, foundPath, "Should find config file")

	foundContent, err := os.ReadFile(foundPath)
	require.NoError(t, err)
	assert.Contains(t, string(foundContent), `project: "found"`)
}

func TestConfig_FindConfigFileNotFound(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "no_config_test")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tmpDir) }()

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()
	require.NoError(t, os.Chdir(tmpDir))

	assert.Empty(t, FindConfigFile())
}

func TestConfig_GetFieldName(t *testing.T) {
	cfg := NewConfig()
	cfg.Shape.FieldMappings = map[string]string{
		"user_id": "UserID",
		"api_key": "APIKey",
	}

	// Custom mappings take precedence
	assert.Equal(t, "UserID", cfg.GetFieldName("user_id"))
	assert.Equal(t, "APIKey", cfg.GetFieldName("api_key"))

	assert.Equal(t, "UserName", cfg.GetFieldName("user_name"))
	assert.Equal(t, "CreatedAt", cfg.GetFieldName("createdAt"))
}

func TestConfig_SpecialValueModeFallback(t *testing.T) {
	cfg := &Config{SpecialValues: "bogus"}
	assert.Equal(t, convert.ModeLiteral, cfg.SpecialValueMode())
}

func TestLoadConfigWithPrecedence(t *testing.T) {
	path := writeConfig(t, `
project: "from-file"
database: "filedb"
output:
  format: "yaml"
shape:
  root_name: "FileRoot"
`)

	detect := true
	indent := 0
	cfg, err := LoadConfigWithCLI(path, Overrides{
		Project:       "from-cli",
		SpecialValues: "handle",
		DetectTimes:   &detect,
		Format:        "cbor",
		Indent:        &indent,
		Package:       "api",
		Debug:         true,
	})
	require.NoError(t, err)

	// CLI > config file > defaults
	assert.Equal(t, "from-cli", cfg.Project)
	assert.Equal(t, "filedb", cfg.Database)
	assert.Equal(t, "handle", cfg.SpecialValues)
	assert.True(t, cfg.DetectTimes)
	assert.Equal(t, "cbor", cfg.Output.Format)
	assert.Equal(t, 0, cfg.Output.Indent)
	assert.Equal(t, "api", cfg.Shape.Package)
	assert.Equal(t, "FileRoot", cfg.Shape.RootName)
	assert.True(t, cfg.Dev.Debug)
}

func TestLoadConfigWithPrecedence_NoOverrides(t *testing.T) {
	path := writeConfig(t, `
project: "demo"
detect_times: true
dev:
  debug: true
`)

	cfg, err := LoadConfigWithCLI(path, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Project)
	assert.True(t, cfg.DetectTimes)
	assert.True(t, cfg.Dev.Debug)
	assert.Equal(t, "Document", cfg.Shape.RootName)
}

func TestLoadConfigWithCLI_NoFile(t *testing.T) {
	cfg, err := LoadConfigWithCLI("", Overrides{Project: "demo"})
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Project)
	assert.Equal(t, "(default)", cfg.Database)

	_, err = LoadConfigWithCLI("", Overrides{Format: "xml"})
	assert.ErrorIs(t, err, errors.ErrUnsupportedFormat)
}
