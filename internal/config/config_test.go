package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathieuprog/tzdb-test/internal/rules"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "files/input", cfg.InputDir)
	assert.Equal(t, "go", cfg.Runtime)
	assert.Equal(t, 15*time.Minute, cfg.Step)
	assert.Equal(t, rules.KindSystem, cfg.Provider)
	assert.True(t, cfg.Clean)
}

func TestLoadLayers(t *testing.T) {
	yamlPath := writeFile(t, "tzdbtest.yaml", `
input_dir: fixtures/in
output_dir: fixtures/out
step: 30m
provider: embedded
tzdata_version: 2024a
concurrency: 3
`)
	envPath := writeFile(t, ".env", "TZDBTEST_OUTPUT_DIR=from-dotenv\nTZDBTEST_SKIP_INVALID=true\nUNRELATED=1\n")
	t.Setenv("TZDBTEST_CONCURRENCY", "7")

	cfg, err := Load(yamlPath, envPath)
	require.NoError(t, err)
	assert.Equal(t, "fixtures/in", cfg.InputDir)
	assert.Equal(t, "from-dotenv", cfg.OutputDir)
	assert.Equal(t, 30*time.Minute, cfg.Step)
	assert.Equal(t, rules.KindEmbedded, cfg.Provider)
	assert.Equal(t, "2024a", cfg.TZDataVersion)
	assert.True(t, cfg.SkipInvalid)
	assert.Equal(t, 7, cfg.Concurrency)

	opts := cfg.RuleOptions()
	assert.Equal(t, rules.Options{Kind: rules.KindEmbedded, Version: "2024a", CacheSize: 512}, opts)
	gen := cfg.GeneratorOptions()
	assert.Equal(t, "from-dotenv", gen.OutputDir)
	assert.Equal(t, 7, gen.Concurrency)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "step: [1, 2]\n"), "")
	assert.Error(t, err)

	_, err = Load("", filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)

	_, err = Load("", writeFile(t, ".env", "TZDBTEST_STEP=fortnight\n"))
	assert.ErrorContains(t, err, "TZDBTEST_STEP")

	_, err = Load(writeFile(t, "dir.yaml", "provider: dir\n"), "")
	assert.ErrorContains(t, err, "zoneinfo_dir")
}

func TestLoadOverrides(t *testing.T) {
	yamlPath := writeFile(t, "tzdbtest.yaml", "provider: dir\nruntime: java\n")

	cfg, err := Load(yamlPath, "",
		func(c *Config) error {
			c.Provider = rules.KindEmbedded
			return nil
		},
		func(c *Config) error {
			c.Runtime = "go"
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, rules.KindEmbedded, cfg.Provider)
	assert.Equal(t, "go", cfg.Runtime)

	_, err = Load(yamlPath, "", func(c *Config) error { return errors.New("bad flag") })
	assert.EqualError(t, err, "bad flag")

	_, err = Load("", "", func(c *Config) error {
		c.Concurrency = 0
		return nil
	})
	assert.ErrorContains(t, err, "concurrency")
}

func TestValidate(t *testing.T) {
	var tests = []struct {
		name   string
		modify func(c *Config)
	}{
		{"unknown provider", func(c *Config) { c.Provider = "cldr" }},
		{"zero step", func(c *Config) { c.Step = 0 }},
		{"long step", func(c *Config) { c.Step = 48 * time.Hour }},
		{"no workers", func(c *Config) { c.Concurrency = 0 }},
		{"negative cache", func(c *Config) { c.CacheSize = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
