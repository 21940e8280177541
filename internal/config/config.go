// Package config loads generator settings. Later sources win: built-in
// defaults, a YAML file, a .env file, the process environment, and finally
// command line flags applied by the caller.
package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mathieuprog/tzdb-test/internal/fixture"
	"github.com/mathieuprog/tzdb-test/internal/rules"
)

// EnvPrefix starts every environment variable the config reads.
const EnvPrefix = "TZDBTEST_"

type Config struct {
	InputDir    string        `yaml:"input_dir"`
	OutputDir   string        `yaml:"output_dir"`
	Runtime     string        `yaml:"runtime"`
	Step        time.Duration `yaml:"step"`
	Clean       bool          `yaml:"clean"`
	SkipInvalid bool          `yaml:"skip_invalid"`
	Concurrency int           `yaml:"concurrency"`
	MetricsFile string        `yaml:"metrics_file"`

	Provider      string `yaml:"provider"`
	ZoneinfoDir   string `yaml:"zoneinfo_dir"`
	TZDataVersion string `yaml:"tzdata_version"`
	CacheSize     int    `yaml:"cache_size"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default mirrors the layout of the fixture repository: files/input and
// files/output relative to the working directory.
func Default() Config {
	return Config{
		InputDir:    "files/input",
		OutputDir:   "files/output",
		Runtime:     fixture.DefaultRuntime,
		Step:        fixture.DefaultStep,
		Clean:       true,
		Concurrency: runtime.NumCPU(),
		Provider:    rules.KindSystem,
		CacheSize:   512,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// Load applies the YAML file at path (if path is not empty), then the
// variables of envFile (if not empty), then the process environment, then
// each of overrides in order, and validates the result. Command line flags
// are passed as an override.
func Load(path, envFile string, overrides ...func(*Config) error) (Config, error) {
	cfg, err := read(path, envFile)
	if err != nil {
		return cfg, err
	}
	for _, override := range overrides {
		if err := override(&cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

func read(path, envFile string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "reading config")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parsing config %s", path)
		}
	}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		if err != nil {
			return cfg, errors.Wrapf(err, "reading env file %s", envFile)
		}
		if err := cfg.ApplyEnv(vars); err != nil {
			return cfg, errors.Wrapf(err, "env file %s", envFile)
		}
	}
	if err := cfg.ApplyEnv(environ()); err != nil {
		return cfg, errors.Wrap(err, "environment")
	}
	return cfg, nil
}

func environ() map[string]string {
	vars := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, EnvPrefix) {
			vars[k] = v
		}
	}
	return vars
}

// ApplyEnv sets the fields named by TZDBTEST_* keys of vars, for example
// TZDBTEST_INPUT_DIR or TZDBTEST_TZDATA_VERSION. Other keys are ignored.
func (c *Config) ApplyEnv(vars map[string]string) error {
	for key, value := range vars {
		name, ok := strings.CutPrefix(key, EnvPrefix)
		if !ok {
			continue
		}
		var err error
		switch strings.ToLower(name) {
		case "input_dir":
			c.InputDir = value
		case "output_dir":
			c.OutputDir = value
		case "runtime":
			c.Runtime = value
		case "step":
			c.Step, err = time.ParseDuration(value)
		case "clean":
			c.Clean, err = strconv.ParseBool(value)
		case "skip_invalid":
			c.SkipInvalid, err = strconv.ParseBool(value)
		case "concurrency":
			c.Concurrency, err = strconv.Atoi(value)
		case "metrics_file":
			c.MetricsFile = value
		case "provider":
			c.Provider = value
		case "zoneinfo_dir":
			c.ZoneinfoDir = value
		case "tzdata_version":
			c.TZDataVersion = value
		case "cache_size":
			c.CacheSize, err = strconv.Atoi(value)
		case "log_level":
			c.LogLevel = value
		case "log_format":
			c.LogFormat = value
		default:
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "%s=%q", key, value)
		}
	}
	return nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c Config) Validate() error {
	switch strings.ToLower(c.Provider) {
	case rules.KindSystem, rules.KindEmbedded:
	case rules.KindDir:
		if c.ZoneinfoDir == "" {
			return errors.New("provider dir needs zoneinfo_dir")
		}
	default:
		return errors.Errorf("unknown provider %q", c.Provider)
	}
	if c.Step <= 0 || c.Step > 24*time.Hour {
		return errors.Errorf("step %s out of range", c.Step)
	}
	if c.Concurrency < 1 {
		return errors.Errorf("concurrency %d must be at least 1", c.Concurrency)
	}
	if c.CacheSize < 0 {
		return errors.Errorf("cache_size %d must not be negative", c.CacheSize)
	}
	return nil
}

// RuleOptions is the provider part of the config.
func (c Config) RuleOptions() rules.Options {
	return rules.Options{
		Kind:      c.Provider,
		Dir:       c.ZoneinfoDir,
		Version:   c.TZDataVersion,
		CacheSize: c.CacheSize,
	}
}

// GeneratorOptions is the driver part of the config.
func (c Config) GeneratorOptions() fixture.Options {
	return fixture.Options{
		InputDir:    c.InputDir,
		OutputDir:   c.OutputDir,
		Runtime:     c.Runtime,
		Step:        c.Step,
		Clean:       c.Clean,
		SkipInvalid: c.SkipInvalid,
		Concurrency: c.Concurrency,
	}
}
