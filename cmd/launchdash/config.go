package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ruslano69/launchdash/pkg/dashboard"
	"github.com/ruslano69/launchdash/pkg/resultlog"
	"github.com/ruslano69/launchdash/pkg/retry"
	"github.com/ruslano69/launchdash/pkg/source"
)

// Config - конфигурация launchdash
type Config struct {
	Server    ServerSection    `yaml:"server"`
	Source    source.Config    `yaml:"source"`
	Dashboard DashboardSection `yaml:"dashboard"`
	ResultLog resultlog.Config `yaml:"result_log"`
	Log       LogSection       `yaml:"log"`
}

// ServerSection controls the HTTP listener.
type ServerSection struct {
	Addr            string        `yaml:"addr"`             // default ":8050"
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default 10s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default 15s
}

// DashboardSection - параметры layout
type DashboardSection struct {
	Title       string  `yaml:"title"`
	InitialSite string  `yaml:"initial_site"`
	SliderMin   float64 `yaml:"slider_min"`
	SliderMax   float64 `yaml:"slider_max"`
	SliderStep  float64 `yaml:"slider_step"`
}

// Options converts the section to dashboard options.
func (d DashboardSection) Options() dashboard.Options {
	return dashboard.Options{
		Title:       d.Title,
		InitialSite: d.InitialSite,
		SliderMin:   d.SliderMin,
		SliderMax:   d.SliderMax,
		SliderStep:  d.SliderStep,
	}
}

// LogSection selects the zerolog level and output format.
type LogSection struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // console | json
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8050"
	cfg.Server.ReadTimeout = 10 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 15 * time.Second
	cfg.Source.Path = source.DefaultPath
	cfg.Source.Columns = source.DefaultColumns()
	cfg.Source.Retry = retry.DefaultConfig()
	cfg.Dashboard.Title = dashboard.DefaultTitle
	cfg.Dashboard.SliderMax = 10000
	cfg.Dashboard.SliderStep = 1000
	cfg.ResultLog.Name = "launches"
	cfg.ResultLog.TTL = 3600
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	return cfg
}

// loadConfig reads the YAML config at path over the defaults.
// An empty path yields the defaults alone.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}
	return cfg, nil
}

// validate checks the merged config, after flag overrides.
func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return errors.New("config: server.addr is required")
	}
	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("config: source: %w", err)
	}
	if err := c.Source.Retry.Validate(); err != nil {
		return fmt.Errorf("config: source.retry: %w", err)
	}
	d := c.Dashboard
	if d.SliderStep < 0 {
		return fmt.Errorf("config: dashboard.slider_step must be positive, got %g", d.SliderStep)
	}
	if d.SliderMin > d.SliderMax {
		return fmt.Errorf("config: dashboard.slider_min %g is above slider_max %g", d.SliderMin, d.SliderMax)
	}
	if c.ResultLog.Enabled && c.ResultLog.Address == "" {
		return errors.New("config: result_log.address is required when enabled")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config: log.format %q (console/json)", c.Log.Format)
	}
	return nil
}
