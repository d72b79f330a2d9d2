package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/loykin/gatewait/internal/child"
	"github.com/loykin/gatewait/internal/logger"
	"github.com/loykin/gatewait/internal/probe"
)

// Defaults applied when neither the config file nor the environment provides
// a value.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultProbeTimeout = 3 * time.Second
	DefaultStopWait     = 3 * time.Second
	DefaultListen       = ":8080"
	DefaultUpstreamURL  = "ws://mcp-server:8001"
	DefaultModel        = "hf.co/unsloth/Qwen3-1.7B-GGUF:Q4_K_M"
)

// Config is the supervisor's full configuration. It is constructed once at
// startup (Default -> Load -> ApplyEnvOverrides -> flag overrides) and passed
// by reference; nothing reads the environment after that point.
type Config struct {
	PollInterval time.Duration // sleep between failed probe attempts
	ProbeTimeout time.Duration // per-attempt probe timeout
	StopWait     time.Duration // grace period before SIGKILL escalation
	LogLevel     string

	// UpstreamURL and Model are plain strings handed to the children via
	// ChildEnv; the supervisor itself never interprets them.
	UpstreamURL string
	Model       string

	Env          []string // extra "K=V" entries for every child
	Dependencies []probe.Target
	Auxiliary    *child.Spec // optional companion process
	Primary      child.Spec

	Server  *ServerConfig
	Metrics *MetricsConfig
	Journal *JournalConfig
	Log     *logger.Config // default stdio capture for children without one
}

type ServerConfig struct {
	Listen   string `mapstructure:"listen"`
	BasePath string `mapstructure:"base_path"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"` // optional standalone listener; empty mounts under the status server
}

type JournalConfig struct {
	DSN string `mapstructure:"dsn"`
}

// fileConfig mirrors the TOML structure.
type fileConfig struct {
	Supervisor struct {
		PollInterval time.Duration `mapstructure:"poll_interval"`
		ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
		StopWait     time.Duration `mapstructure:"stop_wait"`
		LogLevel     string        `mapstructure:"log_level"`
	} `mapstructure:"supervisor"`
	Upstream struct {
		URL   string `mapstructure:"url"`
		Model string `mapstructure:"model"`
	} `mapstructure:"upstream"`
	Env          []string       `mapstructure:"env"`
	Dependencies []probe.Target `mapstructure:"dependency"`
	Auxiliary    *child.Spec    `mapstructure:"auxiliary"`
	Primary      *child.Spec    `mapstructure:"primary"`
	Server       *ServerConfig  `mapstructure:"server"`
	Metrics      *MetricsConfig `mapstructure:"metrics"`
	Journal      *JournalConfig `mapstructure:"journal"`
	Log          *logger.Config `mapstructure:"log"`
}

// Default returns a Config with the documented defaults and no processes.
func Default() *Config {
	return &Config{
		PollInterval: DefaultPollInterval,
		ProbeTimeout: DefaultProbeTimeout,
		StopWait:     DefaultStopWait,
		LogLevel:     "info",
		UpstreamURL:  DefaultUpstreamURL,
		Model:        DefaultModel,
		Server:       &ServerConfig{Listen: DefaultListen},
	}
}

// Load reads a TOML config file and merges it over the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, err
	}

	c := Default()
	if fc.Supervisor.PollInterval > 0 {
		c.PollInterval = fc.Supervisor.PollInterval
	}
	if fc.Supervisor.ProbeTimeout > 0 {
		c.ProbeTimeout = fc.Supervisor.ProbeTimeout
	}
	if fc.Supervisor.StopWait > 0 {
		c.StopWait = fc.Supervisor.StopWait
	}
	if fc.Supervisor.LogLevel != "" {
		c.LogLevel = fc.Supervisor.LogLevel
	}
	if fc.Upstream.URL != "" {
		c.UpstreamURL = fc.Upstream.URL
	}
	if fc.Upstream.Model != "" {
		c.Model = fc.Upstream.Model
	}
	c.Env = fc.Env
	c.Dependencies = fc.Dependencies
	c.Auxiliary = fc.Auxiliary
	if fc.Primary != nil {
		c.Primary = *fc.Primary
	}
	if fc.Server != nil {
		c.Server = fc.Server
		if c.Server.Listen == "" {
			c.Server.Listen = DefaultListen
		}
	}
	c.Metrics = fc.Metrics
	c.Journal = fc.Journal
	c.Log = fc.Log

	applyLogDefaults(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// applyLogDefaults copies the top-level log config onto children that do not
// configure their own capture.
func applyLogDefaults(c *Config) {
	if c.Log == nil {
		return
	}
	if c.Auxiliary != nil && !c.Auxiliary.Log.Enabled() {
		c.Auxiliary.Log = *c.Log
	}
	if !c.Primary.Log.Enabled() {
		c.Primary.Log = *c.Log
	}
}

// Validate checks the parts the supervisor cannot run without.
func (c *Config) Validate() error {
	if c.Primary.Command == "" {
		return fmt.Errorf("primary command is required")
	}
	if c.Primary.Name == "" {
		c.Primary.Name = "primary"
	}
	if c.Auxiliary != nil {
		if c.Auxiliary.Command == "" {
			return fmt.Errorf("auxiliary requires a command when configured")
		}
		if c.Auxiliary.Name == "" {
			c.Auxiliary.Name = "auxiliary"
		}
	}
	for i, d := range c.Dependencies {
		if d.Name == "" {
			return fmt.Errorf("dependency %d: name is required", i)
		}
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ChildEnv returns the configured extra child environment, including the
// upstream URL and model identifier the workloads expect.
func (c *Config) ChildEnv() []string {
	out := make([]string, 0, len(c.Env)+2)
	out = append(out, c.Env...)
	out = append(out, "UPSTREAM_URL="+c.UpstreamURL)
	out = append(out, "MODEL_NAME="+c.Model)
	return out
}
