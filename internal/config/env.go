package config

import (
	"fmt"
	"time"
)

// Environment variable names recognized by ApplyEnvOverrides.
const (
	EnvUpstreamURL  = "GATEWAIT_UPSTREAM_URL"
	EnvModel        = "GATEWAIT_MODEL"
	EnvPollInterval = "GATEWAIT_POLL_INTERVAL"
	EnvProbeTimeout = "GATEWAIT_PROBE_TIMEOUT"
	EnvStopWait     = "GATEWAIT_STOP_WAIT"
	EnvListen       = "GATEWAIT_LISTEN"
	EnvLogLevel     = "GATEWAIT_LOG_LEVEL"
)

// ApplyEnvOverrides applies recognized environment variables on top of the
// loaded config. The lookup function is injected so callers pass os.LookupEnv
// in production and a map in tests; nothing else in the process reads the
// environment.
func (c *Config) ApplyEnvOverrides(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvUpstreamURL); ok && v != "" {
		c.UpstreamURL = v
	}
	if v, ok := lookup(EnvModel); ok && v != "" {
		c.Model = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvListen); ok && v != "" {
		if c.Server == nil {
			c.Server = &ServerConfig{}
		}
		c.Server.Listen = v
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{EnvPollInterval, &c.PollInterval},
		{EnvProbeTimeout, &c.ProbeTimeout},
		{EnvStopWait, &c.StopWait},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		if parsed <= 0 {
			return fmt.Errorf("%s: must be positive, got %q", d.key, v)
		}
		*d.dst = parsed
	}
	return nil
}
