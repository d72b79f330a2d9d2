package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/loykin/gatewait/internal/probe"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gatewait.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
env = ["FOO=bar"]

[supervisor]
poll_interval = "500ms"
probe_timeout = "1s"
stop_wait = "2s"
log_level = "debug"

[upstream]
url = "ws://gateway:9000"
model = "test-model"

[[dependency]]
name = "db"
kind = "tcp"
address = "127.0.0.1:5432"

[[dependency]]
name = "cache"
kind = "http"
url = "http://127.0.0.1:6379/ping"
soft = true

[auxiliary]
name = "health"
command = "sleep 100"

[primary]
name = "app"
command = "sleep 100"

[server]
listen = ":9100"
base_path = "/gatewait"

[metrics]
enabled = true

[journal]
dsn = "sqlite:///tmp/journal.db"
`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.PollInterval != 500*time.Millisecond || c.ProbeTimeout != time.Second || c.StopWait != 2*time.Second {
		t.Fatalf("durations: %v %v %v", c.PollInterval, c.ProbeTimeout, c.StopWait)
	}
	if c.LogLevel != "debug" {
		t.Fatalf("log level = %q", c.LogLevel)
	}
	if c.UpstreamURL != "ws://gateway:9000" || c.Model != "test-model" {
		t.Fatalf("upstream: %q %q", c.UpstreamURL, c.Model)
	}
	if len(c.Dependencies) != 2 {
		t.Fatalf("dependencies = %d", len(c.Dependencies))
	}
	if c.Dependencies[0].Kind != probe.KindTCP || c.Dependencies[0].Address != "127.0.0.1:5432" {
		t.Fatalf("dep[0]: %+v", c.Dependencies[0])
	}
	if !c.Dependencies[1].Soft {
		t.Fatalf("dep[1] should be soft")
	}
	if c.Auxiliary == nil || c.Auxiliary.Name != "health" {
		t.Fatalf("auxiliary: %+v", c.Auxiliary)
	}
	if c.Primary.Command != "sleep 100" {
		t.Fatalf("primary: %+v", c.Primary)
	}
	if c.Server.Listen != ":9100" || c.Server.BasePath != "/gatewait" {
		t.Fatalf("server: %+v", c.Server)
	}
	if c.Metrics == nil || !c.Metrics.Enabled {
		t.Fatalf("metrics: %+v", c.Metrics)
	}
	if c.Journal == nil || c.Journal.DSN != "sqlite:///tmp/journal.db" {
		t.Fatalf("journal: %+v", c.Journal)
	}

	env := c.ChildEnv()
	want := []string{"FOO=bar", "UPSTREAM_URL=ws://gateway:9000", "MODEL_NAME=test-model"}
	if len(env) != len(want) {
		t.Fatalf("child env = %v", env)
	}
	for i := range want {
		if env[i] != want[i] {
			t.Fatalf("child env[%d] = %q, want %q", i, env[i], want[i])
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
[primary]
command = "sleep 1"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.PollInterval != DefaultPollInterval || c.ProbeTimeout != DefaultProbeTimeout || c.StopWait != DefaultStopWait {
		t.Fatalf("defaults: %v %v %v", c.PollInterval, c.ProbeTimeout, c.StopWait)
	}
	if c.UpstreamURL != DefaultUpstreamURL || c.Model != DefaultModel {
		t.Fatalf("upstream defaults: %q %q", c.UpstreamURL, c.Model)
	}
	if c.Primary.Name != "primary" {
		t.Fatalf("primary name should default, got %q", c.Primary.Name)
	}
	if c.Server == nil || c.Server.Listen != DefaultListen {
		t.Fatalf("server default: %+v", c.Server)
	}
	if c.Auxiliary != nil {
		t.Fatalf("auxiliary should be nil when not configured")
	}
}

func TestLoadRejectsMissingPrimary(t *testing.T) {
	path := writeConfig(t, `
[[dependency]]
name = "db"
kind = "tcp"
address = "127.0.0.1:5432"
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error without primary command")
	}
}

func TestLoadRejectsInvalidDependency(t *testing.T) {
	path := writeConfig(t, `
[primary]
command = "sleep 1"

[[dependency]]
name = "db"
kind = "tcp"
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for tcp dependency without address")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		EnvUpstreamURL:  "ws://other:8001",
		EnvModel:        "override-model",
		EnvPollInterval: "250ms",
		EnvStopWait:     "5s",
		EnvListen:       ":7000",
		EnvLogLevel:     "warn",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	c := Default()
	if err := c.ApplyEnvOverrides(lookup); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if c.UpstreamURL != "ws://other:8001" || c.Model != "override-model" {
		t.Fatalf("upstream overrides: %q %q", c.UpstreamURL, c.Model)
	}
	if c.PollInterval != 250*time.Millisecond {
		t.Fatalf("poll interval = %v", c.PollInterval)
	}
	if c.ProbeTimeout != DefaultProbeTimeout {
		t.Fatalf("probe timeout should keep default, got %v", c.ProbeTimeout)
	}
	if c.StopWait != 5*time.Second {
		t.Fatalf("stop wait = %v", c.StopWait)
	}
	if c.Server.Listen != ":7000" {
		t.Fatalf("listen = %q", c.Server.Listen)
	}
	if c.LogLevel != "warn" {
		t.Fatalf("log level = %q", c.LogLevel)
	}
}

func TestApplyEnvOverridesRejectsBadDuration(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == EnvPollInterval {
			return "soon", true
		}
		return "", false
	}
	c := Default()
	if err := c.ApplyEnvOverrides(lookup); err == nil {
		t.Fatalf("expected error for unparsable duration")
	}

	lookup = func(k string) (string, bool) {
		if k == EnvStopWait {
			return "-1s", true
		}
		return "", false
	}
	if err := c.ApplyEnvOverrides(lookup); err == nil {
		t.Fatalf("expected error for negative duration")
	}
}

func TestLoadAppliesLogDefaultsToChildren(t *testing.T) {
	path := writeConfig(t, `
[primary]
command = "sleep 1"

[auxiliary]
command = "sleep 1"

[log]
dir = "/var/log/gatewait"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !c.Primary.Log.Enabled() {
		t.Fatalf("primary should inherit log config")
	}
	if c.Auxiliary == nil || !c.Auxiliary.Log.Enabled() {
		t.Fatalf("auxiliary should inherit log config")
	}
	if c.Auxiliary.Name != "auxiliary" {
		t.Fatalf("auxiliary name should default, got %q", c.Auxiliary.Name)
	}
}
