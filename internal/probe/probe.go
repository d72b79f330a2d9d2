package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Probe is a strategy that determines if a dependency target is reachable.
// Implementations must be safe for concurrent use.
type Probe interface {
	// Check returns nil when the target is reachable. A non-nil error means
	// "not yet reachable"; callers retry, they do not escalate.
	Check(ctx context.Context) error
	// Describe returns a human-readable description of the probe.
	Describe() string
}

// Kind selects the reachability check used for a dependency target.
type Kind string

const (
	KindTCP     Kind = "tcp"
	KindHTTP    Kind = "http"
	KindCommand Kind = "cmd"
)

// Target describes one upstream dependency. Targets are read-only after
// construction; probing never mutates them.
type Target struct {
	Name       string `json:"name" mapstructure:"name"`
	Kind       Kind   `json:"kind" mapstructure:"kind"`
	Address    string `json:"address" mapstructure:"address"` // host:port for tcp targets
	URL        string `json:"url" mapstructure:"url"`         // for http targets
	Command    string `json:"command" mapstructure:"command"` // for cmd targets
	Soft       bool   `json:"soft" mapstructure:"soft"`       // advisory only; never blocks startup
	Require2xx bool   `json:"require_2xx" mapstructure:"require_2xx"`
}

// Validate checks that the target carries the field its kind requires.
func (t Target) Validate() error {
	switch t.Kind {
	case KindTCP:
		if t.Address == "" {
			return fmt.Errorf("target %s: tcp target requires address", t.Name)
		}
	case KindHTTP:
		if t.URL == "" {
			return fmt.Errorf("target %s: http target requires url", t.Name)
		}
	case KindCommand:
		if t.Command == "" {
			return fmt.Errorf("target %s: cmd target requires command", t.Name)
		}
	default:
		return fmt.Errorf("target %s: unknown kind %q", t.Name, t.Kind)
	}
	return nil
}

// Probe builds the Probe implementation for this target.
func (t Target) Probe() (Probe, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	switch t.Kind {
	case KindTCP:
		return TCPProbe{Address: t.Address}, nil
	case KindHTTP:
		return HTTPProbe{URL: t.URL, Require2xx: t.Require2xx}, nil
	case KindCommand:
		return CommandProbe{Command: t.Command}, nil
	}
	return nil, fmt.Errorf("target %s: unknown kind %q", t.Name, t.Kind)
}

// Describe returns the probe description without constructing a probe for
// invalid targets.
func (t Target) Describe() string {
	p, err := t.Probe()
	if err != nil {
		return "invalid:" + t.Name
	}
	return p.Describe()
}

// ParseTarget parses a compact target string as used on the command line.
// Supported forms:
//   - "tcp://host:port" or a bare "host:port"
//   - "http://..." / "https://..."
//   - "cmd:command args"
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, errors.New("empty target")
	}
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "tcp://"):
		return Target{Name: s, Kind: KindTCP, Address: s[len("tcp://"):]}, nil
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return Target{Name: s, Kind: KindHTTP, URL: s}, nil
	case strings.HasPrefix(lower, "cmd:"):
		return Target{Name: s, Kind: KindCommand, Command: s[len("cmd:"):]}, nil
	case strings.Contains(s, "://"):
		return Target{}, fmt.Errorf("unsupported target scheme in %q", s)
	default:
		// Bare host:port defaults to a TCP probe.
		if !strings.Contains(s, ":") {
			return Target{}, fmt.Errorf("target %q: expected host:port", s)
		}
		return Target{Name: s, Kind: KindTCP, Address: s}, nil
	}
}
