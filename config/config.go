// Package config resolves the control connection target and the machine
// inventory used by the command-line tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/go-nclink/nclink"
	"github.com/arloliu/go-nclink/units"
)

// Environment variables read by FromEnv.
const (
	EnvHost = "NCLINK_HOST"
	EnvPort = "NCLINK_PORT"
)

// Defaults used when the environment does not provide a usable value.
const (
	DefaultHost = "10.0.0.25"
	DefaultPort = 10000
)

// Target is the host and port of a control.
type Target struct {
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`
}

// Addr returns "host:port".
func (t Target) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// FromEnv returns the target named by NCLINK_HOST and NCLINK_PORT.
// Missing, blank or unparseable values silently fall back to the defaults.
func FromEnv() Target {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) Target {
	t := Target{Host: DefaultHost, Port: DefaultPort}

	if v, ok := lookup(EnvHost); ok && strings.TrimSpace(v) != "" {
		t.Host = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvPort); ok {
		if port, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && port > 0 && port <= 65535 {
			t.Port = port
		}
	}

	return t
}

// Timeouts overrides the transport timeouts. Zero fields keep the transport defaults.
type Timeouts struct {
	ConnectAttempts int      `yaml:"connect_attempts" toml:"connect_attempts"`
	RetryDelay      Duration `yaml:"retry_delay" toml:"retry_delay"`
	Write           Duration `yaml:"write" toml:"write"`
	Read            Duration `yaml:"read" toml:"read"`
	MaxResponseSize int      `yaml:"max_response_size" toml:"max_response_size"`
}

// Machine is one control in the inventory.
type Machine struct {
	Name           string `yaml:"name" toml:"name"`
	Host           string `yaml:"host" toml:"host"`
	Port           int    `yaml:"port" toml:"port"`
	ControlVersion string `yaml:"control_version" toml:"control_version"`
}

// Target returns the machine's connection target.
func (m Machine) Target() Target {
	return Target{Host: m.Host, Port: m.Port}
}

// Version returns the parsed control version.
func (m Machine) Version() units.ControlVersion {
	return units.ParseControlVersion(m.ControlVersion)
}

// Inventory is the content of a machine file.
type Inventory struct {
	Timeouts Timeouts  `yaml:"timeouts" toml:"timeouts"`
	Machines []Machine `yaml:"machines" toml:"machines"`
}

// LoadFile reads an inventory from a YAML (.yaml, .yml) or TOML (.toml) file.
// Machines without a host or port inherit the values from FromEnv.
func LoadFile(path string) (*Inventory, error) {
	//nolint:gosec // path is provided by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	var inv Inventory
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &inv)
	case ".toml":
		err = toml.Unmarshal(data, &inv)
	default:
		return nil, fmt.Errorf("config load failed (%s): unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config parse failed (%s): %w", path, err)
	}

	inv.normalize(FromEnv())

	if err := inv.Validate(); err != nil {
		return nil, fmt.Errorf("config invalid (%s): %w", path, err)
	}

	return &inv, nil
}

func (inv *Inventory) normalize(def Target) {
	for i := range inv.Machines {
		m := &inv.Machines[i]
		m.Name = strings.TrimSpace(m.Name)
		m.Host = strings.TrimSpace(m.Host)
		if m.Host == "" {
			m.Host = def.Host
		}
		if m.Port == 0 {
			m.Port = def.Port
		}
	}
}

// Validate checks machine names and ports.
func (inv *Inventory) Validate() error {
	if len(inv.Machines) == 0 {
		return fmt.Errorf("no machines defined")
	}

	seen := make(map[string]struct{}, len(inv.Machines))
	for i, m := range inv.Machines {
		if m.Name == "" {
			return fmt.Errorf("machine[%d]: name is required", i)
		}
		if _, dup := seen[m.Name]; dup {
			return fmt.Errorf("machine[%d]: duplicate name %q", i, m.Name)
		}
		seen[m.Name] = struct{}{}

		if m.Port < 1 || m.Port > 65535 {
			return fmt.Errorf("machine %q: port %d out of range [1, 65535]", m.Name, m.Port)
		}
	}

	if inv.Timeouts.ConnectAttempts < 0 || inv.Timeouts.MaxResponseSize < 0 {
		return fmt.Errorf("timeouts: negative values are not allowed")
	}

	return nil
}

// ConnOptions converts the timeout overrides into nclink options.
func (t Timeouts) ConnOptions() []nclink.ConnOption {
	var opts []nclink.ConnOption
	if t.ConnectAttempts > 0 {
		opts = append(opts, nclink.WithConnectAttempts(t.ConnectAttempts))
	}
	if t.RetryDelay > 0 {
		opts = append(opts, nclink.WithRetryDelay(time.Duration(t.RetryDelay)))
	}
	if t.Write > 0 {
		opts = append(opts, nclink.WithWriteTimeout(time.Duration(t.Write)))
	}
	if t.Read > 0 {
		opts = append(opts, nclink.WithReadTimeout(time.Duration(t.Read)))
	}
	if t.MaxResponseSize > 0 {
		opts = append(opts, nclink.WithMaxResponseSize(t.MaxResponseSize))
	}

	return opts
}
