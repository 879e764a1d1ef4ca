// Package config provides YAML configuration loading for the agent, per
// SPEC_FULL.md §5. Unlike the teacher's multi-directory device/object/enum
// trees, this agent has a single flat configuration surface — port,
// community list, system-group text, plugin directory, and a proxy table —
// so Load reads one file rather than walking several directories.
//
// Grounded on the teacher's config/loader.go: same yaml.v3 decoder with
// KnownFields(false) (extra keys in an operator's file are tolerated, not
// fatal) and the same nil-logger-defaults-to-noop convention. See
// DESIGN.md "pkg/snmpmibd/config".
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Proxy is one entry in the proxies list: everything beneath OID is
// delegated to the upstream agent at Address:Port using Community.
type Proxy struct {
	OID       string `yaml:"oid"`
	Address   string `yaml:"address"`
	Port      int    `yaml:"port"`
	Community string `yaml:"community"`
	TimeoutMs int    `yaml:"timeout_ms"`
	Retries   int    `yaml:"retries"`
}

// Config is the fully-resolved agent configuration.
type Config struct {
	// Port is the UDP port the agent listens on (default 161).
	Port int `yaml:"port"`

	// MaxPacketSize bounds the largest UDP datagram accepted (default
	// 65507, the theoretical IPv4 UDP payload ceiling).
	MaxPacketSize int `yaml:"max_packet"`

	// Communities lists the read community strings accepted; a request
	// presenting any other community is silently dropped per spec.md §6.
	Communities []string `yaml:"communities"`

	SysContact  string `yaml:"sys_contact"`
	SysName     string `yaml:"sys_name"`
	SysLocation string `yaml:"sys_location"`

	// PluginDir, if non-empty, is scanned at startup for OID-named plugin
	// files (SPEC_FULL.md §4's supplemented plugin-directory feature).
	PluginDir string `yaml:"plugin_dir"`

	Proxies []Proxy `yaml:"proxies"`
}

func defaults() Config {
	return Config{
		Port:          161,
		MaxPacketSize: 65507,
		Communities:   []string{"public"},
	}
}

// Load reads and parses the YAML file at path. Missing optional fields fall
// back to the documented defaults; an entirely absent file is an error
// (unlike the teacher's directory trees, there is no meaningful "agent with
// no configuration at all" deployment).
func Load(path string, logger *slog.Logger) (Config, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}

	cfg := defaults()

	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(false)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
	}

	if cfg.Port == 0 {
		cfg.Port = 161
	}
	if cfg.MaxPacketSize == 0 {
		cfg.MaxPacketSize = 65507
	}
	if len(cfg.Communities) == 0 {
		cfg.Communities = []string{"public"}
	}
	for i, p := range cfg.Proxies {
		if p.TimeoutMs == 0 {
			cfg.Proxies[i].TimeoutMs = 3000
		}
		if p.Retries == 0 {
			cfg.Proxies[i].Retries = 2
		}
	}

	logger.Debug("config: loaded", "file", path, "port", cfg.Port, "proxies", len(cfg.Proxies))
	return cfg, nil
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
