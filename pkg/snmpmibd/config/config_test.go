package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vpbank/snmpmibd/pkg/snmpmibd/config"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "snmpmibd.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeTempConfig(t, `
port: 1161
communities: ["private", "parts"]
sys_contact: ops@example.com
sys_name: testhost
sys_location: rack 1
proxies:
  - oid: "1.3.6.1.4.1.9999"
    address: 10.0.0.5
    port: 161
    community: public
`)
	cfg, err := config.Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 1161 {
		t.Errorf("Port = %d, want 1161", cfg.Port)
	}
	if len(cfg.Communities) != 2 || cfg.Communities[0] != "private" {
		t.Errorf("Communities = %v, want [private parts]", cfg.Communities)
	}
	if len(cfg.Proxies) != 1 || cfg.Proxies[0].Address != "10.0.0.5" {
		t.Fatalf("Proxies = %+v", cfg.Proxies)
	}
	// proxy timeout/retries defaults fill in when unset
	if cfg.Proxies[0].TimeoutMs != 3000 {
		t.Errorf("Proxies[0].TimeoutMs = %d, want default 3000", cfg.Proxies[0].TimeoutMs)
	}
	if cfg.Proxies[0].Retries != 2 {
		t.Errorf("Proxies[0].Retries = %d, want default 2", cfg.Proxies[0].Retries)
	}
}

func TestLoad_DefaultsFillMissingFields(t *testing.T) {
	path := writeTempConfig(t, `sys_name: bare`)
	cfg, err := config.Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 161 {
		t.Errorf("Port = %d, want default 161", cfg.Port)
	}
	if cfg.MaxPacketSize != 65507 {
		t.Errorf("MaxPacketSize = %d, want default 65507", cfg.MaxPacketSize)
	}
	if len(cfg.Communities) != 1 || cfg.Communities[0] != "public" {
		t.Errorf("Communities = %v, want default [public]", cfg.Communities)
	}
}

func TestLoad_UnknownFieldsTolerated(t *testing.T) {
	path := writeTempConfig(t, `
port: 1161
some_future_field: true
`)
	cfg, err := config.Load(path, nil)
	if err != nil {
		t.Fatalf("Load should tolerate unknown fields, got: %v", err)
	}
	if cfg.Port != 1161 {
		t.Errorf("Port = %d, want 1161", cfg.Port)
	}
}

func TestLoad_MissingFile_ReturnsError(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	if err == nil {
		t.Fatal("Load of a missing file should return an error")
	}
}
