package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iwvelando/fantasy-f1-optimiser/pkg/constants"
)

func TestLoadServerConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "missing.yaml"), ServerConfig{})
	if err != nil {
		t.Fatalf("LoadServerConfig() error = %v", err)
	}

	if cfg.Address != constants.DefaultServerAddress {
		t.Fatalf("expected default address, got %q", cfg.Address)
	}
	if cfg.BodySizeBytes() != constants.DefaultMaxUploadSizeBytes {
		t.Fatalf("expected default max body size, got %d", cfg.BodySizeBytes())
	}
}

func TestLoadServerConfigOverridesBase(t *testing.T) {
	base := ServerConfig{Address: ":9999", MaxBodySize: "64K"}

	dir := t.TempDir()
	path := filepath.Join(dir, "server-config.yaml")
	if err := os.WriteFile(path, []byte("address: 127.0.0.1:9000\nmaxBodySize: 2M\n"), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := LoadServerConfig(path, base)
	if err != nil {
		t.Fatalf("LoadServerConfig() error = %v", err)
	}
	if cfg.Address != "127.0.0.1:9000" {
		t.Fatalf("expected address override, got %s", cfg.Address)
	}
	if cfg.BodySizeBytes() != 2*1024*1024 {
		t.Fatalf("expected max body override, got %d", cfg.BodySizeBytes())
	}
	if base.Address != ":9999" {
		t.Fatalf("base config mutated: %s", base.Address)
	}
}

func TestLoadServerConfigKeepsBaseForUnsetKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server-config.yaml")
	if err := os.WriteFile(path, []byte("address: :7000\n"), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := LoadServerConfig(path, ServerConfig{MaxBodySize: "64K"})
	if err != nil {
		t.Fatalf("LoadServerConfig() error = %v", err)
	}
	if cfg.Address != ":7000" || cfg.BodySizeBytes() != 64*1024 {
		t.Fatalf("unexpected server config %+v (%d bytes)", cfg, cfg.BodySizeBytes())
	}
}

func TestLoadServerConfigInvalidSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("maxBodySize: invalid"), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	if _, err := LoadServerConfig(path, ServerConfig{}); err == nil {
		t.Fatal("expected error for invalid size but got nil")
	}
}

func TestServerSectionFromMainConfiguration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  address: :8123\n  maxBodySize: 128K\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if conf.Server.Address != ":8123" || conf.Server.BodySizeBytes() != 128*1024 {
		t.Fatalf("unexpected server section %+v", conf.Server)
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"":          constants.DefaultMaxUploadSizeBytes,
		"1024":      1024,
		"512b":      512,
		"256K":      256 * 1024,
		"1m":        1024 * 1024,
		"3MB":       3 * 1024 * 1024,
		"  4096   ": 4096,
	}

	for input, expected := range tests {
		got, err := ParseSize(input)
		if err != nil {
			t.Fatalf("ParseSize(%q) returned error: %v", input, err)
		}
		if got != expected {
			t.Fatalf("ParseSize(%q) = %d, expected %d", input, got, expected)
		}
	}

	for _, bad := range []string{"1G", "abc"} {
		if _, err := ParseSize(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
