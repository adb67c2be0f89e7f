package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir == "" || cfg.NetworkName == "" {
		t.Fatal("defaults must be populated")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file not written: %v", err)
	}

	// A second load round-trips the file that was just created.
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.DataDir != cfg.DataDir || reloaded.NetworkName != cfg.NetworkName {
		t.Fatal("reloaded config differs from defaults")
	}
}

func TestLoadExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `DataDir = "/var/lib/ase"
GenesisFile = "./genesis.json"
NetworkName = "ase-test"
DeployerAddress = "0x0000000000000000000000000000000000000001"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/var/lib/ase" {
		t.Fatalf("DataDir mismatch: %q", cfg.DataDir)
	}
	if cfg.GenesisFile != "./genesis.json" {
		t.Fatalf("GenesisFile mismatch: %q", cfg.GenesisFile)
	}
	if cfg.NetworkName != "ase-test" {
		t.Fatalf("NetworkName mismatch: %q", cfg.NetworkName)
	}
}
