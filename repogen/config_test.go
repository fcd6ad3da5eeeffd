package repogen

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repo.toml")
	body := `[release]
origin = "Acme"
label = "Acme Repo"
suite = "stable"
codename = "stable"
version = "1"
description = "internal packages"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Release.Origin != "Acme" {
		t.Errorf("Origin = %q", cfg.Release.Origin)
	}
	meta := cfg.ToReleaseMetadata()
	if meta.Codename != "stable" {
		t.Errorf("Codename = %q", meta.Codename)
	}
}
