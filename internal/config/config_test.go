package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Port)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("expected host 127.0.0.1, got %s", cfg.Host)
	}
	if !cfg.Watch {
		t.Error("expected watch to be true")
	}
	if cfg.MaxTextBytes != DefaultMaxTextBytes {
		t.Errorf("expected max text bytes %d, got %d", DefaultMaxTextBytes, cfg.MaxTextBytes)
	}
}

func TestIsDeniedDir(t *testing.T) {
	cfg := DefaultConfig()

	for _, name := range []string{".git", "node_modules", "__pycache__", ".venv", "dist"} {
		if !cfg.IsDeniedDir(name) {
			t.Errorf("expected %s to be denied", name)
		}
	}
	if cfg.IsDeniedDir("src") {
		t.Error("expected src NOT to be denied")
	}
	if cfg.IsDeniedDir("gitter") {
		t.Error("deny-list must match bare names exactly")
	}
}

func TestResolveRoot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Root = t.TempDir()

	root, err := cfg.ResolveRoot()
	if err != nil {
		t.Fatalf("ResolveRoot failed: %v", err)
	}
	if !filepath.IsAbs(root) {
		t.Errorf("expected absolute root, got %s", root)
	}
}

func TestResolveRootMissing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Root = filepath.Join(t.TempDir(), "does-not-exist")

	if _, err := cfg.ResolveRoot(); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestResolveRootNotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Root = file
	if _, err := cfg.ResolveRoot(); err == nil {
		t.Error("expected error for non-directory root")
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.configPath = tmpFile
	cfg.Port = 9999
	cfg.Exclude = []string{".git", "out"}

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	cfg2 := DefaultConfig()
	if err := cfg2.loadFromFile(tmpFile); err != nil {
		t.Fatalf("loadFromFile failed: %v", err)
	}

	if cfg2.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg2.Port)
	}
	if len(cfg2.Exclude) != 2 || cfg2.Exclude[1] != "out" {
		t.Errorf("exclude loading failed: %v", cfg2.Exclude)
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error when an explicit config file is missing")
	}
}
