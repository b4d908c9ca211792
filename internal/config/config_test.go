package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsOfflineDemo(t *testing.T) {
	cfg := Default()
	if cfg.API.BaseURL != "" {
		t.Fatalf("default base url = %q, want empty", cfg.API.BaseURL)
	}
	if !cfg.LocalLoginAllowed() {
		t.Fatalf("default must allow local login")
	}
	if cfg.LocalLogin.Username != "demo" || cfg.LocalLogin.Password != "demo1234" || cfg.LocalLogin.Role != "cleaner" {
		t.Fatalf("default demo account = %+v", cfg.LocalLogin)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default invalid: %v", err)
	}
}

func TestLocalLoginAllowed(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = "https://api.example.com"
	cfg.LocalLogin.Enabled = false
	if cfg.LocalLoginAllowed() {
		t.Fatalf("backend configured and disabled, still allowed")
	}
	cfg.LocalLogin.Enabled = true
	if !cfg.LocalLoginAllowed() {
		t.Fatalf("explicitly enabled, not allowed")
	}
	cfg.LocalLogin.Enabled = false
	cfg.API.BaseURL = "   "
	if !cfg.LocalLoginAllowed() {
		t.Fatalf("blank base url must force local login")
	}
}

func TestFromYAMLAppliesDefaults(t *testing.T) {
	cfg, err := FromYAML([]byte("api:\n  base_url: https://api.example.com\n"))
	if err != nil {
		t.Fatalf("from yaml: %v", err)
	}
	if cfg.API.BaseURL != "https://api.example.com" {
		t.Fatalf("base url = %q", cfg.API.BaseURL)
	}
	if cfg.Server.Addr != ":7040" || cfg.Log.Level != "info" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestFromYAMLRejectsBadLevel(t *testing.T) {
	if _, err := FromYAML([]byte("log:\n  level: loud\n")); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected error for missing config")
	}
	cfg, err := LoadOptional(dir)
	if err != nil {
		t.Fatalf("load optional: %v", err)
	}
	if cfg.LocalLogin.Username != "demo" {
		t.Fatalf("load optional did not default")
	}
}

func TestGeneratedTemplateParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mzstay.yml")
	if err := os.WriteFile(path, []byte(GenerateDefault()), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load generated: %v", err)
	}
	if !cfg.LocalLogin.Enabled || cfg.LocalLogin.Username != "demo" {
		t.Fatalf("generated config = %+v", cfg.LocalLogin)
	}
}
