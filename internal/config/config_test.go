package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_DefaultsWithNoFile(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	defer os.Chdir(wd)
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.Log.Level)
	}
	if cfg.Scan.Concurrency != 0 {
		t.Fatalf("expected default concurrency 0 (auto), got %d", cfg.Scan.Concurrency)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := "log:\n  level: debug\nscan:\n  concurrency: 16\n  rate: 200\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected log level debug, got %q", cfg.Log.Level)
	}
	if cfg.Scan.Concurrency != 16 {
		t.Fatalf("expected concurrency 16, got %d", cfg.Scan.Concurrency)
	}
	if cfg.Scan.Rate != 200 {
		t.Fatalf("expected rate 200, got %d", cfg.Scan.Rate)
	}
}

func TestConfig_ValidateRejectsNegativeConcurrency(t *testing.T) {
	cfg := &Config{Scan: ScanConfig{Concurrency: -1}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error for negative concurrency")
	}
}

func TestConfig_ValidateRejectsFileOutputWithoutPath(t *testing.T) {
	cfg := &Config{Log: LogConfig{Output: "file"}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error when log.output is file with no file_path")
	}
}

func TestLoadDotEnv_MissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	if err := LoadDotEnv(filepath.Join(dir, "nope.env")); err != nil {
		t.Fatalf("expected no error for a missing .env file, got %v", err)
	}
}
