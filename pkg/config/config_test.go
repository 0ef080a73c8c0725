package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type sampleConfig struct {
	Model   string        `envconfig:"MODEL" default:"fallback"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"5s"`
	Limit   int           `envconfig:"LIMIT" required:"true"`
}

func TestNewExportsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("SAMPLECFG_LIMIT=7\nSAMPLECFG_TIMEOUT=2s\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("SAMPLECFG_LIMIT", "")
	t.Setenv("SAMPLECFG_TIMEOUT", "")

	SetEnvFile(path)
	t.Cleanup(func() { SetEnvFile("") })

	conf, err := New[sampleConfig]("SAMPLECFG")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if conf.Limit != 7 || conf.Timeout != 2*time.Second {
		t.Fatalf("unexpected config: %+v", conf)
	}
	if conf.Model != "fallback" {
		t.Fatalf("default not applied: %q", conf.Model)
	}
}

func TestNewUnreadableEnvFile(t *testing.T) {
	SetEnvFile(filepath.Join(t.TempDir(), "absent.env"))
	t.Cleanup(func() { SetEnvFile("") })

	if _, err := New[sampleConfig]("ABSENTCFG"); err == nil {
		t.Fatal("expected error for unreadable env file")
	}
}

func TestNewMissingRequired(t *testing.T) {
	SetEnvFile("")
	if _, err := New[sampleConfig]("NEVERSETCFG"); err == nil {
		t.Fatal("expected error for missing required variable")
	}
}
