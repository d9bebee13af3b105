package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEnvOverlayFallsBackOnGarbage(t *testing.T) {
	t.Setenv("CFG_TEST_INT", "not-a-number")
	t.Setenv("CFG_TEST_BOOL", "maybe")
	t.Setenv("CFG_TEST_FLOAT", "0.015")
	t.Setenv("CFG_TEST_CSV", " a, ,b ,")
	t.Setenv("CFG_TEST_SECONDS", "30")

	if got := EnvInt("CFG_TEST_INT", 7); got != 7 {
		t.Fatalf("expected fallback 7, got %d", got)
	}
	if got := EnvBool("CFG_TEST_BOOL", true); !got {
		t.Fatalf("expected fallback true")
	}
	if got := EnvFloat("CFG_TEST_FLOAT", 0); got != 0.015 {
		t.Fatalf("expected 0.015, got %v", got)
	}
	csv := EnvCSV("CFG_TEST_CSV", nil)
	if len(csv) != 2 || csv[0] != "a" || csv[1] != "b" {
		t.Fatalf("unexpected csv %#v", csv)
	}
	if got := EnvSeconds("CFG_TEST_SECONDS", time.Second); got != 30*time.Second {
		t.Fatalf("expected 30s, got %v", got)
	}
	if got := EnvOrDefault("CFG_TEST_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestLoadYAML(t *testing.T) {
	var out struct {
		Service struct {
			ID string `yaml:"id"`
		} `yaml:"service"`
	}
	found, err := LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"), &out)
	if err != nil || found {
		t.Fatalf("missing file should be ignored: found=%v err=%v", found, err)
	}

	path := filepath.Join(t.TempDir(), "default.yaml")
	if err := os.WriteFile(path, []byte("service:\n  id: payments-service\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	found, err = LoadYAML(path, &out)
	if err != nil || !found {
		t.Fatalf("LoadYAML: found=%v err=%v", found, err)
	}
	if out.Service.ID != "payments-service" {
		t.Fatalf("unexpected id %q", out.Service.ID)
	}

	if err := os.WriteFile(path, []byte("service: [\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadYAML(path, &out); err == nil {
		t.Fatalf("expected parse error")
	}
}
