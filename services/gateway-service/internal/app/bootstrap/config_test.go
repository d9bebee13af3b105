package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.PaymentsURL != "http://localhost:8081" || cfg.UpstreamTimeout != 10*time.Second {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.ClientAPIKey != cfg.UpstreamAPIKey {
		t.Fatalf("client key should default to the service key")
	}
}

func TestLoadConfigFileAndEnvOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	body := "upstreams:\n  jobs: http://jobs:8082\n  timeout_seconds: 3\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PAYMENTS_URL", "http://payments:8081")
	t.Setenv("GATEWAY_API_KEY", "public-key")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.JobsURL != "http://jobs:8082" || cfg.UpstreamTimeout != 3*time.Second {
		t.Fatalf("file values not applied %+v", cfg)
	}
	if cfg.PaymentsURL != "http://payments:8081" || cfg.ClientAPIKey != "public-key" {
		t.Fatalf("env overlay not applied %+v", cfg)
	}
}
