package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestLoggerCarriesServiceAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "payments-service", "warn")
	logger.Info("dropped")
	logger.Warn("kept", "module", "ledger")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected exactly one json line, got %q: %v", buf.String(), err)
	}
	if entry["service"] != "payments-service" || entry["msg"] != "kept" || entry["module"] != "ledger" {
		t.Fatalf("unexpected entry %#v", entry)
	}
	if ParseLevel("DEBUG") != slog.LevelDebug || ParseLevel("") != slog.LevelInfo {
		t.Fatalf("level parsing mismatch")
	}
}
