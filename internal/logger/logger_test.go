package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-navmesh/internal/config"
)

func TestNewWithWriter_Levels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"", false, true},
		{"error", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := NewWithWriter(config.LogConfig{Level: tt.level}, &buf)
			if err != nil {
				t.Fatalf("NewWithWriter() unexpected error: %v", err)
			}
			log.Debug("debug line")
			log.Info("info line")
			_ = log.Sync()

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("level %q logged debug = %v; want %v", tt.level, got, tt.wantDebug)
			}
			if got := strings.Contains(out, "info line"); got != tt.wantInfo {
				t.Errorf("level %q logged info = %v; want %v", tt.level, got, tt.wantInfo)
			}
		})
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(config.LogConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("NewWithWriter() unexpected error: %v", err)
	}
	log.Info("navmesh built", zap.Int("cells", 42))
	_ = log.Sync()

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line %q is not JSON: %v", buf.String(), err)
	}
	if line["msg"] != "navmesh built" || line["cells"] != 42.0 {
		t.Errorf("log line = %v; want msg and cells fields", line)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "loud"}); err == nil {
		t.Error("New() with level loud succeeded; want an error")
	}
	if _, err := New(config.LogConfig{Format: "xml"}); err == nil {
		t.Error("New() with format xml succeeded; want an error")
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navmesh.log")
	log, err := New(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	log.Info("to file")
	_ = log.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if !strings.Contains(string(b), "to file") {
		t.Errorf("log file = %q; want it to contain the message", b)
	}
}
