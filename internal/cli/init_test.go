package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"melodi/internal/config"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("MELODI_TEST_VALUE=from-file\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("MELODI_TEST_VALUE", "")
	os.Unsetenv("MELODI_TEST_VALUE")

	if err := LoadEnvFile(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	if got := os.Getenv("MELODI_TEST_VALUE"); got != "from-file" {
		t.Fatalf("MELODI_TEST_VALUE = %q", got)
	}
}

func TestSetupLoggerHonoursFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(&config.Config{LogLevel: "warn", LogFormat: "json"}, &buf)
	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, `"msg":"kept"`) {
		t.Fatalf("output = %s", out)
	}
}

func TestOpenAppOnMemoryBackend(t *testing.T) {
	cfg := &config.Config{DataBackend: "memory", StateKey: "melodiApp_v1", LogLevel: "error", LogFormat: "text"}
	logger := SetupLogger(cfg, &bytes.Buffer{})

	a, cleanup, err := OpenApp(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("OpenApp() error = %v", err)
	}
	defer cleanup()

	if len(a.Habits()) != 3 {
		t.Fatalf("default habits missing: %+v", a.Habits())
	}
	if a.Key() != "melodiApp_v1" {
		t.Fatalf("Key() = %q", a.Key())
	}
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("DATA_BACKEND", "nope")
	if _, err := LoadAndValidateConfig(); err == nil {
		t.Fatal("invalid backend should fail validation")
	}
	t.Setenv("DATA_BACKEND", "memory")
	if _, err := LoadAndValidateConfig(); err != nil {
		t.Fatalf("LoadAndValidateConfig() error = %v", err)
	}
}
