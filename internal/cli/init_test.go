package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupLogger("warn", &buf)
	if err != nil {
		t.Fatalf("SetupLogger() error = %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestSetupLogger_UnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupLogger("loud", &buf)
	if err == nil {
		t.Fatal("expected error for unknown level")
	}
	logger.Info("still logs")
	if !strings.Contains(buf.String(), "still logs") {
		t.Error("logger should fall back to info")
	}
}

func TestLoadEnvFile(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing file should be ignored, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("CASHFLOW_TEST_ENV=loaded\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CASHFLOW_TEST_ENV", "")
	os.Unsetenv("CASHFLOW_TEST_ENV")
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	if got := os.Getenv("CASHFLOW_TEST_ENV"); got != "loaded" {
		t.Errorf("CASHFLOW_TEST_ENV = %q", got)
	}
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("AMQP_URL", "")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	cfg, err := LoadAndValidateConfig()
	if err != nil {
		t.Fatalf("LoadAndValidateConfig() error = %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}

	t.Setenv("DATA_BACKEND", "postgres")
	if _, err := LoadAndValidateConfig(); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestGracefulShutdown(t *testing.T) {
	logger, _ := SetupLogger("error", &bytes.Buffer{})

	var ran []int
	boom := errors.New("boom")
	err := GracefulShutdown(logger, time.Second,
		func(context.Context) error { ran = append(ran, 0); return boom },
		nil,
		func(ctx context.Context) error {
			ran = append(ran, 2)
			if _, ok := ctx.Deadline(); !ok {
				t.Error("step context has no deadline")
			}
			return nil
		},
	)

	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped boom", err)
	}
	if len(ran) != 2 {
		t.Errorf("ran steps %v, want [0 2]", ran)
	}
}
