package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(ENV_CONFIG_FILE_PATH, "")

	conf, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.Engine.ResultKey != "result" || conf.Server.Port != 4444 {
		t.Errorf("unexpected defaults: %+v", conf)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  log_level: debug
engine:
  result_key: total
  workers: 1
storage:
  charset: latin1
`)

	conf, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.Logging.LogLevel != "debug" || conf.Engine.ResultKey != "total" || conf.Engine.Workers != 1 {
		t.Errorf("file values not applied: %+v", conf)
	}
	if conf.Engine.FailureMarker != "Error" {
		t.Errorf("expected default failure marker to survive, got %q", conf.Engine.FailureMarker)
	}
	if conf.Storage.Charset != "latin1" {
		t.Errorf("expected latin1 charset, got %q", conf.Storage.Charset)
	}
}

func TestLoadFromEnvPath(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 5555\n")
	t.Setenv(ENV_CONFIG_FILE_PATH, path)

	conf, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.Server.Port != 5555 {
		t.Errorf("expected port 5555, got %d", conf.Server.Port)
	}
}

func TestLoadStrictRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "engine:\n  result_column: total\n")

	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(ENV_CONFIG_FILE_PATH, "")
	t.Setenv(ENV_LOG_LEVEL, "warn")
	t.Setenv(ENV_SEQ_URL, "http://seq:5341")
	t.Setenv(ENV_WORKERS, "3")

	conf, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.Logging.LogLevel != "warn" || conf.Logging.SeqURL != "http://seq:5341" || conf.Engine.Workers != 3 {
		t.Errorf("env overrides not applied: %+v", conf)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"negative workers", func(c *Config) { c.Engine.Workers = -1 }, "workers"},
		{"empty result key", func(c *Config) { c.Engine.ResultKey = "" }, "result_key"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "port"},
		{"bad level", func(c *Config) { c.Logging.LogLevel = "loud" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := Default()
			tt.mutate(&conf)
			err := conf.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("expected error mentioning %q, got %v", tt.errSub, err)
			}
		})
	}
}
