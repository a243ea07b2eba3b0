package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("QUADRO_API_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("TASKS_FILE", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("expected default api url, got %q", cfg.APIURL)
	}
	if cfg.Server.Addr != DefaultAddr || cfg.Server.DataFile != DefaultDataFile {
		t.Errorf("unexpected server defaults %+v", cfg.Server)
	}
}

func TestLoad_File(t *testing.T) {
	t.Setenv("QUADRO_API_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("TASKS_FILE", "")
	path := writeConfig(t, `
api_url: https://tasks.example.com
log_level: debug
request_timeout: 5s
server:
  addr: ":9090"
  data_file: /tmp/tasks.json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "https://tasks.example.com" {
		t.Errorf("got api url %q", cfg.APIURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("got log level %q", cfg.LogLevel)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("got timeout %v", cfg.RequestTimeout)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.DataFile != "/tmp/tasks.json" {
		t.Errorf("unexpected server config %+v", cfg.Server)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "api_url: http://from-file:8080\n")
	t.Setenv("QUADRO_API_URL", "http://from-env:8080")
	t.Setenv("PORT", "3000")
	t.Setenv("TASKS_FILE", "env.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://from-env:8080" {
		t.Errorf("expected env to win, got %q", cfg.APIURL)
	}
	if cfg.Server.Addr != ":3000" {
		t.Errorf("expected :3000, got %q", cfg.Server.Addr)
	}
	if cfg.Server.DataFile != "env.json" {
		t.Errorf("expected env.json, got %q", cfg.Server.DataFile)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "api_url: [unclosed\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "parsing") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad scheme", mutate: func(c *Config) { c.APIURL = "ftp://x" }, wantErr: "api_url"},
		{name: "no host", mutate: func(c *Config) { c.APIURL = "http://" }, wantErr: "api_url"},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "log_level"},
		{name: "negative timeout", mutate: func(c *Config) { c.RequestTimeout = -time.Second }, wantErr: "request_timeout"},
		{name: "empty addr", mutate: func(c *Config) { c.Server.Addr = " " }, wantErr: "server.addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
