package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFileDefaults(t *testing.T) {
	t.Setenv(databasePathEnv, "")
	t.Setenv(logLevelEnv, "")
	t.Setenv(telegramTokenEnv, "")
	t.Setenv(telegramChatIDEnv, "")

	cfg := LoadFile("")
	if cfg.Watch.Debounce != 3*time.Second || cfg.Watch.URLInterval != time.Second {
		t.Fatalf("unexpected watch defaults: %+v", cfg.Watch)
	}
	if cfg.Storage.SaveInterval != 5*time.Minute {
		t.Fatalf("unexpected save interval %v", cfg.Storage.SaveInterval)
	}
	if !strings.HasSuffix(cfg.Storage.Path, filepath.Join(AppName, "sessions.db")) {
		t.Fatalf("unexpected storage path %s", cfg.Storage.Path)
	}
	if cfg.Notifications.Telegram.Enabled() {
		t.Fatalf("telegram should be disabled without credentials")
	}
	if !cfg.Notifications.Telegram.SendDashboard() {
		t.Fatalf("dashboard should default to on")
	}
}

func TestLoadFileMergesYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
logging:
  level: debug
watch:
  debounce: 10s
notifications:
  telegram:
    botToken: from-file
    chatId: "42"
patterns:
  path: /etc/brainguard/patterns.yaml
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(databasePathEnv, "/tmp/custom.db")
	t.Setenv(logLevelEnv, "")
	t.Setenv(telegramTokenEnv, "from-env")
	t.Setenv(telegramChatIDEnv, "")

	cfg := LoadFile(path)
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected level %s", cfg.Logging.Level)
	}
	if cfg.Watch.Debounce != 10*time.Second || cfg.Watch.ContentInterval != 5*time.Second {
		t.Fatalf("unexpected watch config: %+v", cfg.Watch)
	}
	if cfg.Storage.Path != "/tmp/custom.db" {
		t.Fatalf("env should override storage path, got %s", cfg.Storage.Path)
	}
	tg := cfg.Notifications.Telegram
	if tg.BotToken != "from-env" || tg.ChatID != "42" || !tg.Enabled() {
		t.Fatalf("unexpected telegram config: %+v", tg)
	}
	if cfg.Patterns.Path != "/etc/brainguard/patterns.yaml" {
		t.Fatalf("unexpected patterns path %s", cfg.Patterns.Path)
	}
}

func TestLoadFileFallsBackOnBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("watch: [unclosed"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(logLevelEnv, "")

	cfg := LoadFile(path)
	if cfg.Logging.Level != "info" || cfg.Watch.Debounce != 3*time.Second {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFileDisablesDashboard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
notifications:
  telegram:
    dashboard: false
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(logLevelEnv, "")

	cfg := LoadFile(path)
	if cfg.Notifications.Telegram.SendDashboard() {
		t.Fatalf("dashboard: false should disable the follow-up dashboard")
	}
	if cfg.Notifications.Telegram.APIBase != "https://api.telegram.org" {
		t.Fatalf("unrelated telegram defaults lost: %+v", cfg.Notifications.Telegram)
	}
}
