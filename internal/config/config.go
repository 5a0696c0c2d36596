package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// AppName names the XDG directories.
const AppName = "brainguard"

const (
	configPathEnv     = "BRAINGUARD_CONFIG"
	databasePathEnv   = "BRAINGUARD_DB"
	logLevelEnv       = "BRAINGUARD_LOG_LEVEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Storage       StorageConfig      `yaml:"storage"`
	Notifications NotificationConfig `yaml:"notifications"`
	Dispatch      DispatchConfig     `yaml:"dispatch"`
	Watch         WatchConfig        `yaml:"watch"`
	Server        ServerConfig       `yaml:"server"`
	Patterns      PatternsConfig     `yaml:"patterns"`
	Extract       ExtractConfig      `yaml:"extract"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// StorageConfig locates the session database.
type StorageConfig struct {
	Path string `yaml:"path"`
	// SaveInterval is the period of the analytics saver.
	SaveInterval time.Duration `yaml:"saveInterval"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	APIBase  string `yaml:"apiBase"`
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	// Dashboard sends the weekly dashboard after each alert; unset means on.
	Dashboard *bool `yaml:"dashboard"`
}

// SendDashboard reports whether alerts are followed by the dashboard.
func (t TelegramConfig) SendDashboard() bool {
	return t.Dashboard == nil || *t.Dashboard
}

// Enabled reports whether both credentials are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// DispatchConfig sizes the outbound alert queue.
type DispatchConfig struct {
	QueueSize   int           `yaml:"queueSize"`
	Workers     int           `yaml:"workers"`
	SendTimeout time.Duration `yaml:"sendTimeout"`
}

// WatchConfig tunes re-analysis in watch mode.
type WatchConfig struct {
	ContentInterval time.Duration `yaml:"contentInterval"`
	URLInterval     time.Duration `yaml:"urlInterval"`
	Debounce        time.Duration `yaml:"debounce"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	AnalyzeTimeout time.Duration `yaml:"analyzeTimeout"`
}

// PatternsConfig points at an optional pattern table file.
type PatternsConfig struct {
	Path string `yaml:"path"`
}

// ExtractConfig tunes page fetching.
type ExtractConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
}

// DataDir returns the XDG data directory, e.g. ~/.local/share/brainguard.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// DefaultConfigPath returns the XDG config file location.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	path := os.Getenv(configPathEnv)
	if path == "" {
		path = DefaultConfigPath()
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit file; an empty path skips the file.
func LoadFile(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Storage.Path = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Storage.Path != "" {
		base.Storage.Path = override.Storage.Path
	}
	if override.Storage.SaveInterval > 0 {
		base.Storage.SaveInterval = override.Storage.SaveInterval
	}

	tg := override.Notifications.Telegram
	if tg.APIBase != "" {
		base.Notifications.Telegram.APIBase = tg.APIBase
	}
	if tg.BotToken != "" {
		base.Notifications.Telegram.BotToken = tg.BotToken
	}
	if tg.ChatID != "" {
		base.Notifications.Telegram.ChatID = tg.ChatID
	}
	if tg.Dashboard != nil {
		enabled := *tg.Dashboard
		base.Notifications.Telegram.Dashboard = &enabled
	}

	if override.Dispatch.QueueSize > 0 {
		base.Dispatch.QueueSize = override.Dispatch.QueueSize
	}
	if override.Dispatch.Workers > 0 {
		base.Dispatch.Workers = override.Dispatch.Workers
	}
	if override.Dispatch.SendTimeout > 0 {
		base.Dispatch.SendTimeout = override.Dispatch.SendTimeout
	}

	if override.Watch.ContentInterval > 0 {
		base.Watch.ContentInterval = override.Watch.ContentInterval
	}
	if override.Watch.URLInterval > 0 {
		base.Watch.URLInterval = override.Watch.URLInterval
	}
	if override.Watch.Debounce > 0 {
		base.Watch.Debounce = override.Watch.Debounce
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.AnalyzeTimeout > 0 {
		base.Server.AnalyzeTimeout = override.Server.AnalyzeTimeout
	}

	if override.Patterns.Path != "" {
		base.Patterns.Path = override.Patterns.Path
	}

	if override.Extract.Timeout > 0 {
		base.Extract.Timeout = override.Extract.Timeout
	}
	if override.Extract.Concurrency > 0 {
		base.Extract.Concurrency = override.Extract.Concurrency
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Storage: StorageConfig{
			Path:         filepath.Join(DataDir(), "sessions.db"),
			SaveInterval: 5 * time.Minute,
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{APIBase: "https://api.telegram.org"},
		},
		Dispatch: DispatchConfig{QueueSize: 64, Workers: 1, SendTimeout: 10 * time.Second},
		Watch: WatchConfig{
			ContentInterval: 5 * time.Second,
			URLInterval:     time.Second,
			Debounce:        3 * time.Second,
		},
		Server:  ServerConfig{Addr: "127.0.0.1:8787", AnalyzeTimeout: 30 * time.Second},
		Extract: ExtractConfig{Timeout: 20 * time.Second, Concurrency: 4},
	}
}
