package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	ModePushToTalk = "PushToTalk"
	ModeToggle     = "Toggle"
)

const appName = "whisper-ptt"

type Config struct {
	Hotkey       string        `json:"hotkey"`
	HotkeyDarwin string        `json:"hotkey_darwin"`
	Mode         string        `json:"mode"` // "PushToTalk" or "Toggle"
	LogLevel     string        `json:"log_level"`
	Audio        AudioConfig   `json:"audio"`
	Whisper      WhisperConfig `json:"whisper"`
	Inject       InjectConfig  `json:"inject"`
	AppendSpace  bool          `json:"append_space"`
	Tray         bool          `json:"tray"`
	MetricsAddr  string        `json:"metrics_addr"` // e.g. "127.0.0.1:9464", empty disables
}

type AudioConfig struct {
	DeviceID string `json:"device_id"`
}

type WhisperConfig struct {
	Model    string `json:"model"`    // "base.en", "small", etc.
	Language string `json:"language"` // "auto", "en", etc.
	Threads  int    `json:"threads"`  // 0 lets the engine decide
}

type InjectConfig struct {
	PreferPaste bool `json:"prefer_paste"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Hotkey:       "ScrollLock",
		HotkeyDarwin: "Alt+Space", // Option+Space
		Mode:         ModePushToTalk,
		LogLevel:     "info",
		Whisper: WhisperConfig{
			Model:    "base.en",
			Language: "en",
			Threads:  0,
		},
		Inject: InjectConfig{
			PreferPaste: true,
		},
		AppendSpace: false,
		Tray:        true,
	}
}

// Load reads the config from the default location or returns defaults
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile reads the config at path over the defaults. A missing file is
// not an error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to the default location
func (c *Config) Save() error {
	return c.SaveFile(Path())
}

// SaveFile writes the config to path, creating parent directories
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks values the rest of the program relies on
func (c *Config) Validate() error {
	if c.PlatformHotkey() == "" {
		return errors.New("hotkey must not be empty")
	}

	switch c.Mode {
	case ModePushToTalk, ModeToggle:
	default:
		return fmt.Errorf("unknown mode %q (want %s or %s)", c.Mode, ModePushToTalk, ModeToggle)
	}

	if err := c.Whisper.Validate(); err != nil {
		return fmt.Errorf("whisper config: %w", err)
	}

	return nil
}

func (w WhisperConfig) Validate() error {
	if w.Model == "" {
		return errors.New("model must not be empty")
	}
	if w.Threads < 0 {
		return fmt.Errorf("threads must be >= 0, got %d", w.Threads)
	}
	return nil
}

// PlatformHotkey returns the appropriate hotkey for the current platform
func (c *Config) PlatformHotkey() string {
	if runtime.GOOS == "darwin" && c.HotkeyDarwin != "" {
		return c.HotkeyDarwin
	}
	return c.Hotkey
}

// Path returns the platform-specific config file path
func Path() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, appName, "config.json")
}

// ModelsPath returns the platform-specific models directory path
func ModelsPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.local/share"
		}
	}

	return filepath.Join(base, appName, "models")
}
