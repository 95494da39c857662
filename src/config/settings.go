package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type Settings struct {
	Prompt  PromptConfig  `toml:"prompt"`
	Palette PaletteConfig `toml:"palette"`
	Daemon  DaemonConfig  `toml:"daemon"`
}

type PromptConfig struct {
	UILocale     string `toml:"ui_locale"`
	PromptLocale string `toml:"prompt_locale"`
	SubjectTag   string `toml:"subject_tag"`
	Prefix       string `toml:"prefix"`
}

type PaletteConfig struct {
	Enabled   bool   `toml:"enabled"`
	DefaultID string `toml:"default_id"`
}

type DaemonConfig struct {
	DebounceMS   int    `toml:"debounce_ms"`
	DatabasePath string `toml:"database_path"`
}

// Debounce returns the configured re-render debounce interval
func (d DaemonConfig) Debounce() time.Duration {
	if d.DebounceMS <= 0 {
		return 150 * time.Millisecond
	}
	return time.Duration(d.DebounceMS) * time.Millisecond
}

func LoadSettings() (*Settings, error) {
	settings := &Settings{
		Prompt: PromptConfig{
			UILocale:     "en",
			PromptLocale: "en",
			SubjectTag:   "1girl",
		},
		Palette: PaletteConfig{
			Enabled: true,
		},
		Daemon: DaemonConfig{
			DebounceMS: 150,
		},
	}

	configDir, err := GetConfigDir()
	if err != nil {
		return settings, nil
	}

	configPath := filepath.Join(configDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, err
	}

	if _, err := toml.Decode(string(data), settings); err != nil {
		return nil, err
	}

	return settings, nil
}
