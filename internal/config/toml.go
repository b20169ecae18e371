// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game       GameConfig       `toml:"game"`
	Classifier ClassifierConfig `toml:"classifier"`
	Log        LogConfig        `toml:"log"`
}

// GameConfig maps session rules.
type GameConfig struct {
	MinChars       *int     `toml:"min-chars"`
	PenaltySeconds *float64 `toml:"penalty-seconds"`
	Targets        *string  `toml:"targets"`
	TickMs         *int     `toml:"tick-ms"`
}

// ClassifierConfig maps classifier backend settings. The API key is only
// read from the environment.
type ClassifierConfig struct {
	Backend *string `toml:"backend"`
	Model   *string `toml:"model"`
	BaseURL *string `toml:"base-url"`
}

// LogConfig maps log output settings.
type LogConfig struct {
	Level *string `toml:"level"`
	Path  *string `toml:"path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
