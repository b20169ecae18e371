package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// EnvConfig holds settings read from the environment.
type EnvConfig struct {
	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	Classifier    string `env:"EMORUN_CLASSIFIER"`
	Model         string `env:"EMORUN_OPENAI_MODEL"`
	LogLevel      string `env:"EMORUN_LOG_LEVEL"`
}

// LoadEnv reads the environment after loading optional dotenv files.
// Variables already set are never overridden by a dotenv file; missing
// files are skipped. With no paths, ./.env is tried.
func LoadEnv(dotenvPaths ...string) (EnvConfig, error) {
	if len(dotenvPaths) == 0 {
		dotenvPaths = []string{".env"}
	}
	for _, path := range dotenvPaths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return EnvConfig{}, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
