package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded from the working directory before the
// environment is read.
const DefaultEnvFile = ".env"

// LoadEnv loads variables from envFile, if it exists, without overriding
// variables already set in the process environment, then copies the
// OpenAI API key into cfg.
func LoadEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	cfg.OpenAIAPIKey = os.Getenv(EnvOpenAIAPIKey)
	return nil
}
