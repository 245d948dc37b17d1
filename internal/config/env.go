package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads a .env file (if present) into the process
// environment before LoadConfig runs, so NETRECON_-prefixed overrides
// can live in a local, ungit-tracked file instead of the shell.
// A missing file is not an error; a malformed one is.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load .env file %s: %w", path, err)
	}
	return nil
}
