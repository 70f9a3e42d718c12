package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/draftmd/internal/logfields"
)

// envFiles are loaded in order. godotenv never overrides a variable that is
// already set, so earlier files win over later ones and the process
// environment wins over both.
var envFiles = []string{".env.local", ".env"}

// loadEnvFiles loads every env file that exists and returns the ones loaded.
func loadEnvFiles() []string {
	var loaded []string
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load env file", logfields.Path(path), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.Path(path))
		loaded = append(loaded, path)
	}
	return loaded
}
