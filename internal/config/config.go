// Package config reads process settings from the environment.
package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables.
const (
	EnvDB    = "KOSTUMI_DB"
	EnvAddr  = "KOSTUMI_ADDR"
	EnvAdmin = "KOSTUMI_ADMIN"
	EnvLog   = "KOSTUMI_LOG"
)

// Config holds the server settings. Command-line flags override it.
type Config struct {
	DBPath    string
	Addr      string
	AdminUser string
	LogPath   string
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Config {
	return Config{
		DBPath:    "kostumi.sqlite3",
		Addr:      ":8080",
		AdminUser: "Admin",
	}
}

// Load reads the optional dotenv files (".env" when none are given) into the
// environment and returns the defaults overlaid with any KOSTUMI_* variables.
// Variables already set in the environment win over the files.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	cfg := Defaults()
	override(&cfg.DBPath, EnvDB)
	override(&cfg.Addr, EnvAddr)
	override(&cfg.AdminUser, EnvAdmin)
	override(&cfg.LogPath, EnvLog)
	return cfg, nil
}

func override(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
