package config

import (
	"fmt"
	"os"

	"eurocar/orcamentos/internal/app/logger"
	"eurocar/orcamentos/internal/app/settings"
)

type Config struct {
	HTTPAddr      string
	DatabaseURL   string
	InternalToken string
	SettingsFile  string
	LogoPath      string
	LogLevel      string
}

func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		DatabaseURL:   env("DATABASE_URL", ""),
		InternalToken: env("INTERNAL_TOKEN", ""),
		SettingsFile:  env("SETTINGS_FILE", ""),
		LogoPath:      env("LOGO_PATH", "assets/LOGO_Preta.png"),
		LogLevel:      env("LOG_LEVEL", "info"),
	}
	if cfg.SettingsFile == "" {
		path, err := settings.DefaultPath()
		if err != nil {
			return Config{}, fmt.Errorf("no user config dir, set SETTINGS_FILE: %w", err)
		}
		cfg.SettingsFile = path
	}
	if _, err := logger.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
