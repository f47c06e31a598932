package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ApplyEnv overlays deployment settings from the environment onto the
// configuration. A .env file in the working directory is loaded first
// when present; a missing file is not an error.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	c.Gateway.ListenAddr = getEnv("LIVEGUARD_LISTEN_ADDR", c.Gateway.ListenAddr)
	c.Gateway.AllowedOrigin = getEnv("LIVEGUARD_ALLOWED_ORIGIN", c.Gateway.AllowedOrigin)
	c.Session.TimeLimitSeconds = getEnvInt("LIVEGUARD_TIME_LIMIT_SECONDS", c.Session.TimeLimitSeconds)
	c.Logging.Level = getEnv("LIVEGUARD_LOG_LEVEL", c.Logging.Level)
	c.Logging.File = getEnv("LIVEGUARD_LOG_FILE", c.Logging.File)
}

func getEnv(key string, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if intVal, err := strconv.Atoi(v); err == nil {
			return intVal
		}
	}
	return defaultVal
}
