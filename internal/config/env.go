package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	EnvLogLevel  = "QDYNSIM_LOG_LEVEL"
	EnvLogPretty = "QDYNSIM_LOG_PRETTY"
)

// Environment holds settings that come from the process environment rather
// than from a simulation config.
type Environment struct {
	LogLevel  string
	LogPretty bool
}

// LoadEnvironment reads the environment after loading a .env file from the
// working directory, if one exists. Variables already set take precedence
// over the file.
func LoadEnvironment() Environment {
	_ = godotenv.Load()

	return Environment{
		LogLevel:  getEnv(EnvLogLevel, "info"),
		LogPretty: getEnvAsBool(EnvLogPretty, true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
