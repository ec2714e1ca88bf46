package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// SetupEnvFile loads variables from .env when present. Missing file is fine,
// production deployments inject the environment directly.
func SetupEnvFile() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}
}

// Config reads an environment variable with a fallback default.
func Config(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
