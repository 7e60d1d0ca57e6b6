package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	ServerPort string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBMaxConns int
	JWTSecret  string
}

func Load() *Config {
	// Optional .env for local development; deployments set the environment
	// directly.
	_ = godotenv.Load()

	return &Config{
		Env:        getEnv("APP_ENV", "development"),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "chirp"),
		DBPassword: getEnv("DB_PASSWORD", "chirp_dev_password"),
		DBName:     getEnv("DB_NAME", "chirp"),
		DBMaxConns: getEnvInt("DB_MAX_CONNS", 10),
		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),
	}
}

func getEnvInt(key string, fallback int) int {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}
