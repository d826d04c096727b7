package config

import (
	"os"
	"time"
)

type Config struct {
	Port               string
	APIKey             string
	ModelName          string
	DBConnectionString string
	DefaultDatabase    string
	ContextDir         string
	UploadDir          string
	DBPath             string
	LogFile            string
	SessionTTL         time.Duration
	Version            string
}

func GetConfig() Config {
	return Config{
		Port:               getEnv("PORT", "8000"),
		APIKey:             getEnv("DASHSCOPE_API_KEY", ""),
		ModelName:          getEnv("AI_MODEL", "qwen3-max"),
		DBConnectionString: getEnv("DB_CONNECTION_STRING", "server=localhost;port=1433;database=pa;encrypt=false"),
		DefaultDatabase:    getEnv("DEFAULT_DATABASE", "pa"),
		ContextDir:         getEnv("CONTEXT_DIR", "./context"),
		UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
		DBPath:             getEnv("DB_PATH", "./data/badger"),
		LogFile:            getEnv("LOG_FILE", "api.log"),
		SessionTTL:         getDuration("SESSION_TTL", 2*time.Hour),
		Version:            "1.0.0",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
