package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnLifetime time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JudgeQueueName string
	WorkerCount    int

	SandboxURL    string
	SandboxAPIKey string

	RunResultTTLSeconds int

	AIProviders []AIProviderConfig
	AIRPMBudget int
}

type AIProviderConfig struct {
	Name    string
	BaseURL string
	APIKey  string
	Model   string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:             getEnv("API_PORT", "8080"),
		JWTKey:              []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:              time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "5432"),
		DBUser:              getEnv("DB_USER", "user"),
		DBPassword:          getEnv("DB_PASSWORD", "password"),
		DBName:              getEnv("DB_NAME", "algoarena_db"),
		DBSslMode:           getEnv("DB_SSLMODE", "disable"),
		DBMaxOpenConns:      getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:      getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnLifetime:      time.Duration(getEnvAsInt("DB_CONN_LIFETIME_MINUTES", 5)) * time.Minute,
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             getEnvAsInt("REDIS_DB", 0),
		JudgeQueueName:      getEnv("JUDGE_QUEUE_NAME", "judge_jobs_queue"),
		WorkerCount:         getEnvAsInt("JUDGE_WORKER_COUNT", 1),
		SandboxURL:          getEnv("SANDBOX_URL", "http://localhost:2358"),
		SandboxAPIKey:       getEnv("SANDBOX_API_KEY", ""),
		RunResultTTLSeconds: getEnvAsInt("RUN_RESULT_TTL_SECONDS", 300),
		AIRPMBudget:         getEnvAsInt("AI_RPM_BUDGET", 30),
	}

	// Providers are tried in this order when the preferred one is unavailable.
	if key := getEnv("GROQ_API_KEY", ""); key != "" {
		AppConfig.AIProviders = append(AppConfig.AIProviders, AIProviderConfig{
			Name:    "groq",
			BaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			APIKey:  key,
			Model:   getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		})
	}
	if key := getEnv("GEMINI_API_KEY", ""); key != "" {
		AppConfig.AIProviders = append(AppConfig.AIProviders, AIProviderConfig{
			Name:    "gemini",
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
			APIKey:  key,
			Model:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		})
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
