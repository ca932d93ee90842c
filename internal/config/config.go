package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	Retrieval RetrievalConfig
	Dialog    DialogConfig
	Ai        AIConfig
	Media     MediaConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type RetrievalConfig struct {
	// Backend is "flat" for the file-backed index or "pgvector" for the
	// database-backed one.
	Backend        string
	IndexDir       string
	CategoriesFile string
	ProductsDir    string
	TopK           int
}

type DialogConfig struct {
	BaseThreshold    float64
	ThresholdStep    float64
	ProductThreshold float64
	ClarifyTimeoutMS int
	SessionTTLMin    int
}

type AIConfig struct {
	EmbeddingProvider string // "ollama" or "jina"
	OllamaBaseURL     string
	OllamaModel       string
	JinaAPIKey        string
	LLMProvider       string // "ollama"
	LLMModel          string // e.g. "llama3", "qwen2.5"
}

type MediaConfig struct {
	BaseURL string
	Token   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "CatalogAssist"),
		},
		Retrieval: RetrievalConfig{
			Backend:        getEnv("INDEX_BACKEND", "flat"),
			IndexDir:       getEnv("INDEX_DIR", "./data/index"),
			CategoriesFile: getEnv("CATEGORIES_FILE", "./data/categories.json"),
			ProductsDir:    getEnv("PRODUCTS_DIR", "./data/products"),
			TopK:           getEnvAsInt("RETRIEVAL_TOP_K", 5),
		},
		Dialog: DialogConfig{
			BaseThreshold:    getEnvAsFloat("DIALOG_BASE_THRESHOLD", 0.75),
			ThresholdStep:    getEnvAsFloat("DIALOG_THRESHOLD_STEP", 0.25),
			ProductThreshold: getEnvAsFloat("DIALOG_PRODUCT_THRESHOLD", 0.72),
			ClarifyTimeoutMS: getEnvAsInt("CLARIFY_TIMEOUT_MS", 8000),
			SessionTTLMin:    getEnvAsInt("SESSION_TTL_MINUTES", 60),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			JinaAPIKey:        getEnv("JINA_API_KEY", ""),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
		},
		Media: MediaConfig{
			BaseURL: getEnv("MEDIA_BASE_URL", ""),
			Token:   getEnv("MEDIA_API_TOKEN", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
