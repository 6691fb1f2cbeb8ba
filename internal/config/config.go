package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration. It is loaded once at startup and
// passed into constructors; there is no process-wide settings object.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	// Log repository backend: "postgres", "dynamodb" or "memory".
	StoreBackend   string
	DatabaseURL    string
	DynamoTable    string
	DynamoEndpoint string
	AWSRegion      string

	// Structured-generation backend. An empty API key selects degraded mode.
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAITimeout time.Duration

	// Image OCR backend. Empty means image files degrade to error markers.
	OCRBaseURL string

	// Optional archive of uploaded originals.
	ObjectStoreType string
	LocalStoreDir   string
	S3Bucket        string
	S3Prefix        string

	MaxFileSizeBytes   int64
	MaxFilesPerRequest int
	AllowedExtensions  []string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	_ = godotenv.Load(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	backend := normalizeStoreBackend(getEnv("STORE_BACKEND", ""), dbURL)

	if env == "production" && backend == "memory" {
		log.Printf("no durable store configured in production; analysis logs will not survive restarts")
	}

	return Config{
		Port:               getEnv("PORT", "8080"),
		Env:                env,
		CORSAllowOrigin:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		StoreBackend:       backend,
		DatabaseURL:        dbURL,
		DynamoTable:        getEnv("DYNAMODB_TABLE_NAME", "cv_analysis_logs"),
		DynamoEndpoint:     getEnv("DYNAMODB_ENDPOINT_URL", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAITimeout:      getEnvDuration("OPENAI_TIMEOUT", 60*time.Second),
		OCRBaseURL:         getEnv("OCR_BASE_URL", ""),
		ObjectStoreType:    normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:      getEnv("LOCAL_STORE_DIR", "./data"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Prefix:           getEnv("S3_PREFIX", ""),
		MaxFileSizeBytes:   getEnvInt64("MAX_FILE_SIZE_BYTES", 10<<20),
		MaxFilesPerRequest: getEnvInt("MAX_FILES_PER_REQUEST", 10),
		AllowedExtensions:  splitAndTrim(getEnv("ALLOWED_EXTENSIONS", ".pdf,.docx,.jpg,.jpeg,.png")),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid int %q; using default %d", key, raw, def)
		return def
	}
	return val
}

func getEnvInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid int %q; using default %d", key, raw, def)
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid duration %q; using default %s", key, raw, def)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	default:
		return "dev"
	}
}

func normalizeStoreBackend(raw, dbURL string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg":
		return "postgres"
	case "dynamodb", "dynamo":
		return "dynamodb"
	case "memory":
		return "memory"
	case "":
		if strings.TrimSpace(dbURL) != "" {
			return "postgres"
		}
		return "memory"
	default:
		return "memory"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "none":
		return "none"
	default:
		return "local"
	}
}
