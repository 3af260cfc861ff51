package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App   AppConfig
	Paths PathsConfig
	Tools ToolsConfig
	Keys  APIKeys
	Ai    AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	WsLogFilePath      string
	CorsAllowedOrigins string
	UploadMaxMB        int
	PreviewMaxBytes    int
	SessionTTL         time.Duration
}

// PathsConfig holds the defaults every new UI session starts from.
type PathsConfig struct {
	PdfInputDir    string
	TxtInputDir    string
	ParsedSubdir   string
	OutputDir      string
	OutputFilename string
}

type ToolsConfig struct {
	LlamaParseCommand    string
	FilesToPromptCommand string
	LlamaParseAuthFile   string
	Timeout              time.Duration
}

type APIKeys struct {
	GoogleGemini string
}

type AIConfig struct {
	GeminiBaseURL   string
	PersonaModel    string
	Temperature     float64
	SnippetMaxChars int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8501"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			WsLogFilePath:      getEnv("WS_LOG_FILE_PATH", "logs/progress.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:8501"),
			UploadMaxMB:        getEnvAsInt("UPLOAD_MAX_MB", 200),
			PreviewMaxBytes:    getEnvAsInt("PREVIEW_MAX_BYTES", 1<<20),
			SessionTTL:         getEnvAsDuration("SESSION_TTL", 12*time.Hour),
		},
		Paths: PathsConfig{
			PdfInputDir:    getEnv("PDF_INPUT_DIR", "pdfs_to_parse"),
			TxtInputDir:    getEnv("TXT_INPUT_DIR", "txt_files"),
			ParsedSubdir:   getEnv("PARSED_PDF_SUBDIR", "parsed_pdfs_streamlit"),
			OutputDir:      getEnv("OUTPUT_DIR", "."),
			OutputFilename: getEnv("OUTPUT_FILENAME", "promptgen_cxml.txt"),
		},
		Tools: ToolsConfig{
			LlamaParseCommand:    getEnv("LLAMA_PARSE_COMMAND", "llama-parse"),
			FilesToPromptCommand: getEnv("FILES_TO_PROMPT_COMMAND", "files-to-prompt"),
			LlamaParseAuthFile:   getEnv("LLAMA_PARSE_AUTH_FILE", defaultLlamaParseAuthFile()),
			Timeout:              getEnvAsDuration("TOOL_TIMEOUT", 300*time.Second),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Ai: AIConfig{
			GeminiBaseURL:   getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			PersonaModel:    getEnv("PERSONA_MODEL", "gemini-2.5-pro"),
			Temperature:     getEnvAsFloat("PERSONA_TEMPERATURE", 0.7),
			SnippetMaxChars: getEnvAsInt("PERSONA_SNIPPET_MAX_CHARS", 100000),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func defaultLlamaParseAuthFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".llama-parse", "config.json")
	}
	return filepath.Join(home, ".llama-parse", "config.json")
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
