// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "gemini-2.5-flash-preview-05-20"
	DefaultOCRLanguage   = "ind"
)

// Config holds the process-wide settings. It is loaded once at startup and
// handed to components by value; nothing mutates it afterwards.
type Config struct {
	Port      string
	LogDir    string
	LogLevel  string
	DebugMode bool

	Gemini GeminiConfig
	OCR    OCRConfig

	MaxUploadMB int
	// RateLimitPerMinute caps /ocr and /generate-report per client IP; 0 disables.
	RateLimitPerMinute int
}

// GeminiConfig holds generative API settings.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OCRConfig holds Tesseract settings.
type OCRConfig struct {
	Language    string
	TessdataDir string
	PSM         int
}

// HasAPIKey reports whether a Gemini key was provided.
func (g GeminiConfig) HasAPIKey() bool {
	return strings.TrimSpace(g.APIKey) != ""
}

// Endpoint returns the generateContent URL without the key parameter.
func (g GeminiConfig) Endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(g.BaseURL, "/"), g.Model)
}

// MaxUploadBytes returns the multipart size limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Load reads configuration from the environment, after an optional .env file.
func Load() (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Config{
		Port:      getEnv("PORT", "8080"),
		LogDir:    getEnv("LOG_DIR", "logs"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		DebugMode: getEnvBool("DEBUG_MODE", false),
		Gemini: GeminiConfig{
			APIKey:  getEnv("GOOGLE_API_KEY", ""),
			BaseURL: getEnv("GEMINI_BASE_URL", DefaultGeminiBaseURL),
			Model:   getEnv("GEMINI_MODEL", DefaultGeminiModel),
			Timeout: getEnvDuration("GEMINI_TIMEOUT", 60*time.Second),
		},
		OCR: OCRConfig{
			Language:    getEnv("OCR_LANGUAGE", DefaultOCRLanguage),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			PSM:         getEnvInt("OCR_PSM", 0),
		},
		MaxUploadMB:        getEnvInt("MAX_UPLOAD_MB", 10),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	if !cfg.Gemini.HasAPIKey() {
		// report generation answers 500 until a key is provided
		log.Println("warning: GOOGLE_API_KEY is not set, /generate-report will fail")
	}

	return cfg, nil
}

// Validate checks values that would make the server unusable.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.Gemini.BaseURL == "" || c.Gemini.Model == "" {
		return fmt.Errorf("GEMINI_BASE_URL and GEMINI_MODEL must not be empty")
	}
	if c.Gemini.Timeout <= 0 {
		return fmt.Errorf("GEMINI_TIMEOUT must be positive, got %s", c.Gemini.Timeout)
	}
	if c.OCR.Language == "" {
		return fmt.Errorf("OCR_LANGUAGE must not be empty")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.RateLimitPerMinute)
	}
	return nil
}

// getEnv returns the variable or the default when unset.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("warning: invalid integer for %s: %q, using %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("warning: invalid duration for %s: %q, using %s", key, value, defaultValue)
	}
	return defaultValue
}
