package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port        string
	FrontendURL string

	OllamaBaseURL string
	DefaultModel  string

	OpenAIAPIKey         string
	OpenAIBaseURL        string
	OpenAIModel          string
	OpenAITLSFingerprint bool

	AnthropicAPIKey    string
	AnthropicMaxTokens int64

	RoutesFile    string
	ModelsBackend string

	UpstreamTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// LoadDotEnv loads the first .env file found walking up from the working
// directory. Variables already set in the environment win.
func LoadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				Logger.Warn("failed to load .env", "path", envPath, "error", err)
			}
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// Load reads the configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		Port:                 envOr("PORT", "8000"),
		FrontendURL:          envOr("FRONTEND_URL", "http://localhost:5173"),
		OllamaBaseURL:        strings.TrimRight(envOr("OLLAMA_BASE_URL", "http://localhost:11434"), "/"),
		DefaultModel:         envOr("DEFAULT_MODEL", "llama2"),
		OpenAIAPIKey:         envOr("OPENAI_API_KEY", ""),
		OpenAIBaseURL:        strings.TrimRight(envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/"),
		OpenAIModel:          envOr("OPENAI_MODEL", "gpt-4"),
		OpenAITLSFingerprint: envBool("OPENAI_TLS_FINGERPRINT", false),
		AnthropicAPIKey:      envOr("ANTHROPIC_API_KEY", ""),
		AnthropicMaxTokens:   int64(envInt("ANTHROPIC_MAX_TOKENS", 4096)),
		RoutesFile:           envOr("CHATBOT_ROUTES_FILE", ""),
		ModelsBackend:        envOr("CHATBOT_MODELS_BACKEND", BackendOllama),
		UpstreamTimeout:      envDuration("UPSTREAM_TIMEOUT", 60*time.Second),
		LogLevel:             envOr("LOG_LEVEL", "info"),
		LogFormat:            envOr("LOG_FORMAT", "text"),
	}
}

func envOr(key, d string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return d
}

func envInt(key string, d int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return d
}

func envBool(key string, d bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

func envDuration(key string, d time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if dur, err := time.ParseDuration(v); err == nil && dur > 0 {
			return dur
		}
	}
	return d
}
