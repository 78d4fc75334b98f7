package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPPort        string
	ShutdownTimeout time.Duration
	Database        DatabaseConfig
	Security        SecurityConfig
	Providers       ProviderDefaults
}

type DatabaseConfig struct {
	Path string
}

type SecurityConfig struct {
	EncryptionKey string
}

// ProviderDefaults hold the process-wide fallback credentials and models
// used when a user has no active provider config for a modality.
type ProviderDefaults struct {
	OpenAIAPIKey    string
	OpenAILLMModel  string
	OpenAISTTModel  string
	OpenAITTSModel  string
	AnthropicAPIKey string
	AnthropicModel  string
	WaveSpeedAPIKey string
	WaveSpeedURL    string
	WaveSpeedModel  string
}

func Load() Config {
	return Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ShutdownTimeout: getDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "data/genai_kid.db"),
		},
		Security: SecurityConfig{
			EncryptionKey: getEnv("ENCRYPTION_KEY", ""),
		},
		Providers: ProviderDefaults{
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			OpenAILLMModel:  getEnv("OPENAI_LLM_MODEL", "gpt-4o-mini"),
			OpenAISTTModel:  getEnv("OPENAI_STT_MODEL", "whisper-1"),
			OpenAITTSModel:  getEnv("OPENAI_TTS_MODEL", "tts-1"),
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel:  getEnv("ANTHROPIC_LLM_MODEL", "claude-haiku-4-5-20251001"),
			WaveSpeedAPIKey: getEnv("WAVESPEED_API_KEY", ""),
			WaveSpeedURL:    getEnv("WAVESPEED_BASE_URL", "https://api.wavespeed.ai"),
			WaveSpeedModel:  getEnv("WAVESPEED_MODEL", "wavespeed-ai/z-image/turbo-lora"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
