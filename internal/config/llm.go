package config

import (
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/naufalhakim/catatin/internal/llm"
)

// LoadLLMConfig loads extraction model configuration. Precedence:
// 1. Viper configuration (config file or CATATIN_ env vars)
// 2. Provider-specific environment variables
// 3. Defaults
func LoadLLMConfig() llm.Config {
	cfg := llm.Config{
		Provider:    viper.GetString("llm.provider"),
		APIKey:      viper.GetString("llm.api_key"),
		Model:       viper.GetString("llm.model"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
	}

	if seconds := viper.GetInt("llm.timeout"); seconds > 0 {
		cfg.Timeout = time.Duration(seconds) * time.Second
	}

	if cfg.Provider == "" {
		cfg.Provider = "gemini"
	}
	if cfg.APIKey == "" {
		switch cfg.Provider {
		case "gemini":
			cfg.APIKey = os.Getenv("GEMINI_API_KEY")
		case "openai":
			cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic":
			cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	return cfg
}
