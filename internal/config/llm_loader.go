package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/josephgoksu/agentwriting/internal/llm"
	"github.com/spf13/viper"
)

// llmSettings are the numeric knobs validated before a gateway is built.
type llmSettings struct {
	BaseURL           string        `validate:"omitempty,url"`
	Temperature       float64       `validate:"gte=0,lte=2"`
	MaxTokens         int           `validate:"gte=0"`
	CallTimeout       time.Duration `validate:"gte=0"`
	RequestsPerSecond float64       `validate:"gte=0"`
}

// LoadLLMConfig loads LLM configuration from Viper and environment variables.
// Precedence: explicit Viper config > provider inferred from model > defaults.
// It does not prompt; interactive key entry belongs to the CLI layer.
func LoadLLMConfig() (llm.Config, error) {
	// 1. Provider, inferred from the model when only the model is set
	provider := strings.ToLower(strings.TrimSpace(viper.GetString("llm.provider")))
	model := strings.TrimSpace(viper.GetString("llm.model"))
	if provider == "" && model != "" {
		if inferred, ok := llm.InferProviderFromModel(model); ok {
			provider = inferred
		}
	}
	if provider == "" {
		provider = llm.DefaultProvider
	}

	llmProvider, err := llm.ValidateProvider(provider)
	if err != nil {
		return llm.Config{}, fmt.Errorf("invalid provider: %w", err)
	}

	// 2. Model
	if model == "" {
		model = llm.DefaultModelForProvider(string(llmProvider))
	}

	// 3. API key. Missing keys are reported when the chat model is built,
	// since Ollama needs none.
	apiKey := ResolveAPIKey(llmProvider)

	// 4. Base URL
	baseURL := strings.TrimSpace(viper.GetString("llm.baseURL"))
	if baseURL == "" {
		switch llmProvider {
		case llm.ProviderOllama:
			baseURL = llm.DefaultOllamaURL
		case llm.ProviderGroq:
			baseURL = llm.DefaultGroqURL
		}
	}

	settings := llmSettings{
		BaseURL:           baseURL,
		Temperature:       viper.GetFloat64("llm.temperature"),
		MaxTokens:         viper.GetInt("llm.maxTokens"),
		CallTimeout:       viper.GetDuration("llm.callTimeout"),
		RequestsPerSecond: viper.GetFloat64("llm.requestsPerSecond"),
	}
	if err := ValidateStruct(settings); err != nil {
		return llm.Config{}, fmt.Errorf("invalid llm config: %w", err)
	}

	return llm.Config{
		Provider:          llmProvider,
		Model:             model,
		APIKey:            apiKey,
		BaseURL:           baseURL,
		Temperature:       float32(settings.Temperature),
		MaxTokens:         settings.MaxTokens,
		CallTimeout:       settings.CallTimeout,
		RequestsPerSecond: settings.RequestsPerSecond,
	}, nil
}

// ResolveAPIKey returns the API key for provider from the per-provider config
// key (llm.apiKeys.<provider>), then the provider's own environment variable.
func ResolveAPIKey(provider llm.Provider) string {
	path := fmt.Sprintf("llm.apiKeys.%s", provider)
	if viper.IsSet(path) {
		if key := strings.TrimSpace(viper.GetString(path)); key != "" {
			return key
		}
	}
	return providerEnvKey(provider)
}

func providerEnvKey(provider llm.Provider) string {
	switch provider {
	case llm.ProviderOpenAI:
		return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	case llm.ProviderGroq:
		return strings.TrimSpace(os.Getenv("GROQ_API_KEY"))
	case llm.ProviderAnthropic:
		return strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	case llm.ProviderGemini:
		key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
		if key == "" {
			key = strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
		}
		return key
	default:
		return ""
	}
}
