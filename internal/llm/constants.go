package llm

// Provider constants
const (
	// DefaultProvider is the default LLM provider
	DefaultProvider = ProviderGroq

	// ProviderOpenAI represents the OpenAI provider
	ProviderOpenAI = "openai"

	// ProviderGroq represents Groq's OpenAI-compatible endpoint
	ProviderGroq = "groq"

	// ProviderOllama represents a local Ollama server
	ProviderOllama = "ollama"

	// ProviderAnthropic represents the Anthropic provider
	ProviderAnthropic = "anthropic"

	// ProviderGemini represents the Google Gemini provider
	ProviderGemini = "gemini"
)

// DefaultOllamaURL is the default URL for Ollama server
const DefaultOllamaURL = "http://localhost:11434"

// DefaultGroqURL is the OpenAI-compatible base URL for Groq.
const DefaultGroqURL = "https://api.groq.com/openai/v1"

// DefaultAnthropicMaxTokens is sent when no max token budget is configured;
// the Anthropic API rejects requests without one.
const DefaultAnthropicMaxTokens = 4096

// DefaultModelForProvider returns the default model ID for a given provider.
// This is a convenience wrapper around GetDefaultModelID in models.go.
func DefaultModelForProvider(provider string) string {
	return GetDefaultModelID(provider)
}

// InferProviderFromModel attempts to determine the provider from a model name.
// This is a convenience wrapper around InferProvider in models.go.
func InferProviderFromModel(model string) (string, bool) {
	return InferProvider(model)
}
