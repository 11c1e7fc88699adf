package llm

import (
	"sort"
	"strings"
)

// Model is a known model for a provider. The registry is a static table used
// for defaults and suggestions; it is not a live listing of what a backend serves.
type Model struct {
	ID         string   // Canonical model ID (e.g., "llama-3.1-70b-versatile")
	Provider   string   // Provider display name (e.g., "Groq")
	ProviderID string   // Internal provider ID (e.g., "groq")
	Aliases    []string // Alternative IDs including dated versions
	IsDefault  bool     // Whether this is the default model for its provider
}

// ModelRegistry lists the models offered for selection.
var ModelRegistry = []Model{
	// Groq
	{
		ID:         "llama-3.1-70b-versatile",
		Provider:   "Groq",
		ProviderID: ProviderGroq,
		IsDefault:  true,
	},
	{
		ID:         "llama-3.3-70b-versatile",
		Provider:   "Groq",
		ProviderID: ProviderGroq,
	},
	{
		ID:         "gemma-7b-it",
		Provider:   "Groq",
		ProviderID: ProviderGroq,
	},

	// OpenAI
	{
		ID:         "gpt-4o-mini",
		Provider:   "OpenAI",
		ProviderID: ProviderOpenAI,
		Aliases:    []string{"gpt-4o-mini-2024-07-18"},
		IsDefault:  true,
	},
	{
		ID:         "gpt-4o",
		Provider:   "OpenAI",
		ProviderID: ProviderOpenAI,
		Aliases:    []string{"gpt-4o-2024-08-06"},
	},
	{
		ID:         "gpt-4",
		Provider:   "OpenAI",
		ProviderID: ProviderOpenAI,
	},
	{
		ID:         "gpt-3.5-turbo",
		Provider:   "OpenAI",
		ProviderID: ProviderOpenAI,
	},

	// Anthropic
	{
		ID:         "claude-3-5-sonnet-latest",
		Provider:   "Anthropic",
		ProviderID: ProviderAnthropic,
		Aliases:    []string{"claude-3-5-sonnet-20241022"},
		IsDefault:  true,
	},
	{
		ID:         "claude-3-5-haiku-latest",
		Provider:   "Anthropic",
		ProviderID: ProviderAnthropic,
		Aliases:    []string{"claude-3-5-haiku-20241022"},
	},

	// Gemini
	{
		ID:         "gemini-2.0-flash",
		Provider:   "Google",
		ProviderID: ProviderGemini,
		IsDefault:  true,
	},
	{
		ID:         "gemini-2.5-pro",
		Provider:   "Google",
		ProviderID: ProviderGemini,
	},

	// Ollama (local)
	{
		ID:         "llama3.2",
		Provider:   "Ollama",
		ProviderID: ProviderOllama,
		IsDefault:  true,
	},
	{
		ID:         "mistral",
		Provider:   "Ollama",
		ProviderID: ProviderOllama,
	},
}

// modelIndex is built at init time for fast lookups
var modelIndex map[string]*Model

func init() {
	modelIndex = make(map[string]*Model)
	for i := range ModelRegistry {
		m := &ModelRegistry[i]
		modelIndex[m.ID] = m
		for _, alias := range m.Aliases {
			modelIndex[alias] = m
		}
	}
}

// GetModel returns the model definition for a given model ID or alias.
// Returns nil if the model is not found.
func GetModel(modelID string) *Model {
	return modelIndex[modelID]
}

// GetDefaultModelID returns the default model ID for a provider.
func GetDefaultModelID(providerID string) string {
	for i := range ModelRegistry {
		m := &ModelRegistry[i]
		if m.ProviderID == providerID && m.IsDefault {
			return m.ID
		}
	}
	return ""
}

// InferProvider attempts to determine the provider from a model name.
// Returns the provider ID and true if inference succeeded.
func InferProvider(modelID string) (string, bool) {
	if m := GetModel(modelID); m != nil {
		return m.ProviderID, true
	}

	switch {
	case strings.HasPrefix(modelID, "gpt-"), strings.HasPrefix(modelID, "o1-"), strings.HasPrefix(modelID, "o3-"):
		return ProviderOpenAI, true
	case strings.HasPrefix(modelID, "claude-"):
		return ProviderAnthropic, true
	case strings.HasPrefix(modelID, "gemini-"):
		return ProviderGemini, true
	case strings.HasPrefix(modelID, "llama"), strings.HasPrefix(modelID, "mistral"), strings.HasPrefix(modelID, "phi"):
		return ProviderOllama, true
	}

	return "", false
}

// SuggestedModels returns registry models for a provider, default first.
func SuggestedModels(providerID string) []Model {
	var out []Model
	for _, m := range ModelRegistry {
		if m.ProviderID == providerID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].ID < out[j].ID
	})
	return out
}
