package embedding

import "fmt"

// NewProvider builds the configured embedding backend.
func NewProvider(providerType, apiKey, baseURL, modelName string) (Provider, error) {
	switch providerType {
	case "gemini":
		return NewGeminiProvider(apiKey), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
