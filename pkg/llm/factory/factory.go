package factory

import (
	"insightops-be/internal/config"
	"insightops-be/pkg/llm"
	"insightops-be/pkg/llm/gemini"
	"insightops-be/pkg/llm/groq"
	"insightops-be/pkg/llm/openai"
)

// NewChatProvider selects the answering backend from configured credentials.
// Precedence is OpenAI, then Groq, then Gemini. With no key configured it
// returns nil and the service answers in basic mode.
func NewChatProvider(cfg *config.Config) llm.ChatProvider {
	if cfg.Ai.OpenAIKey != "" {
		return openai.NewOpenAIProvider(cfg.Ai.OpenAIKey, cfg.Ai.OpenAIModel)
	}
	if cfg.Ai.GroqKey != "" {
		return groq.NewGroqProvider(cfg.Ai.GroqKey, cfg.Ai.GroqModel)
	}
	if cfg.Ai.GeminiKey != "" {
		return gemini.NewGeminiProvider(cfg.Ai.GeminiKey, cfg.Ai.GeminiModel)
	}
	return nil
}
