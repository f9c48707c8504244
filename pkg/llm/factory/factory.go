package factory

import (
	"fmt"
	"log"

	"nextmind-agent-be/pkg/llm"
	llmopenai "nextmind-agent-be/pkg/llm/openai"
)

// ModelPair names a primary model and the model used when the primary fails.
type ModelPair struct {
	Primary  string
	Fallback string
}

// NewLLMProvider builds a retry-wrapped provider for the given backend.
// Currently only "openai" (and OpenAI-compatible gateways via baseURL) is
// supported; the indirection keeps the pipeline portable.
func NewLLMProvider(providerType, apiKey, baseURL string, models ModelPair, logger *log.Logger) (llm.LLMProvider, error) {
	switch providerType {
	case "openai", "":
		primary := llmopenai.NewProviderWithBaseURL(apiKey, models.Primary, baseURL)
		var fallback llm.LLMProvider
		if models.Fallback != "" && models.Fallback != models.Primary {
			fallback = llmopenai.NewProviderWithBaseURL(apiKey, models.Fallback, baseURL)
		}
		return llm.NewRetryProvider(primary, fallback, llmopenai.IsTransient, logger), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
