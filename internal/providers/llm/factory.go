package llm

import (
	"context"
	"fmt"

	"github.com/relevohq/relevo/internal/config"
	"github.com/relevohq/relevo/internal/core"
	"github.com/relevohq/relevo/pkg/log"
)

// NewProvider creates the appropriate LLMProvider based on configuration.
func NewProvider(ctx context.Context, cfg *config.LLMConfig) (core.LLMProvider, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	switch cfg.Provider {
	case "openrouter":
		return NewOpenRouter(cfg.APIKey, cfg.Model), nil
	case "ollama":
		return NewOllama(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	case "custom":
		return NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    cfg.BaseURL,
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
