package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/relevohq/relevo/pkg/log"
)

type LLMConfig struct {
	Provider string `env:"LLM_PROVIDER" envDefault:"openrouter"`
	APIKey   string `env:"LLM_API_KEY,required,notEmpty"`
	Model    string `env:"LLM_MODEL,required,notEmpty"`
	BaseURL  string `env:"LLM_BASE_URL"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}
