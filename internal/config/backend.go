package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/relevohq/relevo/pkg/log"
)

type BackendConfig struct {
	BaseURL string `env:"BACKEND_BASE_URL,required,notEmpty"`
	Token   string `env:"BACKEND_TOKEN"`

	TimeoutSeconds int `env:"BACKEND_TIMEOUT_SECONDS" envDefault:"5"`
	MaxRetries     int `env:"BACKEND_MAX_RETRIES" envDefault:"2"`
}

func NewBackendConfig(ctx context.Context) *BackendConfig {
	c := &BackendConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Backend config")
	}
	return c
}

func (c BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
