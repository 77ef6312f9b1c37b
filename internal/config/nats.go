package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/relevohq/relevo/pkg/log"
)

type NATSConfig struct {
	URL     string `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	Channel string `env:"NATS_COMPLETED_CHANNEL" envDefault:"interviews.completed"`
}

func NewNATSConfig(ctx context.Context) *NATSConfig {
	c := &NATSConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse NATS config")
	}
	return c
}
