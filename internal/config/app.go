package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/relevohq/relevo/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"RELEVO_RUNTIME_PATH" envDefault:".relevo"`

	// Interview limits
	MaxSafetyTurns  int    `env:"MAX_SAFETY_TURNS" envDefault:"50"`
	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"es"`

	// Context enrichment
	MaxContextProcesses int  `env:"MAX_CONTEXT_PROCESSES" envDefault:"20"`
	EnrichmentEnabled   bool `env:"ENRICHMENT_ENABLED" envDefault:"true"`
	CacheTTLSeconds     int  `env:"CACHE_TTL_SECONDS" envDefault:"300"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "relevo.db")
}
