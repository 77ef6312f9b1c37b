package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/relevohq/relevo/pkg/log"
)

type DetectionConfig struct {
	// First attempt timeout; the retry gets half of it so the sum of attempts
	// stays under roughly 2x the base.
	TimeoutSeconds      float64 `env:"DETECTION_TIMEOUT_SECONDS" envDefault:"3.0"`
	RetryTimeoutSeconds float64 `env:"DETECTION_RETRY_TIMEOUT_SECONDS" envDefault:"1.5"`
	RetryEnabled        bool    `env:"DETECTION_RETRY_ENABLED" envDefault:"true"`

	// Confidence bands: >= MatchThreshold is a confirmed match, below
	// NewThreshold is treated as new, in between asks a clarifying question.
	MatchThreshold float64 `env:"DETECTION_MATCH_THRESHOLD" envDefault:"0.8"`
	NewThreshold   float64 `env:"DETECTION_NEW_THRESHOLD" envDefault:"0.5"`

	// SemanticEnabled=false degrades to keyword-only mode: the pre-filter
	// alone decides, with confidence pinned at 0.5.
	SemanticEnabled bool `env:"DETECTION_SEMANTIC_ENABLED" envDefault:"true"`
}

func NewDetectionConfig(ctx context.Context) *DetectionConfig {
	c := &DetectionConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Detection config")
	}
	return c
}

func (c DetectionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}

func (c DetectionConfig) RetryTimeout() time.Duration {
	return time.Duration(c.RetryTimeoutSeconds * float64(time.Second))
}
