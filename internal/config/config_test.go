package config

import (
	"testing"
	"time"

	"last20-backend/pkg/matching"

	"github.com/stretchr/testify/assert"
)

func TestMatchingConfigOptions(t *testing.T) {
	defaults := matching.DefaultOptions()

	t.Run("zero config keeps matcher defaults", func(t *testing.T) {
		assert.Equal(t, defaults, MatchingConfig{}.Options())
	})

	t.Run("set values override the defaults", func(t *testing.T) {
		opts := MatchingConfig{
			MinMatchScore:        0.4,
			MaxResults:           3,
			RequirePayoutAccount: true,
		}.Options()

		assert.Equal(t, 0.4, opts.MinMatchScore)
		assert.Equal(t, 3, opts.MaxResults)
		assert.True(t, opts.RequirePayoutAccount)
		assert.Equal(t, defaults.TagMatchWeight, opts.TagMatchWeight)
		assert.Equal(t, defaults.RatingWeight, opts.RatingWeight)
	})
}

func TestSignalingConfigCoordinator(t *testing.T) {
	cfg := SignalingConfig{GatherTimeoutSec: 5}.Coordinator()
	assert.Equal(t, 5*time.Second, cfg.GatherTimeout)
	assert.Zero(t, cfg.StatsInterval)

	resolved := cfg.WithDefaults()
	assert.Equal(t, 5*time.Second, resolved.GatherTimeout)
	assert.Equal(t, 2*time.Second, resolved.StatsInterval)
	assert.Equal(t, 30*time.Second, resolved.ConnectTimeout)
}
