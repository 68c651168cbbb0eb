package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.LeetCode.ContestPageSize)
	assert.False(t, cfg.LeetCode.ConservativeRL)
}

func TestLoad_ConservativeRateLimitFlag(t *testing.T) {
	t.Setenv("LEETCODE_CONSERVATIVE_RATE_LIMIT", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.LeetCode.ConservativeRL)
}

func TestLoad_RejectsInvalidPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "99999")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
}
