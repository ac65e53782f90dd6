package analyzer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "footy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, 0.7, cfg.BlendWeight)
	assert.Equal(t, 0.55, cfg.DrawEpidemicThreshold)
	assert.Equal(t, 0.15, cfg.DecisiveMargin)
	assert.Equal(t, 2.5, cfg.GoalLine)
	for _, l := range AllLeagues {
		_, ok := cfg.LeagueBaselines[l]
		assert.True(t, ok, "no baseline for %s", l)
	}
	assert.GreaterOrEqual(t, cfg.Baseline(EuropaLeague).DrawRate, cfg.DrawEpidemicThreshold)
}

func TestLoadConfigWithoutFile(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
blend_weight: 0.6
analysis_timeout: 30s
allowed_hosts:
  - example.com
league_baselines:
  europa_league:
    draw_rate: 0.8
    goals: 2.0
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 0.6, cfg.BlendWeight)
	assert.Equal(t, 30*time.Second, cfg.AnalysisTimeout)
	assert.Equal(t, []string{"example.com"}, cfg.AllowedHosts)
	assert.Equal(t, 0.8, cfg.Baseline(EuropaLeague).DrawRate)
	assert.Equal(t, 2.0, cfg.Baseline(EuropaLeague).Goals)

	// untouched values keep their defaults
	assert.Equal(t, 0.55, cfg.DrawEpidemicThreshold)
	assert.Equal(t, 0.28, cfg.Baseline(PremierLeague).DrawRate)
}

func TestLoadConfigFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"out of range blend", "blend_weight: 1.5\n"},
		{"unknown league", "league_baselines:\n  mars_league:\n    draw_rate: 0.1\n"},
		{"malformed yaml", "blend_weight: [\n"},
		{"bad duration", "analysis_timeout: soon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"negative blend", func(c *Config) { c.BlendWeight = -0.1 }},
		{"threshold above one", func(c *Config) { c.DrawEpidemicThreshold = 1.2 }},
		{"negative margin", func(c *Config) { c.DecisiveMargin = -1 }},
		{"zero goal line", func(c *Config) { c.GoalLine = 0 }},
		{"epsilon past line", func(c *Config) { c.GoalEpsilon = 3 }},
		{"hint weight above one", func(c *Config) { c.ExpectedGoalsHintWeight = 2 }},
		{"home share of one", func(c *Config) { c.HomeGoalShare = 1 }},
		{"no timeout", func(c *Config) { c.AnalysisTimeout = 0 }},
		{"labels inverted", func(c *Config) { c.MediumConfidence = 0.9 }},
		{"baseline draw rate", func(c *Config) { c.LeagueBaselines[SerieA] = LeagueBaseline{DrawRate: 1.5} }},
		{"baseline goals", func(c *Config) { c.LeagueBaselines[Ligue1] = LeagueBaseline{Goals: -1} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, ValidateConfig(cfg))
		})
	}
}

func TestBaselineFallsBackToOther(t *testing.T) {
	cfg := DefaultConfig()
	delete(cfg.LeagueBaselines, LaLiga)
	assert.Equal(t, cfg.LeagueBaselines[Other], cfg.Baseline(LaLiga))

	cfg.LeagueBaselines = nil
	assert.Equal(t, LeagueBaseline{}, cfg.Baseline(LaLiga))
}
