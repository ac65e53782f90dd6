package analyzer

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LeagueBaseline is what we assume about a league before we have learnt anything about it
type LeagueBaseline struct {
	DrawRate      float64 `yaml:"draw_rate"`
	Goals         float64 `yaml:"goals"`
	HomeAdvantage float64 `yaml:"home_advantage"`
}

// Config contains all configurable parameters that influence prediction outcomes.
// Every heuristic threshold lives here rather than inline.
type Config struct {
	// === STORAGE ===
	DbPath  string `yaml:"db_path"`  // location of the sqlite statistics database
	LogFile string `yaml:"log_file"` // where file logging goes

	// === SOURCE ===
	AllowedHosts    []string      `yaml:"allowed_hosts"`    // hosts we accept match pages from
	UserAgent       string        `yaml:"user_agent"`       // sent when fetching match pages
	AnalysisTimeout time.Duration `yaml:"analysis_timeout"` // overall wall clock budget for one analysis

	// === PREDICTION ===
	BlendWeight           float64 `yaml:"blend_weight"`            // alpha: weight of implied probabilities vs league prior (default: 0.7)
	DrawEpidemicThreshold float64 `yaml:"draw_epidemic_threshold"` // league draw rate that arms the draw override (default: 0.55)
	DecisiveMargin        float64 `yaml:"decisive_margin"`         // lead over the runner up that disarms it (default: 0.15)

	// === GOAL MARKET ===
	GoalLine                float64 `yaml:"goal_line"`                  // over/under line (default: 2.5)
	GoalEpsilon             float64 `yaml:"goal_epsilon"`               // dead zone either side of the line (default: 0.1)
	ExpectedGoalsHintWeight float64 `yaml:"expected_goals_hint_weight"` // weight of the page's goal hint vs league average (default: 0.7)
	HomeGoalShare           float64 `yaml:"home_goal_share"`            // share of the goal estimate credited to the home side (default: 0.55)
	BothTeamsScoreGoals     float64 `yaml:"both_teams_score_goals"`     // each side must be expected to pass this for BTS (default: 0.5)

	// === CONFIDENCE LABELS ===
	HighConfidence   float64 `yaml:"high_confidence"`   // at or above is HIGH (default: 0.5)
	MediumConfidence float64 `yaml:"medium_confidence"` // at or above is MEDIUM (default: 0.4)

	// Used in place of learnt statistics while a league has no samples
	LeagueBaselines map[LeagueID]LeagueBaseline `yaml:"league_baselines"`
}

// DefaultConfig returns the default configuration with all standard values
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return &Config{
		DbPath:  home + "/.footy/footy.db",
		LogFile: "/tmp/footy.log",

		AllowedHosts:    []string{"www.forebet.com", "forebet.com"},
		UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
		AnalysisTimeout: 90 * time.Second,

		BlendWeight:           0.7,
		DrawEpidemicThreshold: 0.55,
		DecisiveMargin:        0.15,

		GoalLine:                2.5,
		GoalEpsilon:             0.1,
		ExpectedGoalsHintWeight: 0.7,
		HomeGoalShare:           0.55,
		BothTeamsScoreGoals:     0.5,

		HighConfidence:   0.5,
		MediumConfidence: 0.4,

		LeagueBaselines: DefaultLeagueBaselines(),
	}
}

// DefaultLeagueBaselines are the long run league characteristics we start from
func DefaultLeagueBaselines() map[LeagueID]LeagueBaseline {
	return map[LeagueID]LeagueBaseline{
		PremierLeague:    {DrawRate: 0.28, Goals: 2.8, HomeAdvantage: 1.15},
		ChampionsLeague:  {DrawRate: 0.30, Goals: 2.6, HomeAdvantage: 1.02},
		EuropaLeague:     {DrawRate: 0.70, Goals: 2.2, HomeAdvantage: 1.01},
		ConferenceLeague: {DrawRate: 0.45, Goals: 1.5, HomeAdvantage: 1.08},
		LaLiga:           {DrawRate: 0.25, Goals: 2.7, HomeAdvantage: 1.12},
		Bundesliga:       {DrawRate: 0.24, Goals: 3.1, HomeAdvantage: 1.08},
		SerieA:           {DrawRate: 0.27, Goals: 2.5, HomeAdvantage: 1.10},
		Ligue1:           {DrawRate: 0.26, Goals: 2.6, HomeAdvantage: 1.09},
		Other:            {DrawRate: 0.33, Goals: 2.5, HomeAdvantage: 1.10},
	}
}

// Baseline returns the configured baseline for a league, falling back to Other
func (c *Config) Baseline(league LeagueID) LeagueBaseline {
	if b, ok := c.LeagueBaselines[league]; ok {
		return b
	}
	if b, ok := c.LeagueBaselines[Other]; ok {
		return b
	}
	return LeagueBaseline{}
}

// LoadConfig reads a YAML file over the top of the defaults.
// Fields missing from the file keep their default value.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// === CONFIGURATION VALIDATION ===

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(config *Config) error {
	if config.BlendWeight < 0.0 || config.BlendWeight > 1.0 {
		return fmt.Errorf("BlendWeight must be between 0.0 and 1.0, got: %f", config.BlendWeight)
	}

	if config.DrawEpidemicThreshold < 0.0 || config.DrawEpidemicThreshold > 1.0 {
		return fmt.Errorf("DrawEpidemicThreshold must be between 0.0 and 1.0, got: %f", config.DrawEpidemicThreshold)
	}

	if config.DecisiveMargin < 0.0 || config.DecisiveMargin > 1.0 {
		return fmt.Errorf("DecisiveMargin must be between 0.0 and 1.0, got: %f", config.DecisiveMargin)
	}

	if config.GoalLine <= 0 {
		return fmt.Errorf("GoalLine must be positive, got: %f", config.GoalLine)
	}

	if config.GoalEpsilon < 0 || config.GoalEpsilon >= config.GoalLine {
		return fmt.Errorf("GoalEpsilon must be between 0 and GoalLine, got: %f", config.GoalEpsilon)
	}

	if config.ExpectedGoalsHintWeight < 0.0 || config.ExpectedGoalsHintWeight > 1.0 {
		return fmt.Errorf("ExpectedGoalsHintWeight must be between 0.0 and 1.0, got: %f", config.ExpectedGoalsHintWeight)
	}

	if config.HomeGoalShare <= 0.0 || config.HomeGoalShare >= 1.0 {
		return fmt.Errorf("HomeGoalShare must be strictly between 0.0 and 1.0, got: %f", config.HomeGoalShare)
	}

	if config.AnalysisTimeout <= 0 {
		return fmt.Errorf("AnalysisTimeout must be positive, got: %s", config.AnalysisTimeout)
	}

	if config.MediumConfidence > config.HighConfidence {
		return fmt.Errorf("MediumConfidence (%f) cannot exceed HighConfidence (%f)", config.MediumConfidence, config.HighConfidence)
	}

	for league, b := range config.LeagueBaselines {
		if b.DrawRate < 0 || b.DrawRate > 1 {
			return fmt.Errorf("baseline draw rate for %s should be between 0 and 1, got: %f", league, b.DrawRate)
		}
		if b.Goals < 0 {
			return fmt.Errorf("baseline goals for %s cannot be negative, got: %f", league, b.Goals)
		}
	}

	return nil
}
