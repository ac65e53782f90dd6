package analyzer

import (
	"fmt"
	"math"
)

// Outcome is the full time result of a match from the home side's point of view
type Outcome int

const (
	HomeWin Outcome = iota
	Draw
	AwayWin
)

func (o Outcome) String() string {
	switch o {
	case HomeWin:
		return "HomeWin"
	case Draw:
		return "Draw"
	case AwayWin:
		return "AwayWin"
	default:
		return "Unknown"
	}
}

// Code is the single letter used in result strings (H, D or A)
func (o Outcome) Code() string {
	switch o {
	case HomeWin:
		return "H"
	case Draw:
		return "D"
	default:
		return "A"
	}
}

// BetName is how the outcome appears on the BET line
func (o Outcome) BetName() string {
	if o == Draw {
		return "DRAW"
	}
	return "WIN"
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// GoalMarket is the over/under call relative to the configured goal line
type GoalMarket int

const (
	Unclear GoalMarket = iota
	Over
	Under
)

func (g GoalMarket) String() string {
	switch g {
	case Over:
		return "Over"
	case Under:
		return "Under"
	default:
		return "Unclear"
	}
}

func (g GoalMarket) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// probabilityTolerance is how far from 1 an implied probability triple may sum
const probabilityTolerance = 1e-6

// MatchRecord is the structured set of facts extracted from one match page.
// It is treated as immutable once built.
type MatchRecord struct {
	HomeTeam          string   `json:"homeTeam"`
	AwayTeam          string   `json:"awayTeam"`
	League            LeagueID `json:"league"`
	ImpliedHome       float64  `json:"impliedHome"`
	ImpliedDraw       float64  `json:"impliedDraw"`
	ImpliedAway       float64  `json:"impliedAway"`
	ExpectedGoalsHint *float64 `json:"expectedGoalsHint,omitempty"`
	SourceURL         string   `json:"sourceUrl,omitempty"`
}

// NewMatchRecord builds a record from raw probability weights, normalising
// them so they sum to 1. Any negative or all-zero triple is rejected.
func NewMatchRecord(home, away string, league LeagueID, pHome, pDraw, pAway float64) (MatchRecord, error) {
	h, d, a, err := Normalise(pHome, pDraw, pAway)
	if err != nil {
		return MatchRecord{}, err
	}
	return MatchRecord{
		HomeTeam:    home,
		AwayTeam:    away,
		League:      league,
		ImpliedHome: h,
		ImpliedDraw: d,
		ImpliedAway: a,
	}, nil
}

// WithExpectedGoals returns a copy of the record carrying a total goals hint
func (r MatchRecord) WithExpectedGoals(goals float64) MatchRecord {
	g := goals
	r.ExpectedGoalsHint = &g
	return r
}

// Validate checks the probability invariants of the record
func (r MatchRecord) Validate() error {
	for _, p := range []float64{r.ImpliedHome, r.ImpliedDraw, r.ImpliedAway} {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("implied probability %f out of range", p)
		}
	}
	sum := r.ImpliedHome + r.ImpliedDraw + r.ImpliedAway
	if math.Abs(sum-1) > probabilityTolerance {
		return fmt.Errorf("implied probabilities sum to %f, not 1", sum)
	}
	return nil
}

// Normalise scales three non-negative weights so they sum to exactly 1
func Normalise(a, b, c float64) (float64, float64, float64, error) {
	for _, v := range []float64{a, b, c} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0, 0, 0, fmt.Errorf("invalid probability weight %f", v)
		}
	}
	total := a + b + c
	if total <= 0 {
		return 0, 0, 0, fmt.Errorf("probability weights sum to zero")
	}
	return a / total, b / total, c / total, nil
}

// ImpliedFromOdds converts three-way decimal odds into fair probabilities by
// stripping the bookmaker's overround (implied_i = (1/odds_i) / sum(1/odds_j))
func ImpliedFromOdds(home, draw, away float64) (float64, float64, float64, error) {
	for _, o := range []float64{home, draw, away} {
		if math.IsNaN(o) || o <= 1.0 {
			return 0, 0, 0, fmt.Errorf("invalid decimal odds %f", o)
		}
	}
	return Normalise(1.0/home, 1.0/draw, 1.0/away)
}

// Recommendation is the prediction for one match. It is produced per call and never persisted.
type Recommendation struct {
	League        LeagueID   `json:"league"`
	Outcome       Outcome    `json:"outcome"`
	Confidence    float64    `json:"confidence"`
	HomeProb      float64    `json:"homeProb"`
	DrawProb      float64    `json:"drawProb"`
	AwayProb      float64    `json:"awayProb"`
	GoalMarket    GoalMarket `json:"goalMarket"`
	GoalLine      float64    `json:"goalLine"`
	GoalEstimate  float64    `json:"goalEstimate"`
	HomeGoals     float64    `json:"homeGoals"`
	AwayGoals     float64    `json:"awayGoals"`
	BothToScore   bool       `json:"bothToScore"`
	EmergencyDraw bool       `json:"emergencyDraw"`
	DrawRateUsed  float64    `json:"drawRateUsed"`
	FromBaseline  bool       `json:"fromBaseline"`
}

// LearningOutcome is what one observed result taught us
type LearningOutcome struct {
	League           LeagueID      `json:"league"`
	Predicted        Outcome       `json:"predicted"`
	Actual           Outcome       `json:"actual"`
	WasCorrect       bool          `json:"wasCorrect"`
	HomeGoals        int           `json:"homeGoals"`
	AwayGoals        int           `json:"awayGoals"`
	GoalDelta        float64       `json:"goalDelta"` // actual total minus estimate
	OverCorrect      bool          `json:"overCorrect"`
	BothTeamsScored  bool          `json:"bothTeamsScored"`
	BothScoreCorrect bool          `json:"bothScoreCorrect"`
	Delta            ProfileDelta  `json:"delta"`
	Profile          LeagueProfile `json:"profile"`
	Persisted        bool          `json:"persisted"`
}

// TotalGoals is the combined score of the observed result
func (l LearningOutcome) TotalGoals() int {
	return l.HomeGoals + l.AwayGoals
}
