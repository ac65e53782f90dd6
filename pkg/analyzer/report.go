package analyzer

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BetPrefix marks the recommendation line in every report
const BetPrefix = "BET:"

// Report is the formatted result of one analysis. Consumers should read the
// structured fields; Text is for display.
type Report struct {
	ID              string           `json:"id"`
	GeneratedAt     time.Time        `json:"generatedAt"`
	Record          MatchRecord      `json:"record"`
	Recommendation  Recommendation   `json:"recommendation"`
	Learning        *LearningOutcome `json:"learning,omitempty"`
	ConfidenceLabel string           `json:"confidenceLabel"`
	Header          string           `json:"header"`
	Rationale       []string         `json:"rationale"`
	BetLine         string           `json:"betLine"`
	LearningLine    string           `json:"learningLine,omitempty"`
	SummaryLine     string           `json:"summaryLine"`
}

// Text renders the report: header, rationale, BET line, then the learning line if any
func (r *Report) Text() string {
	lines := make([]string, 0, len(r.Rationale)+3)
	lines = append(lines, r.Header)
	lines = append(lines, r.Rationale...)
	lines = append(lines, r.BetLine)
	if r.LearningLine != "" {
		lines = append(lines, r.LearningLine)
	}
	return strings.Join(lines, "\n")
}

func (r *Report) String() string {
	return r.SummaryLine
}

// Format builds the report for one prediction and, optionally, what was learnt from it
func Format(cfg *Config, record MatchRecord, rec Recommendation, learning *LearningOutcome) *Report {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	label := ConfidenceLabel(cfg, rec.Confidence)

	r := &Report{
		ID:              uuid.NewString(),
		GeneratedAt:     time.Now().UTC(),
		Record:          record,
		Recommendation:  rec,
		Learning:        learning,
		ConfidenceLabel: label,
		Header:          fmt.Sprintf("⚽ %s vs %s | 🏆 %s", record.HomeTeam, record.AwayTeam, record.League),
		Rationale:       rationale(cfg, record, rec),
		BetLine:         betLine(record, rec, label),
	}
	if learning != nil {
		r.LearningLine = learning.Summary()
	}
	r.SummaryLine = fmt.Sprintf("%s vs %s | %s | %s %.1f%% (%s) | %s %.1f goals",
		record.HomeTeam, record.AwayTeam, record.League, rec.Outcome, rec.Confidence*100, label, rec.GoalMarket, rec.GoalEstimate)
	return r
}

func rationale(cfg *Config, record MatchRecord, rec Recommendation) []string {
	lines := []string{
		fmt.Sprintf("📊 Implied: home %.1f%% | draw %.1f%% | away %.1f%%",
			record.ImpliedHome*100, record.ImpliedDraw*100, record.ImpliedAway*100),
		fmt.Sprintf("📈 Blended: home %.1f%% | draw %.1f%% | away %.1f%%",
			rec.HomeProb*100, rec.DrawProb*100, rec.AwayProb*100),
	}

	source := "learnt"
	if rec.FromBaseline {
		source = "baseline"
	}
	lines = append(lines, fmt.Sprintf("🧮 League draw rate %.1f%% (%s)", rec.DrawRateUsed*100, source))

	if rec.EmergencyDraw {
		lines = append(lines, fmt.Sprintf("🚨 Emergency draw override: draw rate at or above %.0f%% and no outcome leads by %.0f%%",
			cfg.DrawEpidemicThreshold*100, cfg.DecisiveMargin*100))
	}

	goals := fmt.Sprintf("⚽ Goals: %.2f expected (%.1f home, %.1f away) | %s %.1f",
		rec.GoalEstimate, rec.HomeGoals, rec.AwayGoals, rec.GoalMarket, rec.GoalLine)
	if rec.BothToScore {
		goals += " | BTS: yes"
	} else {
		goals += " | BTS: no"
	}
	lines = append(lines, goals)

	if insight := leagueInsight(record.League, rec); insight != "" {
		lines = append(lines, insight)
	}
	return lines
}

func leagueInsight(league LeagueID, rec Recommendation) string {
	switch league {
	case EuropaLeague:
		return fmt.Sprintf("⚠️ Europa League draw alert: %.0f%% of matches drawn, draw predictions are favoured", rec.DrawRateUsed*100)
	case ConferenceLeague:
		return "ℹ️ Conference League: expect low scoring, defensive matches with a high draw probability"
	case PremierLeague:
		return "✅ Premier League: the most predictable league, with balanced home advantage"
	case ChampionsLeague:
		return "🏆 Champions League: tactical matches with home advantage reduced by travel"
	default:
		return ""
	}
}

func betLine(record MatchRecord, rec Recommendation, label string) string {
	var pick string
	switch rec.Outcome {
	case HomeWin:
		pick = fmt.Sprintf("%s %s", record.HomeTeam, rec.Outcome.BetName())
	case AwayWin:
		pick = fmt.Sprintf("%s %s", record.AwayTeam, rec.Outcome.BetName())
	default:
		pick = rec.Outcome.BetName()
	}
	return fmt.Sprintf("🎯 %s %s | confidence %.1f%% (%s)", BetPrefix, pick, rec.Confidence*100, label)
}
