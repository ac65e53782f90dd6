package analyzer

import "math"

// leagueTendency is the draw rate and scoring level a prediction leans on.
// Learnt values win once the league has samples; until then the configured
// baseline stands in.
type leagueTendency struct {
	drawRate     float64
	avgGoals     float64
	fromBaseline bool
}

func tendencyFor(cfg *Config, league LeagueID, profile LeagueProfile) leagueTendency {
	baseline := cfg.Baseline(league)
	t := leagueTendency{drawRate: baseline.DrawRate, avgGoals: baseline.Goals, fromBaseline: true}
	if profile.TotalPredictions > 0 {
		t.drawRate = profile.DrawRate()
		t.fromBaseline = false
	}
	if profile.SampleCount > 0 {
		t.avgGoals = profile.AvgGoals()
	}
	return t
}

// Predict blends the page's implied probabilities with the league's history
// and picks an outcome and goal market. It has no side effects.
func Predict(cfg *Config, record MatchRecord, profile LeagueProfile) Recommendation {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	t := tendencyFor(cfg, record.League, profile)
	home, draw, away := blend(cfg.BlendWeight, record, t.drawRate)

	rec := Recommendation{
		League:       record.League,
		HomeProb:     home,
		DrawProb:     draw,
		AwayProb:     away,
		GoalLine:     cfg.GoalLine,
		DrawRateUsed: t.drawRate,
		FromBaseline: t.fromBaseline,
	}

	if t.drawRate >= cfg.DrawEpidemicThreshold && leadOverRunnerUp(home, draw, away) < cfg.DecisiveMargin {
		rec.Outcome = Draw
		rec.Confidence = draw
		rec.EmergencyDraw = true
	} else {
		rec.Outcome, rec.Confidence = argmax(home, draw, away)
	}
	rec.Confidence = clamp01(rec.Confidence)

	estimate := t.avgGoals
	if record.ExpectedGoalsHint != nil {
		w := cfg.ExpectedGoalsHintWeight
		estimate = w*(*record.ExpectedGoalsHint) + (1-w)*t.avgGoals
	}
	rec.GoalEstimate = estimate
	rec.GoalMarket = goalMarket(estimate, cfg.GoalLine, cfg.GoalEpsilon)
	rec.HomeGoals = estimate * cfg.HomeGoalShare
	rec.AwayGoals = estimate - rec.HomeGoals
	rec.BothToScore = math.Min(rec.HomeGoals, rec.AwayGoals) > cfg.BothTeamsScoreGoals

	return rec
}

// blend computes p' = a*implied + (1-a)*prior where the draw prior is the
// league draw rate and the rest is split in the implied home:away ratio
func blend(alpha float64, r MatchRecord, drawRate float64) (float64, float64, float64) {
	homeShare := 0.5
	if decisive := r.ImpliedHome + r.ImpliedAway; decisive > 0 {
		homeShare = r.ImpliedHome / decisive
	}
	rest := 1 - drawRate
	priorHome := rest * homeShare
	priorAway := rest * (1 - homeShare)

	home := alpha*r.ImpliedHome + (1-alpha)*priorHome
	draw := alpha*r.ImpliedDraw + (1-alpha)*drawRate
	away := alpha*r.ImpliedAway + (1-alpha)*priorAway
	return home, draw, away
}

// argmax picks the most likely outcome. Ties go HomeWin, then Draw, then AwayWin.
func argmax(home, draw, away float64) (Outcome, float64) {
	best, p := HomeWin, home
	if draw > p {
		best, p = Draw, draw
	}
	if away > p {
		best, p = AwayWin, away
	}
	return best, p
}

// leadOverRunnerUp is how far the most likely outcome is ahead of the next one
func leadOverRunnerUp(home, draw, away float64) float64 {
	top, second := home, math.Inf(-1)
	for _, p := range []float64{draw, away} {
		switch {
		case p > top:
			top, second = p, top
		case p > second:
			second = p
		}
	}
	return top - second
}

func goalMarket(estimate, line, epsilon float64) GoalMarket {
	switch {
	case estimate > line+epsilon:
		return Over
	case estimate < line-epsilon:
		return Under
	default:
		return Unclear
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// ConfidenceLabel buckets a confidence into HIGH, MEDIUM or LOW
func ConfidenceLabel(cfg *Config, confidence float64) string {
	switch {
	case confidence >= cfg.HighConfidence:
		return "HIGH"
	case confidence >= cfg.MediumConfidence:
		return "MEDIUM"
	default:
		return "LOW"
	}
}
