package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// LearningPrefix marks the learning line in every report
const LearningPrefix = "Goal learning:"

var resultPattern = regexp.MustCompile(`^\s*([HDAhda])\s+(\d+)-(\d+)\s*$`)

// ParseResult reads an actual result such as "H 2-1" or "h 2-1". The letter
// has to agree with the score.
func ParseResult(text string) (Outcome, int, int, error) {
	m := resultPattern.FindStringSubmatch(text)
	if m == nil {
		return Draw, 0, 0, &ResultParseError{Input: text, Reason: "does not match {H|D|A} <home>-<away>"}
	}

	home, err := strconv.Atoi(m[2])
	if err != nil {
		return Draw, 0, 0, &ResultParseError{Input: text, Reason: "home goals out of range"}
	}
	away, err := strconv.Atoi(m[3])
	if err != nil {
		return Draw, 0, 0, &ResultParseError{Input: text, Reason: "away goals out of range"}
	}

	var outcome Outcome
	letter := strings.ToUpper(m[1])
	switch letter {
	case "H":
		outcome = HomeWin
	case "D":
		outcome = Draw
	default:
		outcome = AwayWin
	}

	if scoreOutcome(home, away) != outcome {
		return Draw, 0, 0, &ResultParseError{
			Input:  text,
			Reason: fmt.Sprintf("result letter %s disagrees with score %d-%d", letter, home, away),
		}
	}
	return outcome, home, away, nil
}

func scoreOutcome(home, away int) Outcome {
	switch {
	case home > away:
		return HomeWin
	case home < away:
		return AwayWin
	default:
		return Draw
	}
}

// Learn scores rec against the actual result and folds it into the league's
// profile. A malformed result leaves the store untouched. If the store write
// fails the outcome is still returned, with Persisted false, alongside the
// *StoreIOError.
func Learn(ctx context.Context, cfg *Config, store ProfileStore, rec Recommendation, actual string) (LearningOutcome, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	outcome, home, away, err := ParseResult(actual)
	if err != nil {
		return LearningOutcome{}, err
	}

	total := home + away
	lo := LearningOutcome{
		League:          rec.League,
		Predicted:       rec.Outcome,
		Actual:          outcome,
		WasCorrect:      rec.Outcome == outcome,
		HomeGoals:       home,
		AwayGoals:       away,
		GoalDelta:       float64(total) - rec.GoalEstimate,
		OverCorrect:     (float64(total) > cfg.GoalLine) == (rec.GoalEstimate > cfg.GoalLine),
		BothTeamsScored: home > 0 && away > 0,
	}
	lo.BothScoreCorrect = lo.BothTeamsScored == rec.BothToScore

	lo.Delta = ProfileDelta{Total: 1, Goals: total, Samples: 1}
	if lo.WasCorrect {
		lo.Delta.Correct = 1
	}
	if outcome == Draw {
		lo.Delta.Draws = 1
	}

	updated, err := store.Update(ctx, rec.League, lo.Delta)
	lo.Profile = updated
	if err != nil {
		return lo, err
	}
	lo.Persisted = true
	return lo, nil
}

func tick(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}

// Summary is the one line learning report. It always contains LearningPrefix.
func (l LearningOutcome) Summary() string {
	verdict := "❌ WRONG"
	if l.WasCorrect {
		verdict = "✅ CORRECT"
	}
	parts := []string{
		fmt.Sprintf("📚 %s %s", LearningPrefix, l.League),
		fmt.Sprintf("%s (predicted %s, actual %s %d-%d)", verdict, l.Predicted, l.Actual.Code(), l.HomeGoals, l.AwayGoals),
		fmt.Sprintf("O2.5: %s", tick(l.OverCorrect)),
		fmt.Sprintf("BTS: %s", tick(l.BothScoreCorrect)),
		fmt.Sprintf("draw rate %.1f%%", l.Profile.DrawRate()*100),
		fmt.Sprintf("avg goals %.2f", l.Profile.AvgGoals()),
		fmt.Sprintf("accuracy %.1f%% over %d", l.Profile.Accuracy()*100, l.Profile.TotalPredictions),
	}
	if !l.Persisted {
		parts = append(parts, "NOT SAVED")
	}
	return strings.Join(parts, " | ")
}
