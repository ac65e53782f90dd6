package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResult(t *testing.T) {
	valid := []struct {
		input      string
		outcome    Outcome
		home, away int
	}{
		{"H 2-1", HomeWin, 2, 1},
		{"  D 0-0 ", Draw, 0, 0},
		{"A 0-3", AwayWin, 0, 3},
		{"H 10-2", HomeWin, 10, 2},
		{"D\t3-3", Draw, 3, 3},
		{"h 2-1", HomeWin, 2, 1},
		{"a 1-4", AwayWin, 1, 4},
	}
	for _, tt := range valid {
		t.Run(tt.input, func(t *testing.T) {
			outcome, home, away, err := ParseResult(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, outcome)
			assert.Equal(t, tt.home, home)
			assert.Equal(t, tt.away, away)
		})
	}

	invalid := []string{
		"",
		"Win 2-1",
		"H 2 - 1",
		"H2-1",
		"H 2-1 extra",
		"X 1-0",
		"H 1-1",
		"D 2-1",
		"A 3-0",
		"H 99999999999999999999-1",
	}
	for _, input := range invalid {
		t.Run("invalid "+input, func(t *testing.T) {
			_, _, _, err := ParseResult(input)
			var parseErr *ResultParseError
			require.True(t, errors.As(err, &parseErr), "expected ResultParseError for %q, got %v", input, err)
			assert.Equal(t, input, parseErr.Input)
		})
	}
}

func TestLearnWrongDrawCall(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	rec := Recommendation{League: PremierLeague, Outcome: Draw, GoalEstimate: 2.2}

	lo, err := Learn(ctx, nil, store, rec, "H 2-1")
	require.NoError(t, err)

	assert.False(t, lo.WasCorrect)
	assert.True(t, lo.Persisted)
	assert.Equal(t, HomeWin, lo.Actual)
	assert.Equal(t, ProfileDelta{Total: 1, Goals: 3, Samples: 1}, lo.Delta)
	assert.InDelta(t, 0.8, lo.GoalDelta, 1e-9)

	profile := store.Get(PremierLeague)
	assert.Equal(t, 1, profile.TotalPredictions)
	assert.Equal(t, 0, profile.CorrectPredictions)
	assert.Equal(t, 0, profile.DrawCount)
	assert.Equal(t, 3, profile.GoalSum)
	assert.Equal(t, 1, profile.SampleCount)
	assert.Equal(t, profile, lo.Profile)

	assert.Contains(t, lo.Summary(), LearningPrefix)
	assert.Contains(t, lo.Summary(), "WRONG")
	assert.NotContains(t, lo.Summary(), "NOT SAVED")
}

func TestLearnMalformedResultLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	before, err := store.Load(ctx)
	require.NoError(t, err)

	_, err = Learn(ctx, nil, store, Recommendation{League: EuropaLeague, Outcome: Draw}, "Win 2-1")

	var parseErr *ResultParseError
	require.ErrorAs(t, err, &parseErr)
	after, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLearnCorrectDraw(t *testing.T) {
	store := NewMemoryStore()
	rec := Recommendation{League: EuropaLeague, Outcome: Draw, GoalEstimate: 2.2, BothToScore: true}

	lo, err := Learn(context.Background(), nil, store, rec, "D 1-1")
	require.NoError(t, err)

	assert.True(t, lo.WasCorrect)
	assert.Equal(t, ProfileDelta{Total: 1, Correct: 1, Draws: 1, Goals: 2, Samples: 1}, lo.Delta)
	assert.True(t, lo.OverCorrect, "2 goals and a 2.2 estimate are both under")
	assert.True(t, lo.BothTeamsScored)
	assert.True(t, lo.BothScoreCorrect)
	assert.Contains(t, lo.Summary(), "CORRECT")
}

func TestLearnGoalMarkets(t *testing.T) {
	rec := Recommendation{League: SerieA, Outcome: HomeWin, GoalEstimate: 3.0, BothToScore: true}

	t.Run("over and both scored", func(t *testing.T) {
		lo, err := Learn(context.Background(), nil, NewMemoryStore(), rec, "H 2-1")
		require.NoError(t, err)
		assert.True(t, lo.OverCorrect)
		assert.True(t, lo.BothScoreCorrect)
	})

	t.Run("goalless draw", func(t *testing.T) {
		lo, err := Learn(context.Background(), nil, NewMemoryStore(), rec, "D 0-0")
		require.NoError(t, err)
		assert.False(t, lo.OverCorrect)
		assert.False(t, lo.BothTeamsScored)
		assert.False(t, lo.BothScoreCorrect)
		assert.Equal(t, 0, lo.TotalGoals())
	})
}

func TestLearnIsMonotonic(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	results := []string{"H 2-1", "D 0-0", "A 1-3", "D 2-2", "H 1-0"}
	rec := Recommendation{League: Ligue1, Outcome: Draw}

	prev := store.Get(Ligue1)
	for _, result := range results {
		lo, err := Learn(ctx, nil, store, rec, result)
		require.NoError(t, err)

		next := store.Get(Ligue1)
		assert.Equal(t, prev.TotalPredictions+1, next.TotalPredictions)
		assert.Equal(t, prev.SampleCount+1, next.SampleCount)
		assert.Equal(t, prev.GoalSum+lo.TotalGoals(), next.GoalSum)
		assert.GreaterOrEqual(t, next.CorrectPredictions, prev.CorrectPredictions)
		assert.GreaterOrEqual(t, next.DrawCount, prev.DrawCount)
		prev = next
	}

	assert.Equal(t, 2, prev.DrawCount)
	assert.Equal(t, 2, prev.CorrectPredictions)
	assert.InDelta(t, 0.4, prev.DrawRate(), 1e-9)
}

func TestLearnStoreFailureStillReports(t *testing.T) {
	store := newFailingStore()
	rec := Recommendation{League: Bundesliga, Outcome: HomeWin}

	lo, err := Learn(context.Background(), nil, store, rec, "H 3-0")

	var storeErr *StoreIOError
	require.ErrorAs(t, err, &storeErr)
	assert.True(t, lo.WasCorrect)
	assert.False(t, lo.Persisted)
	assert.Contains(t, lo.Summary(), LearningPrefix)
	assert.Contains(t, lo.Summary(), "NOT SAVED")
}
