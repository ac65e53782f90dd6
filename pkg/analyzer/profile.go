package analyzer

import "fmt"

// LeagueProfile is the running tally learnt for one league. Counts only grow.
type LeagueProfile struct {
	League             LeagueID `json:"league"`
	TotalPredictions   int      `json:"totalPredictions"`
	CorrectPredictions int      `json:"correctPredictions"`
	DrawCount          int      `json:"drawCount"`
	GoalSum            int      `json:"goalSum"`
	SampleCount        int      `json:"sampleCount"`
}

// Accuracy is correct/total, 0 before any prediction has been scored
func (p LeagueProfile) Accuracy() float64 {
	if p.TotalPredictions == 0 {
		return 0
	}
	return float64(p.CorrectPredictions) / float64(p.TotalPredictions)
}

// DrawRate is draws/total, 0 before any prediction has been scored
func (p LeagueProfile) DrawRate() float64 {
	if p.TotalPredictions == 0 {
		return 0
	}
	return float64(p.DrawCount) / float64(p.TotalPredictions)
}

// AvgGoals is goals per sampled match, 0 with no samples
func (p LeagueProfile) AvgGoals() float64 {
	if p.SampleCount == 0 {
		return 0
	}
	return float64(p.GoalSum) / float64(p.SampleCount)
}

// Validate checks the count invariants
func (p LeagueProfile) Validate() error {
	if p.TotalPredictions < 0 || p.CorrectPredictions < 0 || p.DrawCount < 0 || p.GoalSum < 0 || p.SampleCount < 0 {
		return fmt.Errorf("%s profile has negative counts", p.League)
	}
	if p.CorrectPredictions > p.TotalPredictions {
		return fmt.Errorf("%s profile has %d correct out of %d", p.League, p.CorrectPredictions, p.TotalPredictions)
	}
	if p.DrawCount > p.TotalPredictions {
		return fmt.Errorf("%s profile has %d draws out of %d", p.League, p.DrawCount, p.TotalPredictions)
	}
	return nil
}

// ProfileDelta is an increment to a LeagueProfile
type ProfileDelta struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
	Draws   int `json:"draws"`
	Goals   int `json:"goals"`
	Samples int `json:"samples"`
}

func (d ProfileDelta) validate() error {
	if d.Total < 0 || d.Correct < 0 || d.Draws < 0 || d.Goals < 0 || d.Samples < 0 {
		return fmt.Errorf("profile delta cannot be negative: %+v", d)
	}
	if d.Correct > d.Total || d.Draws > d.Total {
		return fmt.Errorf("profile delta counts more correct or drawn matches than total: %+v", d)
	}
	return nil
}

// Apply returns p with d added
func (p LeagueProfile) Apply(d ProfileDelta) LeagueProfile {
	p.TotalPredictions += d.Total
	p.CorrectPredictions += d.Correct
	p.DrawCount += d.Draws
	p.GoalSum += d.Goals
	p.SampleCount += d.Samples
	return p
}

// emptyProfiles returns a zeroed profile for every league
func emptyProfiles() map[LeagueID]LeagueProfile {
	profiles := make(map[LeagueID]LeagueProfile, len(AllLeagues))
	for _, l := range AllLeagues {
		profiles[l] = LeagueProfile{League: l}
	}
	return profiles
}
