package analyzer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyLeagueFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want LeagueID
	}{
		{"https://www.forebet.com/en/football/matches/premier-league/arsenal-chelsea-1", PremierLeague},
		{"https://www.forebet.com/en/epl/arsenal-chelsea", PremierLeague},
		{"https://www.forebet.com/en/football/europa-conference-league/a-b-1", ConferenceLeague},
		{"https://www.forebet.com/en/football/conference-league/a-b-1", ConferenceLeague},
		{"https://www.forebet.com/en/football/champions-league/a-b-1", ChampionsLeague},
		{"https://www.forebet.com/en/ucl/a-b-1", ChampionsLeague},
		{"https://www.forebet.com/en/football/matches/europa-league/roma-lazio-1", EuropaLeague},
		{"https://www.forebet.com/en/football-tips/spain/a-b", LaLiga},
		{"https://www.forebet.com/en/predictions-germany/a-b", Bundesliga},
		{"https://www.forebet.com/en/Serie-A/a-b", SerieA},
		{"https://www.forebet.com/en/france/ligue-1/a-b", Ligue1},
		{"https://www.forebet.com/en/eplayer/stats", Other},
		{"https://www.forebet.com/en/football/matches/lions-tigers-1", Other},
		{"", Other},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyLeague(tt.url, ""))
		})
	}
}

func TestClassifyLeagueFromText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want LeagueID
	}{
		{"exact", "Serie A matchday 5", SerieA},
		{"breadcrumb", "Home > Football\n\nUEFA Europa League\n", EuropaLeague},
		{"conference before europa", "UEFA Europa Conference League", ConferenceLeague},
		{"misspelt heading", "## Premier Leage\n\nArsenal vs Chelsea", PremierLeague},
		{"misspelt short alias", "# Seria A", SerieA},
		{"too far from any alias", "Series", Other},
		{"second tier", "# Serie B", Other},
		{"third tier", "## Serie C\n\nPadova vs Vicenza", Other},
		{"ligue 2", "# Ligue 2", Other},
		{"menu lists every competition", "Premier League\nChampions League\nEuropa League\nConference League\n# Arsenal vs Chelsea", PremierLeague},
		{"europa ignored when conference is named", "UEFA Europa League\nConference League qualifiers", ConferenceLeague},
		{"nothing", "Lions vs Tigers", Other},
		{"empty", "", Other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyLeague("", tt.text))
		})
	}
}

func TestFuzzyAliasMatch(t *testing.T) {
	assert.True(t, fuzzyAliasMatch("seria a", "serie a"))
	assert.True(t, fuzzyAliasMatch("bundesliege", "bundesliga"))
	assert.False(t, fuzzyAliasMatch("serie b", "serie a"), "division marker must match exactly")
	assert.False(t, fuzzyAliasMatch("ligue 2", "ligue 1"))
	assert.False(t, fuzzyAliasMatch("", "serie a"))
}

func TestClassifyLeaguePrefersURL(t *testing.T) {
	got := ClassifyLeague("https://www.forebet.com/en/premier-league/a-b", "Serie A")
	assert.Equal(t, PremierLeague, got)
}

func TestLeagueKeys(t *testing.T) {
	seen := map[string]bool{}
	for _, l := range AllLeagues {
		key := l.Key()
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true

		parsed, err := ParseLeagueKey(key)
		require.NoError(t, err)
		assert.Equal(t, l, parsed)
		assert.NotEmpty(t, l.String())
	}

	_, err := ParseLeagueKey("mars_league")
	assert.Error(t, err)
	assert.Equal(t, "Other", LeagueID(99).String())
}

func TestLeagueIDText(t *testing.T) {
	data, err := json.Marshal(map[LeagueID]int{EuropaLeague: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"europa_league":3}`, string(data))

	var decoded map[LeagueID]int
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 3, decoded[EuropaLeague])

	var l LeagueID
	assert.Error(t, l.UnmarshalText([]byte("nope")))
}
