package analyzer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	arsenalChelseaURL = "https://www.forebet.com/en/football/matches/arsenal-chelsea-123456"
	romaLazioURL      = "https://www.forebet.com/en/football/matches/europa-league/roma-lazio-98765"
	bayernURL         = "https://www.forebet.com/en/football/bundesliga/matches/bayern-munich-dortmund-555"
)

// percentPage is a match page carrying forebet style percentage cells
func percentPage(home, draw, away int) []byte {
	return []byte(fmt.Sprintf(`<html>
<head>
<title>Arsenal vs Chelsea Prediction, Betting Tips</title>
<link rel="canonical" href="%s">
</head>
<body>
<div class="breadcrumb">Premier League</div>
<h1 class="match-title">Arsenal vs Chelsea</h1>
<div class="fprc"><span>%d</span><span>%d</span><span>%d</span></div>
<div class="avg_sc">2.9</div>
</body>
</html>`, arsenalChelseaURL, home, draw, away))
}

// oddsPage has decimal odds and no usable team markup
func oddsPage() []byte {
	return []byte(`<html>
<head><title>Match preview</title></head>
<body>
<div class="haodd"><span>2.00</span><span>3.00</span><span>6.00</span></div>
</body>
</html>`)
}

// attributePage carries its odds as data attributes
func attributePage() []byte {
	return []byte(`<html>
<body>
<div class="teams"><span class="homeTeam">Bayern Munich</span> - <span class="awayTeam">Dortmund</span></div>
<div id="odds" data-odds-home="1.5" data-odds-draw="4.0" data-odds-away="6.0" data-expected-goals="3.1"></div>
</body>
</html>`)
}

// europaPage is an evenly matched Europa League fixture
func europaPage() PageSource {
	return PageSource{
		URL: romaLazioURL,
		HTML: []byte(`<html><body>
<h1 class="match-title">Roma vs Lazio</h1>
<div class="fprc"><span>40</span><span>30</span><span>30</span></div>
</body></html>`),
	}
}

func newTestRecord(t *testing.T, league LeagueID, home, draw, away float64) MatchRecord {
	t.Helper()
	r, err := NewMatchRecord("Home FC", "Away FC", league, home, draw, away)
	require.NoError(t, err)
	return r
}

// profileWithDrawRate builds a profile of 100 matches with the given draw rate
func profileWithDrawRate(league LeagueID, drawRate float64) LeagueProfile {
	return LeagueProfile{
		League:             league,
		TotalPredictions:   100,
		CorrectPredictions: 50,
		DrawCount:          int(drawRate*100 + 0.5),
		GoalSum:            250,
		SampleCount:        100,
	}
}

// failingStore reads like an empty store but can never write
type failingStore struct {
	*MemoryStore
}

func newFailingStore() *failingStore {
	return &failingStore{MemoryStore: NewMemoryStore()}
}

func (f *failingStore) Save(ctx context.Context, profiles map[LeagueID]LeagueProfile) error {
	return &StoreIOError{Op: "save", Err: fmt.Errorf("disk full")}
}

func (f *failingStore) Update(ctx context.Context, league LeagueID, delta ProfileDelta) (LeagueProfile, error) {
	return f.Get(league), &StoreIOError{Op: "update", Err: fmt.Errorf("disk full")}
}

// staticFetcher serves canned pages by url
type staticFetcher map[string][]byte

func (s staticFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, ok := s[pageURL]
	if !ok {
		return nil, fmt.Errorf("404 for %s", pageURL)
	}
	return page, nil
}
