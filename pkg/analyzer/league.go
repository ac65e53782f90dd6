package analyzer

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// LeagueID identifies one of the competitions we keep statistics for
type LeagueID int

const (
	Other LeagueID = iota
	PremierLeague
	ChampionsLeague
	EuropaLeague
	ConferenceLeague
	LaLiga
	Bundesliga
	SerieA
	Ligue1
)

// AllLeagues lists every LeagueID, Other included
var AllLeagues = []LeagueID{
	PremierLeague,
	ChampionsLeague,
	EuropaLeague,
	ConferenceLeague,
	LaLiga,
	Bundesliga,
	SerieA,
	Ligue1,
	Other,
}

var leagueNames = map[LeagueID]string{
	PremierLeague:    "Premier League",
	ChampionsLeague:  "Champions League",
	EuropaLeague:     "Europa League",
	ConferenceLeague: "Conference League",
	LaLiga:           "La Liga",
	Bundesliga:       "Bundesliga",
	SerieA:           "Serie A",
	Ligue1:           "Ligue 1",
	Other:            "Other",
}

// Key is the stable identifier used in the database and config files
func (l LeagueID) Key() string {
	switch l {
	case PremierLeague:
		return "premier_league"
	case ChampionsLeague:
		return "champions_league"
	case EuropaLeague:
		return "europa_league"
	case ConferenceLeague:
		return "conference_league"
	case LaLiga:
		return "la_liga"
	case Bundesliga:
		return "bundesliga"
	case SerieA:
		return "serie_a"
	case Ligue1:
		return "ligue_1"
	default:
		return "other"
	}
}

func (l LeagueID) String() string {
	if name, ok := leagueNames[l]; ok {
		return name
	}
	return leagueNames[Other]
}

// ParseLeagueKey is the inverse of LeagueID.Key
func ParseLeagueKey(key string) (LeagueID, error) {
	for _, l := range AllLeagues {
		if l.Key() == key {
			return l, nil
		}
	}
	return Other, fmt.Errorf("unknown league key %q", key)
}

func (l LeagueID) MarshalText() ([]byte, error) {
	return []byte(l.Key()), nil
}

func (l *LeagueID) UnmarshalText(b []byte) error {
	id, err := ParseLeagueKey(string(b))
	if err != nil {
		return err
	}
	*l = id
	return nil
}

// urlHint maps a URL fragment onto a league. Order matters: the conference
// league check has to run before anything that would also match its slug.
type urlHint struct {
	fragment string
	league   LeagueID
}

var urlHints = []urlHint{
	{"conference-league", ConferenceLeague},
	{"premier-league", PremierLeague},
	{"epl", PremierLeague},
	{"champions-league", ChampionsLeague},
	{"ucl", ChampionsLeague},
	{"europa-league", EuropaLeague},
	{"la-liga", LaLiga},
	{"laliga", LaLiga},
	{"spain", LaLiga},
	{"bundesliga", Bundesliga},
	{"germany", Bundesliga},
	{"serie-a", SerieA},
	{"italy", SerieA},
	{"ligue-1", Ligue1},
	{"france", Ligue1},
}

// textAlias is a league name searched for in page text. A page that also
// mentions unless does not count as a match.
type textAlias struct {
	name   string
	league LeagueID
	unless string
}

// textAliases are tried in order, so a forebet menu listing every
// competition resolves to the first league named here
var textAliases = []textAlias{
	{name: "premier league", league: PremierLeague},
	{name: "champions league", league: ChampionsLeague},
	{name: "europa league", league: EuropaLeague, unless: "conference"},
	{name: "conference league", league: ConferenceLeague},
	{name: "la liga", league: LaLiga},
	{name: "laliga", league: LaLiga},
	{name: "bundesliga", league: Bundesliga},
	{name: "serie a", league: SerieA},
	{name: "ligue 1", league: Ligue1},
}

func (a textAlias) excludedBy(text string) bool {
	return a.unless != "" && strings.Contains(text, a.unless)
}

// aliasTolerance is the edit distance tolerated when fuzzy matching a heading
// against a league alias ("Seria A", "Bundesliege" etc.). Short aliases get less slack.
func aliasTolerance(alias string) int {
	if len(alias) < 10 {
		return 1
	}
	return 2
}

// fuzzyAliasMatch reports whether a heading is a misspelling of alias. A
// trailing division marker such as the "a" in "serie a" must match exactly,
// otherwise "Serie B" would be one edit away from the top flight.
func fuzzyAliasMatch(line, alias string) bool {
	aliasWords := strings.Fields(alias)
	marker := aliasWords[len(aliasWords)-1]
	if len(marker) <= 2 {
		lineWords := strings.Fields(line)
		if len(lineWords) == 0 || lineWords[len(lineWords)-1] != marker {
			return false
		}
	}
	return levenshtein.ComputeDistance(line, alias) <= aliasTolerance(alias)
}

// ClassifyLeague works out which league a page belongs to, first from the URL
// and then from the page text. Anything unrecognised is Other.
func ClassifyLeague(url string, text string) LeagueID {
	if l, ok := leagueFromURL(url); ok {
		return l
	}
	if l, ok := leagueFromText(text); ok {
		return l
	}
	return Other
}

func leagueFromURL(url string) (LeagueID, bool) {
	u := strings.ToLower(url)
	if u == "" {
		return Other, false
	}
	segments := strings.FieldsFunc(u, func(r rune) bool {
		return r == '/' || r == '?' || r == '&' || r == '=' || r == '#'
	})
	for _, h := range urlHints {
		for _, seg := range segments {
			// short hints like "epl" and "ucl" only count as whole path segments
			if len(h.fragment) <= 3 {
				if seg == h.fragment {
					return h.league, true
				}
				continue
			}
			if strings.Contains(seg, h.fragment) {
				return h.league, true
			}
		}
	}
	return Other, false
}

func leagueFromText(text string) (LeagueID, bool) {
	t := strings.ToLower(text)
	if t == "" {
		return Other, false
	}
	for _, a := range textAliases {
		if strings.Contains(t, a.name) && !a.excludedBy(t) {
			return a.league, true
		}
	}
	// nothing exact, try each line as a possibly misspelt league heading
	for _, line := range strings.Split(t, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "#*_>[]() ")
		if line == "" || len(line) > 40 {
			continue
		}
		for _, a := range textAliases {
			if fuzzyAliasMatch(line, a.name) && !a.excludedBy(t) {
				return a.league, true
			}
		}
	}
	return Other, false
}
