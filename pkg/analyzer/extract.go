package analyzer

import (
	"bytes"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
	"github.com/richard-senior/footy/internal/logger"
)

// PageSource is fetched match page content plus where it came from
type PageSource struct {
	URL  string
	HTML []byte
}

var (
	teamClassPattern = regexp.MustCompile(`(?i)team|match|title`)
	versusPattern    = regexp.MustCompile(`(?i)^\s*(.+?)\s+(?:vs\.?|v)\s+(.+?)\s*$`)
	numberPattern    = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)
	matchIDPattern   = regexp.MustCompile(`^\d+$`)
)

// titleNoise marks where the team name stops in strings like
// "Chelsea Prediction, Betting Tips & Preview"
var titleNoise = []string{" | ", " - ", ",", " prediction", " betting", " tips", " preview", " h2h"}

// maxPageText bounds the markdown we search for league names
const maxPageText = 20000

// Extract turns fetched page content into a MatchRecord
func Extract(src PageSource) (MatchRecord, error) {
	source := src.URL
	if source == "" {
		source = "page"
	}
	if len(bytes.TrimSpace(src.HTML)) == 0 {
		return MatchRecord{}, &ExtractionError{Source: source, Reason: "empty page"}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(src.HTML))
	if err != nil {
		return MatchRecord{}, &ExtractionError{Source: source, Reason: "unparseable html", Err: err}
	}

	home, away, ok := extractTeams(doc, src.URL)
	if !ok {
		return MatchRecord{}, &ExtractionError{Source: source, Reason: "no identifiable team names"}
	}

	pHome, pDraw, pAway, ok := extractProbabilities(doc)
	if !ok {
		return MatchRecord{}, &ExtractionError{Source: source, Reason: "no usable probability or odds signal"}
	}

	league := ClassifyLeague(src.URL, pageText(src))

	record, err := NewMatchRecord(home, away, league, pHome, pDraw, pAway)
	if err != nil {
		return MatchRecord{}, &ExtractionError{Source: source, Reason: "invalid probabilities", Err: err}
	}
	record.SourceURL = src.URL

	if goals, ok := extractExpectedGoals(doc); ok {
		record = record.WithExpectedGoals(goals)
	}

	logger.Debug("Extracted match record", record)
	return record, nil
}

// pageText renders the page as markdown so headings and breadcrumbs survive
// as readable lines for league detection
func pageText(src PageSource) string {
	opts := []converter.ConvertOptionFunc{}
	if u, err := url.Parse(src.URL); err == nil && u.Host != "" {
		opts = append(opts, converter.WithDomain(u.Scheme+"://"+u.Host))
	}
	markdown, err := htmltomarkdown.ConvertString(string(src.HTML), opts...)
	if err != nil {
		logger.Warn("Failed to convert page to markdown", err)
		return ""
	}
	if len(markdown) > maxPageText {
		markdown = markdown[:maxPageText]
	}
	return markdown
}

func extractTeams(doc *goquery.Document, pageURL string) (string, string, bool) {
	// explicit home/away markup
	home := cleanTeam(doc.Find(".homeTeam").First().Text())
	away := cleanTeam(doc.Find(".awayTeam").First().Text())
	if home != "" && away != "" {
		return home, away, true
	}

	var found bool
	doc.Find("h1, h2, span").EachWithBreak(func(i int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if !teamClassPattern.MatchString(class) {
			return true
		}
		home, away, found = splitVersus(s.Text())
		return !found
	})
	if found {
		return home, away, true
	}

	if home, away, ok := splitVersus(doc.Find("title").First().Text()); ok {
		return home, away, true
	}

	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	for _, candidate := range []string{canonical, pageURL} {
		if home, away, ok := teamsFromSlug(candidate); ok {
			return home, away, true
		}
	}
	return "", "", false
}

// splitVersus splits "Arsenal vs Chelsea" style text into its two sides
func splitVersus(text string) (string, string, bool) {
	text = strings.Join(strings.Fields(text), " ")
	m := versusPattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	home, away := cleanTeam(m[1]), cleanTeam(m[2])
	if home == "" || away == "" {
		return "", "", false
	}
	return home, away, true
}

func cleanTeam(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	lower := strings.ToLower(name)
	cut := len(name)
	for _, noise := range titleNoise {
		if i := strings.Index(lower, noise); i >= 0 && i < cut {
			cut = i
		}
	}
	return strings.TrimSpace(name[:cut])
}

// teamsFromSlug reads ".../matches/arsenal-chelsea-123456". Without
// team markup we cannot tell where a multi word home name ends, so the
// last word is taken as the away side.
func teamsFromSlug(raw string) (string, string, bool) {
	if raw == "" {
		return "", "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", false
	}
	path := strings.Trim(u.Path, "/")
	idx := strings.Index(path, "matches/")
	if idx < 0 {
		return "", "", false
	}
	slug := path[idx+len("matches/"):]
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		slug = slug[i+1:]
	}

	words := strings.Split(slug, "-")
	if len(words) > 0 && matchIDPattern.MatchString(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	if len(words) < 2 {
		return "", "", false
	}
	return titleCase(words[:len(words)-1]), titleCase(words[len(words)-1:]), true
}

func titleCase(words []string) string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		out = append(out, string(unicode.ToUpper(r))+w[size:])
	}
	return strings.Join(out, " ")
}

// extractProbabilities tries percentages, then decimal odds cells, then data attributes
func extractProbabilities(doc *goquery.Document) (float64, float64, float64, bool) {
	if vals := cellNumbers(doc.Find("div.fprc").First().Find("span")); len(vals) >= 3 {
		if h, d, a, err := Normalise(vals[0], vals[1], vals[2]); err == nil {
			return h, d, a, true
		}
	}

	if vals := cellNumbers(doc.Find("div.haodd").First().Find("span")); len(vals) >= 3 {
		if h, d, a, err := ImpliedFromOdds(vals[0], vals[1], vals[2]); err == nil {
			return h, d, a, true
		}
	}

	sel := doc.Find("[data-odds-home]").First()
	if sel.Length() > 0 {
		vals := make([]float64, 0, 3)
		for _, attr := range []string{"data-odds-home", "data-odds-draw", "data-odds-away"} {
			raw, _ := sel.Attr(attr)
			if v, ok := parseNumber(raw); ok {
				vals = append(vals, v)
			}
		}
		if len(vals) == 3 {
			if h, d, a, err := ImpliedFromOdds(vals[0], vals[1], vals[2]); err == nil {
				return h, d, a, true
			}
		}
	}
	return 0, 0, 0, false
}

func cellNumbers(sel *goquery.Selection) []float64 {
	var vals []float64
	sel.Each(func(i int, s *goquery.Selection) {
		if v, ok := parseNumber(s.Text()); ok {
			vals = append(vals, v)
		}
	})
	return vals
}

// parseNumber pulls the first number out of text like "45%" or "2,10"
func parseNumber(text string) (float64, bool) {
	m := numberPattern.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func extractExpectedGoals(doc *goquery.Document) (float64, bool) {
	if raw, ok := doc.Find("[data-expected-goals]").First().Attr("data-expected-goals"); ok {
		if v, ok := parseNumber(raw); ok && v >= 0 {
			return v, true
		}
	}
	if v, ok := parseNumber(doc.Find("div.avg_sc").First().Text()); ok && v >= 0 {
		return v, true
	}
	return 0, false
}
