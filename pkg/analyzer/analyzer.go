package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/richard-senior/footy/internal/logger"
)

// Fetcher retrieves the raw content of a match page
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// Analyzer runs extraction, prediction and optional learning against an owned store
type Analyzer struct {
	cfg     *Config
	store   ProfileStore
	fetcher Fetcher
}

// New builds an Analyzer. fetcher may be nil if only Analyze is used.
func New(cfg *Config, store ProfileStore, fetcher Fetcher) (*Analyzer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("a profile store is required")
	}
	return &Analyzer{cfg: cfg, store: store, fetcher: fetcher}, nil
}

func (a *Analyzer) Config() *Config {
	return a.cfg
}

func (a *Analyzer) Store() ProfileStore {
	return a.store
}

// ValidateURL accepts only https match pages on a configured host
func (a *Analyzer) ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return &ExtractionError{Source: raw, Reason: "malformed url", Err: err}
	}
	if u.Scheme != "https" {
		return &ExtractionError{Source: raw, Reason: "only https urls are supported"}
	}
	if !slices.Contains(a.cfg.AllowedHosts, strings.ToLower(u.Hostname())) {
		return &ExtractionError{Source: raw, Reason: fmt.Sprintf("unsupported host %q", u.Hostname())}
	}
	return nil
}

// AnalyzeURL validates and fetches a match page, then analyzes it
func (a *Analyzer) AnalyzeURL(ctx context.Context, pageURL string, actual string) (*Report, error) {
	if a.fetcher == nil {
		return nil, fmt.Errorf("no fetcher configured")
	}
	pageURL = strings.TrimSpace(pageURL)
	if err := a.ValidateURL(pageURL); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.AnalysisTimeout)
	defer cancel()

	logger.Info("Fetching match page", pageURL)
	html, err := a.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, &ExtractionError{Source: pageURL, Reason: "fetch failed", Err: err}
	}
	return a.Analyze(ctx, PageSource{URL: pageURL, HTML: html}, actual)
}

// Analyze predicts the match in src and, when actual is non empty, learns from it.
//
// Extraction failures and an expired context return no report. A malformed
// result or a store failure still returns the report, together with the
// *ResultParseError or *StoreIOError.
func (a *Analyzer) Analyze(ctx context.Context, src PageSource, actual string) (*Report, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.AnalysisTimeout)
	defer cancel()

	record, err := Extract(src)
	if err != nil {
		logger.Warn("Extraction failed", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis abandoned: %w", err)
	}

	rec := Predict(a.cfg, record, a.store.Get(record.League))
	logger.Info("Prediction", record.HomeTeam, "vs", record.AwayTeam, rec.Outcome.String(), rec.Confidence)
	if rec.EmergencyDraw {
		logger.Highlight("Emergency draw override for", record.League.String())
	}

	if strings.TrimSpace(actual) == "" {
		return Format(a.cfg, record, rec, nil), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis abandoned before learning: %w", err)
	}

	learning, err := Learn(ctx, a.cfg, a.store, rec, actual)
	var parseErr *ResultParseError
	if errors.As(err, &parseErr) {
		logger.Warn("Result not learnt", err)
		return Format(a.cfg, record, rec, nil), err
	}
	if err != nil {
		logger.Error("Learning was not persisted", err)
		var storeErr *StoreIOError
		if !errors.As(err, &storeErr) {
			err = &StoreIOError{Op: "update", Err: err}
		}
		return Format(a.cfg, record, rec, &learning), err
	}

	logger.Inform(learning.Summary())
	return Format(a.cfg, record, rec, &learning), nil
}

// LeagueStat pairs what has been learnt about a league with its configured baseline
type LeagueStat struct {
	Profile  LeagueProfile  `json:"profile"`
	Baseline LeagueBaseline `json:"baseline"`
	Accuracy float64        `json:"accuracy"`
	DrawRate float64        `json:"drawRate"`
	AvgGoals float64        `json:"avgGoals"`
}

// LeagueStats reports every league from the current snapshot
func (a *Analyzer) LeagueStats() []LeagueStat {
	stats := make([]LeagueStat, 0, len(AllLeagues))
	for _, l := range AllLeagues {
		p := a.store.Get(l)
		stats = append(stats, LeagueStat{
			Profile:  p,
			Baseline: a.cfg.Baseline(l),
			Accuracy: p.Accuracy(),
			DrawRate: p.DrawRate(),
			AvgGoals: p.AvgGoals(),
		})
	}
	return stats
}
