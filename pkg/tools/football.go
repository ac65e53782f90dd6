package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/richard-senior/footy/internal/logger"
	"github.com/richard-senior/footy/pkg/analyzer"
	"github.com/richard-senior/footy/pkg/protocol"
)

func FootballAnalyzeTool() protocol.Tool {
	return protocol.Tool{
		Name: "football_analyze",
		Description: `
		Predicts the result of a football match from its forebet.com match page.
		Returns the recommended bet (home win, draw or away win) with a confidence, an over/under 2.5 goals call
		and a both teams to score call. League statistics are used to calibrate the prediction.
		If the match has already been played, pass the actual result and the prediction will be scored
		and learnt from so later predictions in the same league improve.
		`,
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"url": {
					Type:        "string",
					Description: "The https://www.forebet.com/... match page url",
				},
				"result": {
					Type:        "string",
					Description: "Optional actual result, a letter then the score: 'H 2-1' (home win), 'D 1-1' (draw) or 'A 0-3' (away win)",
				},
			},
			Required: []string{"url"},
		},
	}
}

// NewFootballAnalyzeHandler binds the analyze tool to an analyzer
func NewFootballAnalyzeHandler(a *analyzer.Analyzer) func(params any) (any, error) {
	return func(params any) (any, error) {
		if params == nil {
			return nil, fmt.Errorf("no params given")
		}
		paramsMap, ok := params.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("couldn't format the parameters as a map of strings")
		}
		url, ok := paramsMap["url"].(string)
		if !ok || strings.TrimSpace(url) == "" {
			return nil, fmt.Errorf("no url parameter was sent")
		}
		result, _ := paramsMap["result"].(string)

		logger.Info("football_analyze", url, result)

		report, err := a.AnalyzeURL(context.Background(), url, result)
		if report == nil {
			return nil, err
		}

		text := report.Text()
		if err != nil {
			// the prediction stands, tell the caller what did not happen
			text += "\n⚠️ " + err.Error()
		}
		return protocol.NewTextToolResult(text, report), nil
	}
}

func LeagueStatsTool() protocol.Tool {
	return protocol.Tool{
		Name: "league_stats",
		Description: `
		Lists what has been learnt about each supported football league: predictions scored, accuracy,
		draw rate and average goals per match, alongside the baseline draw rate and goals used while a league has no results yet.
		`,
		InputSchema: protocol.InputSchema{
			Type:       "object",
			Properties: map[string]protocol.ToolProperty{},
			Required:   []string{},
		},
	}
}

// NewLeagueStatsHandler binds the stats tool to an analyzer
func NewLeagueStatsHandler(a *analyzer.Analyzer) func(params any) (any, error) {
	return func(params any) (any, error) {
		stats := a.LeagueStats()
		return protocol.NewTextToolResult(FormatLeagueTable(stats), stats), nil
	}
}

// FormatLeagueTable renders league statistics as a fixed width table
func FormatLeagueTable(stats []analyzer.LeagueStat) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-18s %6s %8s %9s %9s %12s %11s\n", "League", "Games", "Accuracy", "DrawRate", "AvgGoals", "BaseDrawRate", "BaseGoals")
	for _, s := range stats {
		fmt.Fprintf(&b, "%-18s %6d %7.1f%% %8.1f%% %9.2f %11.1f%% %11.2f\n",
			s.Profile.League, s.Profile.TotalPredictions, s.Accuracy*100, s.DrawRate*100, s.AvgGoals,
			s.Baseline.DrawRate*100, s.Baseline.Goals)
	}
	return b.String()
}
