package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/richard-senior/footy/internal/logger"
	"github.com/richard-senior/footy/pkg/analyzer"
	"github.com/richard-senior/footy/pkg/server"
	"github.com/richard-senior/footy/pkg/tools"
	"github.com/richard-senior/footy/pkg/transport"
	"golang.org/x/sync/errgroup"
)

const usage = `usage: footy <command> [flags]

commands:
  analyze -url URL [-result "H 2-1"]   predict a match, optionally learning from its result
  batch -file FILE [-workers N]        analyze every "URL [RESULT]" line of FILE
  stats                                show what has been learnt per league
  serve                                run as an MCP server on stdin/stdout

common flags:
  -config FILE   yaml configuration
  -db PATH       league statistics database
  -log LEVEL     debug, info, warn or error
`

// commonFlags are accepted by every command
type commonFlags struct {
	config string
	db     string
	level  string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "config", "", "yaml configuration file")
	fs.StringVar(&c.db, "db", "", "league statistics database (overrides config)")
	fs.StringVar(&c.level, "log", "info", "log level")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "analyze":
		err = runAnalyze(os.Args[2:])
	case "batch":
		err = runBatch(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("footy failed:", err)
		os.Exit(1)
	}
}

// setup loads configuration, points logging at the right place and opens the store
func setup(c commonFlags, logOutput rune) (*analyzer.Config, *analyzer.SQLiteStore, error) {
	cfg, err := analyzer.LoadConfig(c.config)
	if err != nil {
		return nil, nil, err
	}
	if c.db != "" {
		cfg.DbPath = c.db
	}

	level, err := logger.ParseLevel(c.level)
	if err != nil {
		return nil, nil, err
	}
	logger.SetLevel(level)
	logger.SetShowDateTime(true)
	logger.SetLogFile(cfg.LogFile)
	if err := logger.SetLogOutput(logOutput); err != nil {
		return nil, nil, err
	}

	store, err := analyzer.OpenSQLiteStore(context.Background(), cfg.DbPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

func newAnalyzer(cfg *analyzer.Config, store analyzer.ProfileStore) (*analyzer.Analyzer, error) {
	fetcher := transport.NewHTMLFetcher(cfg.UserAgent, cfg.AnalysisTimeout)
	return analyzer.New(cfg, store, fetcher)
}

// printReport shows the report and says why learning did not happen, if it didn't
func printReport(report *analyzer.Report, err error) error {
	if report == nil {
		return err
	}
	fmt.Println(report.Text())

	var parseErr *analyzer.ResultParseError
	var storeErr *analyzer.StoreIOError
	switch {
	case errors.As(err, &parseErr):
		fmt.Fprintln(os.Stderr, "⚠️ result not learnt:", parseErr)
	case errors.As(err, &storeErr):
		fmt.Fprintln(os.Stderr, "⚠️ learning not saved:", storeErr)
	case err != nil:
		return err
	}
	return nil
}

func runAnalyze(args []string) error {
	var c commonFlags
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	c.register(fs)
	pageURL := fs.String("url", "", "forebet match page url")
	result := fs.String("result", "", `actual result, e.g. "H 2-1"`)
	alpha := fs.Float64("alpha", -1, "blend weight override")
	threshold := fs.Float64("draw-threshold", -1, "draw epidemic threshold override")
	margin := fs.Float64("margin", -1, "decisive margin override")
	line := fs.Float64("goal-line", -1, "goal line override")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pageURL == "" {
		return fmt.Errorf("-url is required")
	}

	cfg, store, err := setup(c, 'c')
	if err != nil {
		return err
	}
	defer store.Close()

	overrides := map[*float64]*float64{
		&cfg.BlendWeight:           alpha,
		&cfg.DrawEpidemicThreshold: threshold,
		&cfg.DecisiveMargin:        margin,
		&cfg.GoalLine:              line,
	}
	for field, v := range overrides {
		if *v >= 0 {
			*field = *v
		}
	}

	a, err := newAnalyzer(cfg, store)
	if err != nil {
		return err
	}
	return printReport(a.AnalyzeURL(context.Background(), *pageURL, *result))
}

// batchJob is one line of a batch file
type batchJob struct {
	line   int
	url    string
	result string
}

func readBatch(path string) ([]batchJob, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer f.Close()

	var jobs []batchJob
	scanner := bufio.NewScanner(f)
	n := 0
	for scanner.Scan() {
		n++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		url, result, _ := strings.Cut(text, " ")
		jobs = append(jobs, batchJob{line: n, url: url, result: strings.TrimSpace(result)})
	}
	return jobs, scanner.Err()
}

func runBatch(args []string) error {
	var c commonFlags
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	c.register(fs)
	file := fs.String("file", "", "file of \"URL [RESULT]\" lines")
	workers := fs.Int("workers", 4, "concurrent analyses")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	cfg, store, err := setup(c, 'c')
	if err != nil {
		return err
	}
	defer store.Close()

	a, err := newAnalyzer(cfg, store)
	if err != nil {
		return err
	}

	jobs, err := readBatch(*file)
	if err != nil {
		return err
	}

	reports := make([]*analyzer.Report, len(jobs))
	failures := make([]error, len(jobs))

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(max(1, *workers))
	for i, job := range jobs {
		g.Go(func() error {
			report, err := a.AnalyzeURL(ctx, job.url, job.result)
			reports[i] = report
			if err != nil {
				failures[i] = fmt.Errorf("line %d: %w", job.line, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i := range jobs {
		if reports[i] != nil {
			fmt.Println(reports[i].Text())
			fmt.Println()
		}
		if failures[i] != nil {
			failed++
			fmt.Fprintln(os.Stderr, "⚠️", failures[i])
		}
	}
	logger.Info("Batch complete", len(jobs), "matches", failed, "with errors")
	return nil
}

func runStats(args []string) error {
	var c commonFlags
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	c.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, store, err := setup(c, 'c')
	if err != nil {
		return err
	}
	defer store.Close()

	a, err := analyzer.New(cfg, store, nil)
	if err != nil {
		return err
	}

	fmt.Print(tools.FormatLeagueTable(a.LeagueStats()))
	if info, err := os.Stat(store.Path()); err == nil {
		fmt.Printf("\n%s (%s, updated %s)\n", store.Path(), humanize.Bytes(uint64(info.Size())), humanize.Time(info.ModTime()))
	}
	return nil
}

func runServe(args []string) error {
	var c commonFlags
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	c.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	// stdout is the JSON-RPC channel so logs go to file only
	cfg, store, err := setup(c, 'f')
	if err != nil {
		return err
	}
	defer store.Close()

	a, err := newAnalyzer(cfg, store)
	if err != nil {
		return err
	}

	logger.Info("Starting footy MCP server")
	s := server.New(transport.NewStdioTransport(), a)
	if err := s.Start(); err != nil {
		return err
	}
	logger.Info("MCP server shutting down")
	return nil
}
