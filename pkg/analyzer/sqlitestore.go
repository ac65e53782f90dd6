package analyzer

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/richard-senior/footy/internal/logger"
	_ "modernc.org/sqlite"
)

// profileRow is the league_profile table, one row per league
type profileRow struct {
	League             string `json:"league" column:"league" dbtype:"TEXT NOT NULL" primary:"true"`
	TotalPredictions   int    `json:"totalPredictions" column:"total_predictions" dbtype:"INTEGER DEFAULT 0"`
	CorrectPredictions int    `json:"correctPredictions" column:"correct_predictions" dbtype:"INTEGER DEFAULT 0"`
	DrawCount          int    `json:"drawCount" column:"draw_count" dbtype:"INTEGER DEFAULT 0"`
	GoalSum            int    `json:"goalSum" column:"goal_sum" dbtype:"INTEGER DEFAULT 0"`
	SampleCount        int    `json:"sampleCount" column:"sample_count" dbtype:"INTEGER DEFAULT 0"`
	UpdatedAt          int64  `json:"updatedAt" column:"updated_at" dbtype:"INTEGER DEFAULT 0" index:"true"`
}

var _ Persistable = (*profileRow)(nil)

func (r *profileRow) GetTableName() string {
	return "league_profile"
}

func (r *profileRow) GetPrimaryKey() map[string]any {
	return map[string]any{"league": r.League}
}

func (r *profileRow) BeforeSave() error {
	if r.League == "" {
		return fmt.Errorf("league profile row has no league")
	}
	r.UpdatedAt = time.Now().Unix()
	return nil
}

func (r *profileRow) AfterSave() error {
	return nil
}

func rowFromProfile(p LeagueProfile) *profileRow {
	return &profileRow{
		League:             p.League.Key(),
		TotalPredictions:   p.TotalPredictions,
		CorrectPredictions: p.CorrectPredictions,
		DrawCount:          p.DrawCount,
		GoalSum:            p.GoalSum,
		SampleCount:        p.SampleCount,
	}
}

func (r *profileRow) profile() (LeagueProfile, error) {
	league, err := ParseLeagueKey(r.League)
	if err != nil {
		return LeagueProfile{}, err
	}
	return LeagueProfile{
		League:             league,
		TotalPredictions:   r.TotalPredictions,
		CorrectPredictions: r.CorrectPredictions,
		DrawCount:          r.DrawCount,
		GoalSum:            r.GoalSum,
		SampleCount:        r.SampleCount,
	}, nil
}

// SQLiteStore persists league profiles to a sqlite database and serves reads
// from an in memory snapshot of the last committed state
type SQLiteStore struct {
	db    *sql.DB
	path  string
	cache profileCache
}

var _ ProfileStore = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (creating if needed) the database at path and loads it.
// ":memory:" gives a private in memory database.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, &StoreIOError{Op: "open", Err: fmt.Errorf("failed to create database directory: %w", err)}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StoreIOError{Op: "open", Err: fmt.Errorf("failed to open database: %w", err)}
	}
	// a single connection keeps ":memory:" databases coherent and writes ordered
	db.SetMaxOpenConns(1)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &StoreIOError{Op: "open", Err: fmt.Errorf("failed to ping database: %w", err)}
	}

	if err = CreateTable(ctx, db, &profileRow{}); err != nil {
		db.Close()
		return nil, &StoreIOError{Op: "open", Err: err}
	}

	s := &SQLiteStore{db: db, path: path}
	s.cache.init()
	if _, err := s.Load(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("League profile database ready", path)
	return s, nil
}

// Load reads every row, refreshes the in memory snapshot and returns it
func (s *SQLiteStore) Load(ctx context.Context) (map[LeagueID]LeagueProfile, error) {
	rows, err := FindAll(ctx, s.db, &profileRow{})
	if err != nil {
		return nil, &StoreIOError{Op: "load", Err: err}
	}

	profiles := emptyProfiles()
	for _, r := range rows {
		row, ok := r.(*profileRow)
		if !ok {
			continue
		}
		p, err := row.profile()
		if err != nil {
			logger.Warn("Skipping unknown league in database", row.League)
			continue
		}
		profiles[p.League] = p
	}

	s.cache.mu.Lock()
	s.cache.swap(profiles)
	s.cache.mu.Unlock()

	return s.cache.all(), nil
}

// Save writes every given profile in one transaction. On failure nothing is
// written and the snapshot is left as it was.
func (s *SQLiteStore) Save(ctx context.Context, profiles map[LeagueID]LeagueProfile) error {
	full := copyProfiles(profiles)
	objects := make([]Persistable, 0, len(full))
	for _, l := range AllLeagues {
		p := full[l]
		if err := p.Validate(); err != nil {
			return &StoreIOError{Op: "save", Err: err}
		}
		objects = append(objects, rowFromProfile(p))
	}

	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()

	if err := BulkSave(ctx, s.db, objects); err != nil {
		return &StoreIOError{Op: "save", Err: err}
	}
	s.cache.swap(full)
	return nil
}

func (s *SQLiteStore) Get(league LeagueID) LeagueProfile {
	return s.cache.get(league)
}

// Update adds delta to one league and commits it before the snapshot moves on
func (s *SQLiteStore) Update(ctx context.Context, league LeagueID, delta ProfileDelta) (LeagueProfile, error) {
	if err := delta.validate(); err != nil {
		return s.Get(league), &StoreIOError{Op: "update", Err: err}
	}

	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()

	profiles := s.cache.all()
	updated := profiles[league].Apply(delta)

	if err := BulkSave(ctx, s.db, []Persistable{rowFromProfile(updated)}); err != nil {
		return profiles[league], &StoreIOError{Op: "update", Err: err}
	}

	profiles[league] = updated
	s.cache.swap(profiles)
	return updated, nil
}

// Path is where the database lives
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
