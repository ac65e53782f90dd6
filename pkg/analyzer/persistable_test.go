package analyzer

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateProfileTableSQL(t *testing.T) {
	createSQL := generateCreateTableSQL(&profileRow{}, "league_profile")
	t.Log(createSQL)

	assert.Contains(t, createSQL, "CREATE TABLE IF NOT EXISTS league_profile (")
	assert.Contains(t, createSQL, "league TEXT NOT NULL")
	assert.Contains(t, createSQL, "goal_sum INTEGER DEFAULT 0")
	assert.Contains(t, createSQL, "PRIMARY KEY (league)")

	indexes := generateIndexSQL(&profileRow{}, "league_profile")
	assert.Equal(t, []string{"CREATE INDEX IF NOT EXISTS idx_league_profile_updated_at ON league_profile(updated_at)"}, indexes)
}

func TestBuildWhereClauseIsStable(t *testing.T) {
	clause, values := buildWhereClause(map[string]any{"season": 2024, "league": "serie_a"})
	assert.Equal(t, "league = ? AND season = ?", clause)
	assert.Equal(t, []any{"serie_a", 2024}, values)
}

func TestPersistableSaveInsertsThenUpdates(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	require.NoError(t, CreateTable(ctx, db, &profileRow{}))

	row := rowFromProfile(LeagueProfile{League: LaLiga, TotalPredictions: 2, DrawCount: 1, GoalSum: 5, SampleCount: 2})
	require.NoError(t, Save(ctx, db, row))
	assert.NotZero(t, row.UpdatedAt)

	exists, err := Exists(ctx, db, row)
	require.NoError(t, err)
	assert.True(t, exists)

	row.TotalPredictions = 3
	require.NoError(t, BulkSave(ctx, db, []Persistable{row}))

	rows, err := FindAll(ctx, db, &profileRow{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	loaded := rows[0].(*profileRow)
	assert.Equal(t, "la_liga", loaded.League)
	assert.Equal(t, 3, loaded.TotalPredictions)
	assert.Equal(t, 5, loaded.GoalSum)
}

func TestBulkSaveIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()
	require.NoError(t, CreateTable(ctx, db, &profileRow{}))

	objects := []Persistable{
		rowFromProfile(LeagueProfile{League: SerieA, TotalPredictions: 1}),
		&profileRow{}, // no league, rejected by BeforeSave
	}
	require.Error(t, BulkSave(ctx, db, objects))

	rows, err := FindAll(ctx, db, &profileRow{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}
