package history

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/sentinel-stress/internal/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "history.db"),
		Name: "history",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	return NewRepository(db.Conn(), zerolog.Nop())
}

func sampleRun(id string, createdAt time.Time) Run {
	return Run{
		ID:                 id,
		PortfolioID:        "p1",
		PortfolioName:      "Balanced",
		ScenarioID:         "market_decline",
		ScenarioName:       "Market decline",
		PositionCount:      3,
		PortfolioValue:     65067.5,
		TotalImpact:        -6310.31,
		TotalImpactPercent: -9.6981,
		TablesVersion:      "2024.1",
		CreatedAt:          createdAt,
	}
}

func TestRepository_SaveAndGet(t *testing.T) {
	repo := setupTestRepo(t)
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	result := json.RawMessage(`{"total_impact":-6310.31}`)

	require.NoError(t, repo.Save(sampleRun("run-1", created), result))

	stored, err := repo.Get("run-1")
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, sampleRun("run-1", created), stored.Run)
	assert.JSONEq(t, string(result), string(stored.Result))
}

func TestRepository_GetMissing(t *testing.T) {
	repo := setupTestRepo(t)

	stored, err := repo.Get("nope")
	assert.NoError(t, err)
	assert.Nil(t, stored)
}

func TestRepository_SaveRequiresID(t *testing.T) {
	repo := setupTestRepo(t)
	assert.Error(t, repo.Save(Run{}, json.RawMessage(`{}`)))
}

func TestRepository_SaveDuplicateFails(t *testing.T) {
	repo := setupTestRepo(t)
	now := time.Now()

	require.NoError(t, repo.Save(sampleRun("dup", now), json.RawMessage(`{}`)))
	assert.Error(t, repo.Save(sampleRun("dup", now), json.RawMessage(`{}`)))
}

func TestRepository_ListNewestFirst(t *testing.T) {
	repo := setupTestRepo(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Save(sampleRun(id, base.Add(time.Duration(i)*time.Hour)), json.RawMessage(`{}`)))
	}

	runs, err := repo.List(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)

	all, err := repo.List(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRepository_ListEmpty(t *testing.T) {
	repo := setupTestRepo(t)

	runs, err := repo.List(10)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestRepository_SetArchiveKey(t *testing.T) {
	repo := setupTestRepo(t)
	require.NoError(t, repo.Save(sampleRun("run-1", time.Now()), json.RawMessage(`{}`)))

	require.NoError(t, repo.SetArchiveKey("run-1", "stress-runs/2024/06/01/run-1.json"))

	stored, err := repo.Get("run-1")
	require.NoError(t, err)
	assert.Equal(t, "stress-runs/2024/06/01/run-1.json", stored.ArchiveKey)

	assert.Error(t, repo.SetArchiveKey("missing", "x"))
}

func TestRepository_DeleteOlderThan(t *testing.T) {
	repo := setupTestRepo(t)
	now := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(sampleRun("old", now.AddDate(0, 0, -40)), json.RawMessage(`{}`)))
	require.NoError(t, repo.Save(sampleRun("recent", now.AddDate(0, 0, -5)), json.RawMessage(`{}`)))

	deleted, err := repo.DeleteOlderThan(now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	runs, err := repo.List(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "recent", runs[0].ID)
}
