// Package history persists completed stress runs for later retrieval.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Run is the summary of a stored stress run
type Run struct {
	ID                 string    `json:"id"`
	PortfolioID        string    `json:"portfolio_id,omitempty"`
	PortfolioName      string    `json:"portfolio_name,omitempty"`
	ScenarioID         string    `json:"scenario_id,omitempty"`
	ScenarioName       string    `json:"scenario_name,omitempty"`
	PositionCount      int       `json:"position_count"`
	PortfolioValue     float64   `json:"portfolio_value"`
	TotalImpact        float64   `json:"total_impact"`
	TotalImpactPercent float64   `json:"total_impact_percent"`
	TablesVersion      string    `json:"tables_version"`
	ArchiveKey         string    `json:"archive_key,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// StoredRun is a run summary together with its full JSON result
type StoredRun struct {
	Run
	Result json.RawMessage `json:"result"`
}

// RepositoryInterface is what the HTTP layer and jobs need from run storage
type RepositoryInterface interface {
	Save(run Run, result json.RawMessage) error
	Get(id string) (*StoredRun, error)
	List(limit int) ([]Run, error)
	SetArchiveKey(id, key string) error
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

// Repository stores runs in the history database
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a run history repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "stress_runs").Logger(),
	}
}

// DefaultListLimit caps List when no positive limit is given
const DefaultListLimit = 50

const runColumns = `id, portfolio_id, portfolio_name, scenario_id, scenario_name, position_count,
	portfolio_value, total_impact, total_impact_percent, tables_version, archive_key, created_at`

// Save inserts a run
func (r *Repository) Save(run Run, result json.RawMessage) error {
	if run.ID == "" {
		return fmt.Errorf("run id is required")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(`
		INSERT INTO stress_runs (`+runColumns+`, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.PortfolioID,
		run.PortfolioName,
		run.ScenarioID,
		run.ScenarioName,
		run.PositionCount,
		run.PortfolioValue,
		run.TotalImpact,
		run.TotalImpactPercent,
		run.TablesVersion,
		run.ArchiveKey,
		run.CreatedAt.Unix(),
		string(result),
	)
	if err != nil {
		return fmt.Errorf("failed to save stress run %s: %w", run.ID, err)
	}

	r.log.Debug().Str("run_id", run.ID).Msg("Stress run saved")
	return nil
}

// Get returns a stored run, nil when it does not exist
func (r *Repository) Get(id string) (*StoredRun, error) {
	row := r.db.QueryRow(`SELECT `+runColumns+`, result_json FROM stress_runs WHERE id = ?`, id)

	var stored StoredRun
	var result string
	run, err := scanRun(row, &result)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stress run %s: %w", id, err)
	}

	stored.Run = run
	stored.Result = json.RawMessage(result)
	return &stored, nil
}

// List returns the most recent runs, newest first
func (r *Repository) List(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.Query(`SELECT `+runColumns+` FROM stress_runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stress runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stress run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stress runs: %w", err)
	}
	return runs, nil
}

// SetArchiveKey records where a run's report was archived
func (r *Repository) SetArchiveKey(id, key string) error {
	res, err := r.db.Exec(`UPDATE stress_runs SET archive_key = ? WHERE id = ?`, key, id)
	if err != nil {
		return fmt.Errorf("failed to set archive key for %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("stress run %s not found", id)
	}
	return nil
}

// DeleteOlderThan removes runs created before the cutoff and returns how many were removed
func (r *Repository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM stress_runs WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old stress runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted stress runs: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner, extra ...interface{}) (Run, error) {
	var run Run
	var createdAtUnix int64
	dest := []interface{}{
		&run.ID,
		&run.PortfolioID,
		&run.PortfolioName,
		&run.ScenarioID,
		&run.ScenarioName,
		&run.PositionCount,
		&run.PortfolioValue,
		&run.TotalImpact,
		&run.TotalImpactPercent,
		&run.TablesVersion,
		&run.ArchiveKey,
		&createdAtUnix,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return Run{}, err
	}
	run.CreatedAt = time.Unix(createdAtUnix, 0).UTC()
	return run, nil
}
