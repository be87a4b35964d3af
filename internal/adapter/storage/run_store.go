// internal/adapter/storage/run_store.go

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"reelscope/internal/domain/insight"
)

// RunStore implements storage for analysis runs and their result documents
type RunStore struct {
	db *pgxpool.Pool
}

// NewRunStore creates a new run store
func NewRunStore(db *pgxpool.Pool) *RunStore {
	return &RunStore{
		db: db,
	}
}

// SaveRun inserts or updates a run
func (s *RunStore) SaveRun(ctx context.Context, run *insight.Run) error {
	query := `
		INSERT INTO analysis_runs (
			id, status, options, platform, competitors,
			total_reels, error, created_at, started_at, finished_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10
		)
		ON CONFLICT (id) DO UPDATE
		SET
			status = $2,
			options = $3,
			platform = $4,
			competitors = $5,
			total_reels = $6,
			error = $7,
			started_at = $9,
			finished_at = $10
	`

	optionsJSON, err := json.Marshal(run.Options)
	if err != nil {
		return fmt.Errorf("error marshaling options: %w", err)
	}

	_, err = s.db.Exec(
		ctx,
		query,
		run.ID,
		string(run.Status),
		optionsJSON,
		run.Platform,
		run.Competitors,
		run.TotalReels,
		run.Error,
		run.CreatedAt,
		run.StartedAt,
		run.FinishedAt,
	)

	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID
func (s *RunStore) GetRun(ctx context.Context, id string) (*insight.Run, error) {
	query := `
		SELECT
			id, status, options, platform, competitors,
			total_reels, error, created_at, started_at, finished_at
		FROM analysis_runs
		WHERE id = $1
	`

	run, err := scanRun(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, insight.ErrRunNotFound
		}
		return nil, fmt.Errorf("error querying run: %w", err)
	}

	return run, nil
}

// ListRuns retrieves recent runs, newest first
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]insight.Run, error) {
	query := `
		SELECT
			id, status, options, platform, competitors,
			total_reels, error, created_at, started_at, finished_at
		FROM analysis_runs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var runs []insight.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning run: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// SaveResult inserts or updates the result document of a run
func (s *RunStore) SaveResult(ctx context.Context, runID string, doc insight.ResultDocument) error {
	query := `
		INSERT INTO analysis_results (run_id, document, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (run_id) DO UPDATE
		SET
			document = $2,
			created_at = NOW()
	`

	documentJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error marshaling document: %w", err)
	}

	if _, err := s.db.Exec(ctx, query, runID, documentJSON); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// GetResult retrieves the result document of a run
func (s *RunStore) GetResult(ctx context.Context, runID string) (*insight.ResultDocument, error) {
	query := `
		SELECT document
		FROM analysis_results
		WHERE run_id = $1
	`

	var documentJSON []byte
	err := s.db.QueryRow(ctx, query, runID).Scan(&documentJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, insight.ErrResultNotFound
		}
		return nil, fmt.Errorf("error querying result: %w", err)
	}

	var doc insight.ResultDocument
	if err := json.Unmarshal(documentJSON, &doc); err != nil {
		return nil, fmt.Errorf("error unmarshaling document: %w", err)
	}

	return &doc, nil
}

// scanRun reads one run row
func scanRun(row pgx.Row) (*insight.Run, error) {
	var run insight.Run
	var status string
	var optionsJSON []byte

	err := row.Scan(
		&run.ID,
		&status,
		&optionsJSON,
		&run.Platform,
		&run.Competitors,
		&run.TotalReels,
		&run.Error,
		&run.CreatedAt,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Status = insight.RunStatus(status)

	if err := json.Unmarshal(optionsJSON, &run.Options); err != nil {
		return nil, fmt.Errorf("error unmarshaling options: %w", err)
	}

	return &run, nil
}
