package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/beadinspect/internal/config"
	"github.com/JonMunkholm/beadinspect/internal/core"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS validation_runs (
    id                     UUID PRIMARY KEY,
    stamp                  TEXT NOT NULL,
    started_at             TIMESTAMPTZ NOT NULL,
    data_dir               TEXT NOT NULL,
    results_dir            TEXT NOT NULL,
    formats                TEXT[] NOT NULL,
    single_error_log_limit INTEGER NOT NULL,
    issue_count            INTEGER NOT NULL,
    stats                  JSONB NOT NULL,
    created_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS validation_runs_stamp_idx ON validation_runs (stamp);

CREATE TABLE IF NOT EXISTS validation_issues (
    run_id           UUID NOT NULL REFERENCES validation_runs (id) ON DELETE CASCADE,
    position         INTEGER NOT NULL,
    data_format      TEXT NOT NULL,
    issue_type       TEXT NOT NULL,
    issue_level      TEXT NOT NULL,
    issue_sort_order INTEGER NOT NULL,
    details          JSONB NOT NULL,
    PRIMARY KEY (run_id, position)
);
`

// OpenPool connects to Postgres with the configured pool sizing and verifies
// the connection.
func OpenPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Postgres stores runs and their issues for browsing.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a run store on an open pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Name() string { return "postgres" }

// Migrate creates the run tables if they do not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate run store: %w", err)
	}
	return nil
}

// Prepare names the row the run will be stored under.
func (p *Postgres) Prepare(run *core.Run) (string, error) {
	return "validation_runs/" + run.ID.String(), nil
}

// Write inserts the run and copies its issues in one transaction.
func (p *Postgres) Write(ctx context.Context, run *core.Run) error {
	stats, err := json.Marshal(run.Stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}

	details := make([]json.RawMessage, len(run.Issues))
	for i, issue := range run.Issues {
		b, err := json.Marshal(issue.Details)
		if err != nil {
			return fmt.Errorf("encode issue %d details: %w", i, err)
		}
		details[i] = b
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	_, err = tx.Exec(ctx, `
		INSERT INTO validation_runs
		    (id, stamp, started_at, data_dir, results_dir, formats, single_error_log_limit, issue_count, stats)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.ID, run.Stamp, run.StartedAt, run.DataDir, run.ResultsDir,
		run.Formats, run.SingleErrorLogLimit, len(run.Issues), json.RawMessage(stats),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"validation_issues"},
		[]string{"run_id", "position", "data_format", "issue_type", "issue_level", "issue_sort_order", "details"},
		pgx.CopyFromSlice(len(run.Issues), func(i int) ([]any, error) {
			issue := run.Issues[i]
			return []any{
				run.ID, i, issue.DataFormat, string(issue.Type), string(issue.Level), issue.SortOrder, details[i],
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy issues: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RunRecord is a stored run without its issues.
type RunRecord struct {
	ID         uuid.UUID `json:"id"`
	Stamp      string    `json:"stamp"`
	StartedAt  time.Time `json:"started_at"`
	DataDir    string    `json:"data_dir"`
	ResultsDir string    `json:"results_dir"`
	Formats    []string  `json:"formats"`
	IssueCount int       `json:"issue_count"`
}

// ListRuns returns up to limit stored runs, newest first.
func (p *Postgres) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, stamp, started_at, data_dir, results_dir, formats, issue_count
		FROM validation_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunRecord, 0)
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Stamp, &r.StartedAt, &r.DataDir, &r.ResultsDir, &r.Formats, &r.IssueCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// RunIssues returns the issues of the latest stored run with this stamp, in
// their logged order.
func (p *Postgres) RunIssues(ctx context.Context, stamp string) ([]core.Issue, error) {
	var runID uuid.UUID
	err := p.pool.QueryRow(ctx, `
		SELECT id FROM validation_runs
		WHERE stamp = $1
		ORDER BY started_at DESC
		LIMIT 1`, stamp).Scan(&runID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, stamp)
	}
	if err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}

	rows, err := p.pool.Query(ctx, `
		SELECT data_format, issue_type, issue_level, issue_sort_order, details
		FROM validation_issues
		WHERE run_id = $1
		ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query issues: %w", err)
	}
	defer rows.Close()

	issues := make([]core.Issue, 0)
	for rows.Next() {
		var rec storedIssue
		if err := rows.Scan(&rec.DataFormat, &rec.Type, &rec.Level, &rec.SortOrder, &rec.Details); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issue, err := rec.decode()
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query issues: %w", err)
	}
	return issues, nil
}

// storedIssue mirrors the issue JSON shape so Issue.UnmarshalJSON can pick
// the details struct.
type storedIssue struct {
	DataFormat string          `json:"data_format"`
	Type       string          `json:"issue_type"`
	Level      string          `json:"issue_level"`
	SortOrder  int             `json:"issue_sort_order"`
	Details    json.RawMessage `json:"issue_details"`
}

func (s storedIssue) decode() (core.Issue, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return core.Issue{}, err
	}
	var issue core.Issue
	if err := json.Unmarshal(b, &issue); err != nil {
		return core.Issue{}, fmt.Errorf("decode stored issue: %w", err)
	}
	return issue, nil
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}
