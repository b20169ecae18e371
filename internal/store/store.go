// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/emorun/internal/emotion"
	"github.com/verte-zerg/emorun/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			run_uuid TEXT NOT NULL UNIQUE,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			classifier TEXT NOT NULL,
			active_ms INTEGER NOT NULL,
			penalty_ms INTEGER NOT NULL,
			total_ms INTEGER NOT NULL,
			hits INTEGER NOT NULL,
			misses INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_attempts (
			run_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			target TEXT NOT NULL,
			predicted TEXT NOT NULL,
			hit INTEGER NOT NULL,
			burst_ms INTEGER NOT NULL,
			text_len INTEGER NOT NULL,
			failure TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ended_at ON runs(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_run_attempts_target ON run_attempts(target);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a completed run and its attempts.
func (s *Store) InsertRun(ctx context.Context, run model.Run) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_uuid, started_at, ended_at, classifier, active_ms, penalty_ms, total_ms, hits, misses)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.Format(time.RFC3339Nano),
		run.EndedAt.Format(time.RFC3339Nano),
		run.Classifier,
		run.Active.Milliseconds(),
		run.Penalty.Milliseconds(),
		run.Total().Milliseconds(),
		run.Hits(),
		run.Misses(),
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(run.Attempts) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO run_attempts (run_id, seq, target, predicted, hit, burst_ms, text_len, failure)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, a := range run.Attempts {
			if _, err = stmt.ExecContext(ctx, id, a.Seq, string(a.Target), string(a.Predicted), a.Hit, a.Burst.Milliseconds(), a.TextLen, a.Failure); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRuns returns run aggregates filtered by stats config, oldest first.
func (s *Store) ListRuns(ctx context.Context, cfg model.StatsConfig) ([]model.RunAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Classifier != "" {
		clauses = append(clauses, "classifier = ?")
		args = append(args, cfg.Classifier)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, run_uuid, ended_at, classifier, active_ms, penalty_ms, total_ms, hits, misses
		FROM runs
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunAggregate
	for rows.Next() {
		agg, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// BestRun returns the fastest run, optionally restricted to one classifier.
func (s *Store) BestRun(ctx context.Context, classifier string) (model.RunAggregate, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, run_uuid, ended_at, classifier, active_ms, penalty_ms, total_ms, hits, misses
		 FROM runs
		 WHERE (? = '' OR classifier = ?)
		 ORDER BY total_ms ASC, ended_at ASC
		 LIMIT 1`, classifier, classifier)
	agg, err := scanRun(row)
	if err == sql.ErrNoRows {
		return model.RunAggregate{}, false, nil
	}
	if err != nil {
		return model.RunAggregate{}, false, err
	}
	return agg, true, nil
}

// ListEmotionAggregates aggregates attempts per target emotion across runs.
func (s *Store) ListEmotionAggregates(ctx context.Context, runIDs []int64) ([]model.EmotionAggregate, error) {
	if len(runIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(runIDs))
	args := make([]any, len(runIDs))
	for i, id := range runIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	in := strings.Join(placeholders, ",")
	query := fmt.Sprintf(`SELECT target, COUNT(*) AS attempts, SUM(hit) AS hits, SUM(burst_ms) AS burst_sum_ms
		FROM run_attempts
		WHERE run_id IN (%s)
		GROUP BY target`, in)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.EmotionAggregate
	for rows.Next() {
		var agg model.EmotionAggregate
		var target string
		if err := rows.Scan(&target, &agg.Attempts, &agg.Hits, &agg.BurstSumMs); err != nil {
			return nil, err
		}
		agg.Target = emotion.Kind(target)
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	confusions, err := s.topConfusions(ctx, in, args)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].TopConfusion = confusions[result[i].Target]
	}
	return result, nil
}

// topConfusions finds the most frequent wrong prediction per target.
func (s *Store) topConfusions(ctx context.Context, in string, args []any) (map[emotion.Kind]emotion.Kind, error) {
	query := fmt.Sprintf(`SELECT target, predicted, COUNT(*) AS n
		FROM run_attempts
		WHERE run_id IN (%s) AND hit = 0 AND predicted != ''
		GROUP BY target, predicted
		ORDER BY target ASC, n DESC, predicted ASC`, in)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := map[emotion.Kind]emotion.Kind{}
	for rows.Next() {
		var target, predicted string
		var n int
		if err := rows.Scan(&target, &predicted, &n); err != nil {
			return nil, err
		}
		if _, ok := result[emotion.Kind(target)]; ok {
			continue
		}
		result[emotion.Kind(target)] = emotion.Kind(predicted)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (model.RunAggregate, error) {
	var agg model.RunAggregate
	var endedAt string
	if err := row.Scan(&agg.RunID, &agg.UUID, &endedAt, &agg.Classifier, &agg.ActiveMs, &agg.PenaltyMs, &agg.TotalMs, &agg.Hits, &agg.Misses); err != nil {
		return model.RunAggregate{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, endedAt)
	if err != nil {
		return model.RunAggregate{}, err
	}
	agg.EndedAt = parsed
	return agg, nil
}
