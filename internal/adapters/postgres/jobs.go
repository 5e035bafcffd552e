package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ownership/internal/domain"
	"ownership/internal/platform/id"
	"ownership/internal/ports"
)

// ClaimNext selects the oldest queued job using SKIP LOCKED and marks it running.
func (db *DB) ClaimNext(ctx context.Context) (job domain.Job, found bool, err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return job, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	var jobID uuid.UUID
	err = tx.QueryRow(ctx, `
        SELECT id FROM jobs
        WHERE status = 'queued'
        ORDER BY created_at
        FOR UPDATE SKIP LOCKED
        LIMIT 1
    `).Scan(&jobID)
	if errors.Is(err, pgx.ErrNoRows) {
		return job, false, nil
	}
	if err != nil {
		return job, false, err
	}

	job, err = startJob(ctx, tx, jobID)
	if err != nil {
		return job, false, err
	}
	return job, true, nil
}

// ClaimJob marks a specific queued job as running. A job that is not queued,
// or is locked by another claimer, is reported as not claimed.
func (db *DB) ClaimJob(ctx context.Context, jobID uuid.UUID) (job domain.Job, claimed bool, err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return job, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	var locked uuid.UUID
	err = tx.QueryRow(ctx, `
        SELECT id FROM jobs
        WHERE id = $1 AND status = 'queued'
        FOR UPDATE SKIP LOCKED
    `, jobID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return job, false, nil
	}
	if err != nil {
		return job, false, err
	}

	job, err = startJob(ctx, tx, locked)
	if err != nil {
		return job, false, err
	}
	return job, true, nil
}

func startJob(ctx context.Context, tx pgx.Tx, jobID uuid.UUID) (domain.Job, error) {
	return scanJob(tx.QueryRow(ctx, `
        UPDATE jobs
        SET status = 'running', started_at = now(), updated_at = now(), attempts = attempts + 1
        WHERE id = $1
        RETURNING `+jobColumns, jobID))
}

// MarkCompleted stores the result and artifact rows and moves the job to done, atomically.
func (db *DB) MarkCompleted(ctx context.Context, jobID uuid.UUID, c ports.Completion) (err error) {
	payload, err := json.Marshal(c.Result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	for _, a := range c.Artifacts {
		if _, err = tx.Exec(ctx, `
            INSERT INTO artifacts (id, job_id, kind, path)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (job_id, kind) DO UPDATE SET path = EXCLUDED.path, created_at = now()
        `, id.New(), jobID, string(a.Kind), a.Path); err != nil {
			return fmt.Errorf("recording %s artifact: %w", a.Kind, err)
		}
	}

	tag, err := tx.Exec(ctx, `
        UPDATE jobs
        SET status = 'done', result = $2, confidence = $3, error = NULL,
            finished_at = now(), updated_at = now()
        WHERE id = $1 AND status = 'running'
    `, jobID, payload, c.Confidence)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = fmt.Errorf("job %s is not running: %w", jobID, domain.ErrConflict)
		return err
	}
	return nil
}

// MarkFailed records reason on the job. Jobs already in a terminal state are left alone.
func (db *DB) MarkFailed(ctx context.Context, jobID uuid.UUID, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := db.Pool.Exec(ctx, `
        UPDATE jobs
        SET status = 'failed', error = $2, finished_at = now(), updated_at = now()
        WHERE id = $1 AND status IN ('queued', 'running')
    `, jobID, reason)
	return err
}

// FailStale fails jobID when it has been running for longer than olderThan.
func (db *DB) FailStale(ctx context.Context, jobID uuid.UUID, olderThan time.Duration, reason string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	tag, err := db.Pool.Exec(ctx, `
        UPDATE jobs
        SET status = 'failed', error = $2, finished_at = now(), updated_at = now()
        WHERE id = $1 AND status = 'running'
          AND started_at < now() - make_interval(secs => $3)
    `, jobID, reason, olderThan.Seconds())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
