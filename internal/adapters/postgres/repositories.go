package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ownership/internal/domain"
)

// JobStore

func (db *DB) CreateJob(ctx context.Context, siren string, depth int) (domain.Job, error) {
	return scanJob(db.Pool.QueryRow(ctx, `
        INSERT INTO jobs (id, siren, depth, status)
        VALUES ($1, $2, $3, 'queued')
        RETURNING `+jobColumns, uuid.New(), siren, depth))
}

func (db *DB) GetJob(ctx context.Context, jobID uuid.UUID) (domain.Job, error) {
	job, err := scanJob(db.Pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, jobID))
	if errors.Is(err, pgx.ErrNoRows) {
		return job, domain.ErrNotFound
	}
	return job, err
}

func (db *DB) ListArtifacts(ctx context.Context, jobID uuid.UUID) ([]domain.Artifact, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, job_id, kind, path, created_at
        FROM artifacts WHERE job_id = $1
        ORDER BY id
    `, jobID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Artifact, error) {
		var a domain.Artifact
		var kind string
		err := row.Scan(&a.ID, &a.JobID, &kind, &a.Path, &a.CreatedAt)
		a.Kind = domain.ArtifactKind(kind)
		return a, err
	})
}

// CompanyRepository

func (db *DB) UpsertCompany(ctx context.Context, c domain.Company) error {
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO companies (siren, name, address, status, last_seen)
        VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), now())
        ON CONFLICT (siren) DO UPDATE
        SET name = EXCLUDED.name, address = EXCLUDED.address,
            status = EXCLUDED.status, last_seen = EXCLUDED.last_seen
    `, c.SIREN, c.Name, c.Address, c.Status)
	return err
}

func (db *DB) GetCompany(ctx context.Context, siren string) (domain.Company, error) {
	var c domain.Company
	err := db.Pool.QueryRow(ctx, `
        SELECT siren, name, COALESCE(address, ''), COALESCE(status, ''), last_seen
        FROM companies WHERE siren = $1
    `, siren).Scan(&c.SIREN, &c.Name, &c.Address, &c.Status, &c.LastSeen)
	if errors.Is(err, pgx.ErrNoRows) {
		return c, domain.ErrNotFound
	}
	return c, err
}
