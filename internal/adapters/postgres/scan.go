package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ownership/internal/domain"
)

const jobColumns = `id, siren, depth, status, attempts, error, confidence, result,
        created_at, updated_at, started_at, finished_at`

func scanJob(row pgx.Row) (domain.Job, error) {
	var (
		j      domain.Job
		status string
		raw    []byte
	)
	err := row.Scan(&j.ID, &j.SIREN, &j.Depth, &status, &j.Attempts, &j.Error, &j.Confidence, &raw,
		&j.CreatedAt, &j.UpdatedAt, &j.StartedAt, &j.FinishedAt)
	if err != nil {
		return j, err
	}
	j.Status = domain.JobStatus(status)
	if len(raw) > 0 {
		var res domain.Result
		if err := json.Unmarshal(raw, &res); err != nil {
			return j, fmt.Errorf("decoding result of job %s: %w", j.ID, err)
		}
		j.Result = &res
	}
	return j, nil
}
