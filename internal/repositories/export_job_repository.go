package repositories

import (
	"context"

	"fieldops-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ExportJobRepository struct {
	DB *pgxpool.Pool
}

func NewExportJobRepository(db *pgxpool.Pool) *ExportJobRepository {
	return &ExportJobRepository{DB: db}
}

func (r *ExportJobRepository) Create(ctx context.Context, job *models.ExportJob) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO export_jobs(id, kind, status, requested_by) VALUES($1, $2, $3, $4)
		 RETURNING created_at`,
		job.ID, job.Kind, job.Status, job.RequestedBy,
	).Scan(&job.CreatedAt)
}

func (r *ExportJobRepository) Get(ctx context.Context, id string) (*models.ExportJob, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, kind, status, file_path, error, COALESCE(requested_by, 0), created_at, completed_at
		 FROM export_jobs WHERE id=$1`, id)

	var job models.ExportJob
	err := row.Scan(&job.ID, &job.Kind, &job.Status, &job.FilePath, &job.Error,
		&job.RequestedBy, &job.CreatedAt, &job.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *ExportJobRepository) MarkRunning(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE export_jobs SET status=$1 WHERE id=$2`, models.ExportJobRunning, id)
	return err
}

func (r *ExportJobRepository) MarkCompleted(ctx context.Context, id, filePath string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE export_jobs SET status=$1, file_path=$2, completed_at=NOW() WHERE id=$3`,
		models.ExportJobCompleted, filePath, id)
	return err
}

func (r *ExportJobRepository) MarkFailed(ctx context.Context, id, errMsg string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE export_jobs SET status=$1, error=$2, completed_at=NOW() WHERE id=$3`,
		models.ExportJobFailed, errMsg, id)
	return err
}
