package repositories

import (
	"context"
	"time"

	"fieldops-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type LineRepository struct {
	DB *pgxpool.Pool
}

func NewLineRepository(db *pgxpool.Pool) *LineRepository {
	return &LineRepository{DB: db}
}

const lineColumns = `
	l.id, l.task_id, l.phone_number, l.customer_name, l.address,
	l.assigned_worker_id, COALESCE(u.name, ''),
	l.cable_start, l.cable_middle, l.cable_end, l.total_cable,
	l.poles, l.clips, l.connectors, l.l_hooks, l.nails, l.screws,
	l.u_clips, l.tag_blocks, l.casing_length, l.internal_wire,
	l.conduit_length, l.retainer_rings,
	l.status, l.completed_date, l.created_at, l.updated_at`

func scanLine(row interface{ Scan(...any) error }) (*models.LineDetails, error) {
	var l models.LineDetails
	err := row.Scan(&l.ID, &l.TaskID, &l.PhoneNumber, &l.CustomerName, &l.Address,
		&l.AssignedWorkerID, &l.AssignedWorkerName,
		&l.Start, &l.Middle, &l.End, &l.TotalCable,
		&l.Poles, &l.Clips, &l.Connectors, &l.LHooks, &l.Nails, &l.Screws,
		&l.UClips, &l.TagBlocks, &l.CasingLength, &l.InternalWire,
		&l.ConduitLength, &l.RetainerRings,
		&l.Status, &l.CompletedDate, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a line record and, when drumID is set, records the computed
// cable total as drum usage within the same transaction. Either both land or
// neither does, so the drum log never references a line that failed to save.
func (r *LineRepository) Create(ctx context.Context, line *models.LineDetails, drumID *int, date time.Time) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO line_details(
			task_id, phone_number, customer_name, address, assigned_worker_id,
			cable_start, cable_middle, cable_end, total_cable,
			poles, clips, connectors, l_hooks, nails, screws,
			u_clips, tag_blocks, casing_length, internal_wire, conduit_length, retainer_rings,
			status, completed_date)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
		 RETURNING id, created_at, updated_at`,
		line.TaskID, line.PhoneNumber, line.CustomerName, line.Address, line.AssignedWorkerID,
		line.Start, line.Middle, line.End, line.TotalCable,
		line.Poles, line.Clips, line.Connectors, line.LHooks, line.Nails, line.Screws,
		line.UClips, line.TagBlocks, line.CasingLength, line.InternalWire, line.ConduitLength, line.RetainerRings,
		line.Status, line.CompletedDate,
	).Scan(&line.ID, &line.CreatedAt, &line.UpdatedAt)
	if err != nil {
		return err
	}

	if drumID != nil && line.TotalCable > 0 {
		var initial float64
		var status string
		err = tx.QueryRow(ctx,
			`SELECT initial_quantity, status FROM drum_tracking WHERE id=$1 FOR UPDATE`, *drumID,
		).Scan(&initial, &status)
		if err != nil {
			return err
		}
		if status != models.DrumStatusActive {
			return ErrDrumInactive
		}

		var totalUsed float64
		err = tx.QueryRow(ctx,
			`SELECT COALESCE(SUM(quantity_used), 0) FROM drum_usage WHERE drum_id=$1`, *drumID,
		).Scan(&totalUsed)
		if err != nil {
			return err
		}
		if line.TotalCable > initial-totalUsed {
			return ErrDrumExhausted
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO drum_usage(drum_id, line_details_id, quantity_used, usage_date)
			 VALUES($1, $2, $3, $4)`,
			*drumID, line.ID, line.TotalCable, date)
		if err != nil {
			return err
		}

		if totalUsed+line.TotalCable >= initial {
			_, err = tx.Exec(ctx,
				`UPDATE drum_tracking SET status=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2 AND status=$3`,
				models.DrumStatusDepleted, *drumID, models.DrumStatusActive)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func (r *LineRepository) Get(ctx context.Context, id int) (*models.LineDetails, error) {
	return scanLine(r.DB.QueryRow(ctx,
		`SELECT `+lineColumns+`
		 FROM line_details l
		 LEFT JOIN users u ON u.id = l.assigned_worker_id
		 WHERE l.id=$1`, id))
}

// List returns lines, optionally filtered by status and/or assigned worker.
func (r *LineRepository) List(ctx context.Context, status string, workerID *int, limit, offset int) ([]*models.LineDetails, error) {
	query := `SELECT ` + lineColumns + `
		 FROM line_details l
		 LEFT JOIN users u ON u.id = l.assigned_worker_id
		 WHERE ($1 = '' OR l.status = $1)
		   AND ($2::int IS NULL OR l.assigned_worker_id = $2)
		 ORDER BY l.created_at DESC
		 LIMIT $3 OFFSET $4`

	rows, err := r.DB.Query(ctx, query, status, workerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*models.LineDetails
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// Update rewrites a line's editable fields and re-derived cable total.
func (r *LineRepository) Update(ctx context.Context, line *models.LineDetails) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE line_details SET
			task_id=$1, phone_number=$2, customer_name=$3, address=$4, assigned_worker_id=$5,
			cable_start=$6, cable_middle=$7, cable_end=$8, total_cable=$9,
			poles=$10, clips=$11, connectors=$12, l_hooks=$13, nails=$14, screws=$15,
			u_clips=$16, tag_blocks=$17, casing_length=$18, internal_wire=$19,
			conduit_length=$20, retainer_rings=$21,
			updated_at=CURRENT_TIMESTAMP
		 WHERE id=$22`,
		line.TaskID, line.PhoneNumber, line.CustomerName, line.Address, line.AssignedWorkerID,
		line.Start, line.Middle, line.End, line.TotalCable,
		line.Poles, line.Clips, line.Connectors, line.LHooks, line.Nails, line.Screws,
		line.UClips, line.TagBlocks, line.CasingLength, line.InternalWire,
		line.ConduitLength, line.RetainerRings,
		line.ID)
	return err
}

// UpdateStatus moves a line through its lifecycle. Completion stamps
// completed_date; moving out of completed clears it.
func (r *LineRepository) UpdateStatus(ctx context.Context, id int, status string, completedAt *time.Time) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE line_details SET status=$1, completed_date=$2, updated_at=CURRENT_TIMESTAMP WHERE id=$3`,
		status, completedAt, id)
	return err
}

// Delete removes a line and its drum usage rows in one transaction. The
// drums' remaining quantities reconcile automatically since they are derived
// from the surviving usage log.
func (r *LineRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM drum_usage WHERE line_details_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM line_details WHERE id=$1`, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// CountCompletedForWorker counts lines a worker completed inside the window.
// Drives per-line payroll computation.
func (r *LineRepository) CountCompletedForWorker(ctx context.Context, workerID int, from, to time.Time) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM line_details
		 WHERE assigned_worker_id=$1 AND status=$2 AND completed_date >= $3 AND completed_date <= $4`,
		workerID, models.LineStatusCompleted, from, to).Scan(&count)
	return count, err
}

// LineSummary is the dashboard aggregate over line jobs.
type LineSummary struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

func (r *LineRepository) Summary(ctx context.Context) (*LineSummary, error) {
	var s LineSummary
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE status=$1),
		        COUNT(*) FILTER (WHERE status=$2),
		        COUNT(*) FILTER (WHERE status=$3)
		 FROM line_details`,
		models.LineStatusPending, models.LineStatusInProgress, models.LineStatusCompleted,
	).Scan(&s.Pending, &s.InProgress, &s.Completed)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
