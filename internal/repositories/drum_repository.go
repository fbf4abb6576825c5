package repositories

import (
	"context"
	"errors"
	"time"

	"fieldops-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDrumExhausted rejects a usage record larger than the drum's remaining
// cable.
var ErrDrumExhausted = errors.New("drum has insufficient cable remaining")

// ErrDrumInactive rejects usage against a depleted or retired drum.
var ErrDrumInactive = errors.New("drum is not active")

type DrumRepository struct {
	DB *pgxpool.Pool
}

func NewDrumRepository(db *pgxpool.Pool) *DrumRepository {
	return &DrumRepository{DB: db}
}

const drumSelect = `
	SELECT d.id, d.drum_number, d.item_id, it.name, d.initial_quantity,
	       d.wastage_calculation_method, d.manual_wastage_override, d.status,
	       d.received_date, d.created_at, d.updated_at,
	       COALESCE(u.total_used, 0)
	FROM drum_tracking d
	JOIN inventory_items it ON it.id = d.item_id
	LEFT JOIN (
		SELECT drum_id, SUM(quantity_used) AS total_used
		FROM drum_usage GROUP BY drum_id
	) u ON u.drum_id = d.id`

func scanDrum(row interface{ Scan(...any) error }) (*models.DrumTracking, error) {
	var d models.DrumTracking
	var totalUsed float64
	err := row.Scan(&d.ID, &d.DrumNumber, &d.ItemID, &d.ItemName, &d.InitialQuantity,
		&d.WastageCalculationMethod, &d.ManualWastageOverride, &d.Status,
		&d.ReceivedDate, &d.CreatedAt, &d.UpdatedAt, &totalUsed)
	if err != nil {
		return nil, err
	}
	d.Derive(totalUsed)
	return &d, nil
}

// Get returns a drum with its remaining quantity derived from the summed
// usage log.
func (r *DrumRepository) Get(ctx context.Context, id int) (*models.DrumTracking, error) {
	return scanDrum(r.DB.QueryRow(ctx, drumSelect+` WHERE d.id=$1`, id))
}

func (r *DrumRepository) List(ctx context.Context, status string) ([]*models.DrumTracking, error) {
	query := drumSelect + ` ORDER BY d.received_date DESC, d.id DESC`
	args := []any{}
	if status != "" {
		query = drumSelect + ` WHERE d.status=$1 ORDER BY d.received_date DESC, d.id DESC`
		args = append(args, status)
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drums []*models.DrumTracking
	for rows.Next() {
		d, err := scanDrum(rows)
		if err != nil {
			return nil, err
		}
		drums = append(drums, d)
	}
	return drums, rows.Err()
}

// RecordUsage appends a usage row after verifying, under a row lock, that the
// drum is active and has enough cable remaining. The remaining quantity is
// never stored: it is recomputed from the log inside the same transaction.
func (r *DrumRepository) RecordUsage(ctx context.Context, drumID int, usage *models.DrumUsage, date time.Time) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var initial float64
	var status string
	err = tx.QueryRow(ctx,
		`SELECT initial_quantity, status FROM drum_tracking WHERE id=$1 FOR UPDATE`, drumID,
	).Scan(&initial, &status)
	if err != nil {
		return err
	}
	if status != models.DrumStatusActive {
		return ErrDrumInactive
	}

	var totalUsed float64
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity_used), 0) FROM drum_usage WHERE drum_id=$1`, drumID,
	).Scan(&totalUsed)
	if err != nil {
		return err
	}

	remaining := initial - totalUsed
	if usage.QuantityUsed > remaining {
		return ErrDrumExhausted
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO drum_usage(drum_id, line_details_id, quantity_used, usage_date)
		 VALUES($1, $2, $3, $4)
		 RETURNING id, created_at`,
		drumID, usage.LineDetailsID, usage.QuantityUsed, date,
	).Scan(&usage.ID, &usage.CreatedAt)
	if err != nil {
		return err
	}
	usage.DrumID = drumID
	usage.UsageDate = date

	// Flip to depleted once the log accounts for the full drum
	if totalUsed+usage.QuantityUsed >= initial {
		_, err = tx.Exec(ctx,
			`UPDATE drum_tracking SET status=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2 AND status=$3`,
			models.DrumStatusDepleted, drumID, models.DrumStatusActive)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *DrumRepository) ListUsage(ctx context.Context, drumID int) ([]*models.DrumUsage, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, drum_id, line_details_id, quantity_used, usage_date, wastage_calculated, created_at
		 FROM drum_usage WHERE drum_id=$1 ORDER BY usage_date, id`, drumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usages []*models.DrumUsage
	for rows.Next() {
		var u models.DrumUsage
		err := rows.Scan(&u.ID, &u.DrumID, &u.LineDetailsID, &u.QuantityUsed,
			&u.UsageDate, &u.WastageCalculated, &u.CreatedAt)
		if err != nil {
			return nil, err
		}
		usages = append(usages, &u)
	}
	return usages, rows.Err()
}

// UpdateSettings changes the wastage method, override and status of a drum.
func (r *DrumRepository) UpdateSettings(ctx context.Context, id int, method string, override *float64, status *string) error {
	if status != nil {
		_, err := r.DB.Exec(ctx,
			`UPDATE drum_tracking SET wastage_calculation_method=$1, manual_wastage_override=$2, status=$3, updated_at=CURRENT_TIMESTAMP
			 WHERE id=$4`,
			method, override, *status, id)
		return err
	}
	_, err := r.DB.Exec(ctx,
		`UPDATE drum_tracking SET wastage_calculation_method=$1, manual_wastage_override=$2, updated_at=CURRENT_TIMESTAMP
		 WHERE id=$3`,
		method, override, id)
	return err
}

// Delete removes a drum and its entire usage history in one transaction.
// Admin-only; the audit trail goes with it.
func (r *DrumRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM drum_usage WHERE drum_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM drum_tracking WHERE id=$1`, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DrumSummary is the dashboard aggregate over active drums.
type DrumSummary struct {
	ActiveDrums    int     `json:"active_drums"`
	TotalRemaining float64 `json:"total_remaining"`
}

func (r *DrumRepository) Summary(ctx context.Context) (*DrumSummary, error) {
	var s DrumSummary
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(GREATEST(d.initial_quantity - COALESCE(u.total_used, 0), 0)), 0)
		 FROM drum_tracking d
		 LEFT JOIN (
			SELECT drum_id, SUM(quantity_used) AS total_used
			FROM drum_usage GROUP BY drum_id
		 ) u ON u.drum_id = d.id
		 WHERE d.status=$1`, models.DrumStatusActive).Scan(&s.ActiveDrums, &s.TotalRemaining)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
