package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fieldops-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WasteRepository struct {
	DB *pgxpool.Pool
}

func NewWasteRepository(db *pgxpool.Pool) *WasteRepository {
	return &WasteRepository{DB: db}
}

// CreateBatch records a batch of waste entries and deducts stock in one
// transaction. The deduction floors at zero rather than failing: field crews
// report what they lost, and a count that drifted below the ledger is a
// reconciliation problem, not a reason to reject the report.
func (r *WasteRepository) CreateBatch(ctx context.Context, entries []models.WasteTracking, dates []time.Time) ([]models.WasteTracking, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	for i := range entries {
		e := &entries[i]

		// Lock the item row for the whole entry so the floored deduction
		// below cannot race a concurrent stock write.
		var stock float64
		err := tx.QueryRow(ctx,
			`SELECT current_stock FROM inventory_items WHERE id=$1 FOR UPDATE`, e.ItemID,
		).Scan(&stock)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("item %d: %w", e.ItemID, ErrItemNotFound)
		}
		if err != nil {
			return nil, err
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO waste_tracking(item_id, quantity, waste_reason, waste_date, reported_by)
			 VALUES($1, $2, $3, $4, $5)
			 RETURNING id, created_at`,
			e.ItemID, e.Quantity, e.WasteReason, dates[i], e.ReportedBy,
		).Scan(&e.ID, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		e.WasteDate = dates[i]

		_, err = tx.Exec(ctx,
			`UPDATE inventory_items SET current_stock=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
			models.ApplyWaste(stock, e.Quantity), e.ItemID)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *WasteRepository) List(ctx context.Context, limit, offset int) ([]*models.WasteTracking, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT w.id, w.item_id, it.name, w.quantity, w.waste_reason, w.waste_date,
		        COALESCE(w.reported_by, 0), COALESCE(u.name, ''), w.created_at
		 FROM waste_tracking w
		 JOIN inventory_items it ON it.id = w.item_id
		 LEFT JOIN users u ON u.id = w.reported_by
		 ORDER BY w.waste_date DESC, w.id DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.WasteTracking
	for rows.Next() {
		var w models.WasteTracking
		err := rows.Scan(&w.ID, &w.ItemID, &w.ItemName, &w.Quantity, &w.WasteReason,
			&w.WasteDate, &w.ReportedBy, &w.ReportedByName, &w.CreatedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &w)
	}
	return entries, rows.Err()
}

// Delete removes a waste entry and restores the recorded quantity to stock
// in the same transaction. The entry row is locked first so a concurrent
// delete cannot restore the same quantity twice.
func (r *WasteRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var itemID int
	var quantity float64
	err = tx.QueryRow(ctx,
		`SELECT item_id, quantity FROM waste_tracking WHERE id=$1 FOR UPDATE`, id,
	).Scan(&itemID, &quantity)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM waste_tracking WHERE id=$1`, id); err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`UPDATE inventory_items SET current_stock = current_stock + $1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		quantity, itemID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Get returns a single waste entry.
func (r *WasteRepository) Get(ctx context.Context, id int) (*models.WasteTracking, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT w.id, w.item_id, it.name, w.quantity, w.waste_reason, w.waste_date,
		        COALESCE(w.reported_by, 0), COALESCE(u.name, ''), w.created_at
		 FROM waste_tracking w
		 JOIN inventory_items it ON it.id = w.item_id
		 LEFT JOIN users u ON u.id = w.reported_by
		 WHERE w.id=$1`, id)

	var w models.WasteTracking
	err := row.Scan(&w.ID, &w.ItemID, &w.ItemName, &w.Quantity, &w.WasteReason,
		&w.WasteDate, &w.ReportedBy, &w.ReportedByName, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
