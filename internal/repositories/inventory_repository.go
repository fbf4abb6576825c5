package repositories

import (
	"context"

	"fieldops-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type InventoryRepository struct {
	DB *pgxpool.Pool
}

func NewInventoryRepository(db *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{DB: db}
}

func (r *InventoryRepository) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO inventory_items(name, category, current_stock, reorder_level, serial_no)
         VALUES($1, $2, $3, $4, $5)
         RETURNING id, created_at, updated_at`,
		item.Name, item.Category, item.CurrentStock, item.ReorderLevel, item.SerialNo,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

func (r *InventoryRepository) Get(ctx context.Context, id int) (*models.InventoryItem, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, category, current_stock, reorder_level, serial_no, created_at, updated_at
         FROM inventory_items WHERE id=$1`, id)

	var item models.InventoryItem
	err := row.Scan(&item.ID, &item.Name, &item.Category, &item.CurrentStock,
		&item.ReorderLevel, &item.SerialNo, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *InventoryRepository) List(ctx context.Context) ([]*models.InventoryItem, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, category, current_stock, reorder_level, serial_no, created_at, updated_at
         FROM inventory_items ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.InventoryItem
	for rows.Next() {
		var item models.InventoryItem
		err := rows.Scan(&item.ID, &item.Name, &item.Category, &item.CurrentStock,
			&item.ReorderLevel, &item.SerialNo, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// ListLowStock returns items at or below their reorder level
func (r *InventoryRepository) ListLowStock(ctx context.Context) ([]*models.InventoryItem, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, category, current_stock, reorder_level, serial_no, created_at, updated_at
         FROM inventory_items WHERE current_stock <= reorder_level ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.InventoryItem
	for rows.Next() {
		var item models.InventoryItem
		err := rows.Scan(&item.ID, &item.Name, &item.Category, &item.CurrentStock,
			&item.ReorderLevel, &item.SerialNo, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// Update edits item metadata. Stock is never patched here: it only moves
// through invoice issuance and waste reporting.
func (r *InventoryRepository) Update(ctx context.Context, item *models.InventoryItem) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE inventory_items SET name=$1, category=$2, reorder_level=$3, serial_no=$4, updated_at=CURRENT_TIMESTAMP
         WHERE id=$5`,
		item.Name, item.Category, item.ReorderLevel, item.SerialNo, item.ID)
	return err
}

func (r *InventoryRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM inventory_items WHERE id=$1`, id)
	return err
}

// StockSummary is the dashboard aggregate over the item table.
type StockSummary struct {
	TotalItems    int     `json:"total_items"`
	LowStockItems int     `json:"low_stock_items"`
	TotalStock    float64 `json:"total_stock"`
}

func (r *InventoryRepository) Summary(ctx context.Context) (*StockSummary, error) {
	var s StockSummary
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE current_stock <= reorder_level),
		        COALESCE(SUM(current_stock), 0)
		 FROM inventory_items`).Scan(&s.TotalItems, &s.LowStockItems, &s.TotalStock)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
