package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fieldops-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrItemNotFound aborts an invoice when any referenced inventory item is
// missing. Nothing is written in that case.
var ErrItemNotFound = errors.New("inventory item not found")

// MissingItemsError lists every invoice line whose inventory item does not
// exist, so the caller can report all of them at once.
type MissingItemsError struct {
	IDs []int
}

func (e *MissingItemsError) Error() string {
	return fmt.Sprintf("inventory items not found: %v", e.IDs)
}

type InvoiceRepository struct {
	DB *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{DB: db}
}

// resolveItemNames looks up each distinct line item once and returns its name.
// When any referenced item does not exist the whole lookup fails with a
// MissingItemsError naming all of them, before a single row is written.
func resolveItemNames(items []models.InventoryInvoiceItem, lookup func(itemID int) (string, bool, error)) (map[int]string, error) {
	names := make(map[int]string, len(items))
	seen := make(map[int]bool, len(items))
	var missing []int
	for _, it := range items {
		if seen[it.ItemID] {
			continue
		}
		seen[it.ItemID] = true
		name, ok, err := lookup(it.ItemID)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, it.ItemID)
			continue
		}
		names[it.ItemID] = name
	}
	if len(missing) > 0 {
		return nil, &MissingItemsError{IDs: missing}
	}
	return names, nil
}

// Create issues an invoice in a single transaction: every referenced item is
// validated up front, stock is incremented per line item, and a drum record
// is spawned for any cable line carrying a drum number. A missing item aborts
// the whole invoice.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.InventoryInvoice, items []models.InventoryInvoiceItem, date time.Time) (*models.InvoiceWithItems, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Validate all items before writing anything; a single missing item
	// aborts the whole invoice.
	itemNames, err := resolveItemNames(items, func(itemID int) (string, bool, error) {
		var name string
		err := tx.QueryRow(ctx,
			`SELECT name FROM inventory_items WHERE id=$1`, itemID).Scan(&name)
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return name, err == nil, err
	})
	if err != nil {
		return nil, err
	}

	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('invoice_number_sequence')`).Scan(&seq); err != nil {
		return nil, err
	}
	invoice.InvoiceNumber = fmt.Sprintf("INV-%05d", seq)
	invoice.InvoiceDate = date
	invoice.ItemsCount = len(items)

	err = tx.QueryRow(ctx,
		`INSERT INTO inventory_invoices(invoice_number, invoice_date, supplier, notes, created_by, items_count)
		 VALUES($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		invoice.InvoiceNumber, invoice.InvoiceDate, invoice.Supplier, invoice.Notes, invoice.CreatedBy, invoice.ItemsCount,
	).Scan(&invoice.ID, &invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for i := range items {
		it := &items[i]
		it.InvoiceID = invoice.ID

		err = tx.QueryRow(ctx,
			`INSERT INTO inventory_invoice_items(invoice_id, item_id, quantity_issued, unit_cost, drum_number)
			 VALUES($1, $2, $3, $4, $5)
			 RETURNING id, created_at`,
			it.InvoiceID, it.ItemID, it.QuantityIssued, it.UnitCost, it.DrumNumber,
		).Scan(&it.ID, &it.CreatedAt)
		if err != nil {
			return nil, err
		}

		// Receiving stock
		_, err = tx.Exec(ctx,
			`UPDATE inventory_items SET current_stock = current_stock + $1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
			it.QuantityIssued, it.ItemID)
		if err != nil {
			return nil, err
		}

		// A drum number on a drop-wire-cable line means a physical drum
		// arrived: open its tracking record with the invoiced length as the
		// initial quantity.
		if it.DrumNumber != nil && *it.DrumNumber != "" &&
			strings.Contains(strings.ToLower(itemNames[it.ItemID]), "drop wire cable") {
			_, err = tx.Exec(ctx,
				`INSERT INTO drum_tracking(drum_number, item_id, initial_quantity, received_date)
				 VALUES($1, $2, $3, $4)`,
				*it.DrumNumber, it.ItemID, it.QuantityIssued, date)
			if err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &models.InvoiceWithItems{InventoryInvoice: *invoice, Items: items}, nil
}

func (r *InvoiceRepository) Get(ctx context.Context, id int) (*models.InvoiceWithItems, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT i.id, i.invoice_number, i.invoice_date, i.supplier, i.notes,
		        COALESCE(i.created_by, 0), COALESCE(u.name, ''), i.items_count, i.created_at, i.updated_at
		 FROM inventory_invoices i
		 LEFT JOIN users u ON u.id = i.created_by
		 WHERE i.id=$1`, id)

	var inv models.InvoiceWithItems
	err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.InvoiceDate, &inv.Supplier, &inv.Notes,
		&inv.CreatedBy, &inv.CreatedByName, &inv.ItemsCount, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx,
		`SELECT ii.id, ii.invoice_id, ii.item_id, it.name, ii.quantity_issued, ii.unit_cost, ii.drum_number, ii.created_at
		 FROM inventory_invoice_items ii
		 JOIN inventory_items it ON it.id = ii.item_id
		 WHERE ii.invoice_id=$1 ORDER BY ii.id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it models.InventoryInvoiceItem
		err := rows.Scan(&it.ID, &it.InvoiceID, &it.ItemID, &it.ItemName,
			&it.QuantityIssued, &it.UnitCost, &it.DrumNumber, &it.CreatedAt)
		if err != nil {
			return nil, err
		}
		inv.Items = append(inv.Items, it)
	}
	return &inv, rows.Err()
}

func (r *InvoiceRepository) List(ctx context.Context, limit, offset int) ([]*models.InventoryInvoice, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT i.id, i.invoice_number, i.invoice_date, i.supplier, i.notes,
		        COALESCE(i.created_by, 0), COALESCE(u.name, ''), i.items_count, i.created_at, i.updated_at
		 FROM inventory_invoices i
		 LEFT JOIN users u ON u.id = i.created_by
		 ORDER BY i.invoice_date DESC, i.id DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.InventoryInvoice
	for rows.Next() {
		var inv models.InventoryInvoice
		err := rows.Scan(&inv.ID, &inv.InvoiceNumber, &inv.InvoiceDate, &inv.Supplier, &inv.Notes,
			&inv.CreatedBy, &inv.CreatedByName, &inv.ItemsCount, &inv.CreatedAt, &inv.UpdatedAt)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, &inv)
	}
	return invoices, rows.Err()
}

// Delete removes an invoice and its line items. Stock received through the
// invoice is NOT reversed: the material is already in the store, deleting the
// paperwork does not make it leave.
func (r *InvoiceRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM inventory_invoice_items WHERE invoice_id=$1`, id); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM inventory_invoices WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}
