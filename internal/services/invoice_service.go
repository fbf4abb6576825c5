package services

import (
	"context"
	"errors"
	"fmt"

	"fieldops-backend/internal/auth"
	"fieldops-backend/internal/cache"
	"fieldops-backend/internal/metrics"
	"fieldops-backend/internal/models"
	"fieldops-backend/internal/repositories"
	"fieldops-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
)

type InvoiceService struct {
	Repo      *repositories.InvoiceRepository
	Inventory *InventoryService
}

func NewInvoiceService(repo *repositories.InvoiceRepository, inventory *InventoryService) *InvoiceService {
	return &InvoiceService{Repo: repo, Inventory: inventory}
}

// Create issues an inventory invoice. All referenced items are validated
// before anything is written; a missing item aborts the whole invoice with a
// ValidationError listing the missing ids.
func (s *InvoiceService) Create(ctx context.Context, actor auth.Actor, req *models.CreateInvoiceRequest) (*models.InvoiceWithItems, error) {
	if err := requireRole(actor, auth.RoleModerator); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, NewValidationError("items", "at least one line item is required")
	}
	for i, it := range req.Items {
		if it.QuantityIssued <= 0 {
			return nil, NewValidationError(fmt.Sprintf("items[%d].quantity_issued", i), "must be positive")
		}
		if it.UnitCost < 0 {
			return nil, NewValidationError(fmt.Sprintf("items[%d].unit_cost", i), "cannot be negative")
		}
	}

	date := timeutil.Now()
	if req.InvoiceDate != "" {
		parsed, err := timeutil.ParseInSLT(timeutil.DateLayout, req.InvoiceDate)
		if err != nil {
			return nil, NewValidationError("invoice_date", "must be YYYY-MM-DD")
		}
		date = parsed
	}

	invoice := &models.InventoryInvoice{
		Supplier:  req.Supplier,
		Notes:     req.Notes,
		CreatedBy: actor.ID,
	}
	items := make([]models.InventoryInvoiceItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = models.InventoryInvoiceItem{
			ItemID:         it.ItemID,
			QuantityIssued: it.QuantityIssued,
			UnitCost:       it.UnitCost,
			DrumNumber:     it.DrumNumber,
		}
	}

	result, err := s.Repo.Create(ctx, invoice, items, date)
	if err != nil {
		var missing *repositories.MissingItemsError
		if errors.As(err, &missing) {
			return nil, NewValidationError("items", missing.Error())
		}
		return nil, err
	}

	metrics.InvoicesIssued.Inc()
	cache.Invalidate(ctx, cache.DashboardSummaryKey)
	return result, nil
}

func (s *InvoiceService) Get(ctx context.Context, id int) (*models.InvoiceWithItems, error) {
	inv, err := s.Repo.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return inv, err
}

func (s *InvoiceService) List(ctx context.Context, limit, offset int) ([]*models.InventoryInvoice, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.List(ctx, limit, offset)
}

// Delete removes the invoice paperwork. Received stock stays on the shelf:
// the deletion does not reverse the stock increments.
func (s *InvoiceService) Delete(ctx context.Context, actor auth.Actor, id int) error {
	if err := requireRole(actor, auth.RoleAdmin); err != nil {
		return err
	}
	err := s.Repo.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err == nil {
		cache.Invalidate(ctx, cache.DashboardSummaryKey)
	}
	return err
}
