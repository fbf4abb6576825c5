package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fieldops-backend/internal/auth"
	"fieldops-backend/internal/cache"
	"fieldops-backend/internal/metrics"
	"fieldops-backend/internal/models"
	"fieldops-backend/internal/repositories"
	"fieldops-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
)

type WasteService struct {
	Repo      *repositories.WasteRepository
	Inventory *InventoryService
}

func NewWasteService(repo *repositories.WasteRepository, inventory *InventoryService) *WasteService {
	return &WasteService{Repo: repo, Inventory: inventory}
}

// Report records a batch of waste entries in one transaction, deducting
// stock floored at zero, then raises low-stock notifications for any items
// that crossed their reorder level.
func (s *WasteService) Report(ctx context.Context, actor auth.Actor, req *models.ReportWasteRequest) ([]models.WasteTracking, error) {
	if err := requireRole(actor, auth.RoleModerator); err != nil {
		return nil, err
	}
	if len(req.Entries) == 0 {
		return nil, NewValidationError("entries", "at least one entry is required")
	}

	entries := make([]models.WasteTracking, len(req.Entries))
	dates := make([]time.Time, 0, len(req.Entries))
	for i, e := range req.Entries {
		if e.Quantity <= 0 {
			return nil, NewValidationError(fmt.Sprintf("entries[%d].quantity", i), "must be positive")
		}
		date := timeutil.Now()
		if e.WasteDate != "" {
			parsed, err := timeutil.ParseInSLT(timeutil.DateLayout, e.WasteDate)
			if err != nil {
				return nil, NewValidationError(fmt.Sprintf("entries[%d].waste_date", i), "must be YYYY-MM-DD")
			}
			date = parsed
		}
		dates = append(dates, date)
		entries[i] = models.WasteTracking{
			ItemID:      e.ItemID,
			Quantity:    e.Quantity,
			WasteReason: e.WasteReason,
			ReportedBy:  actor.ID,
		}
	}

	created, err := s.Repo.CreateBatch(ctx, entries, dates)
	if err != nil {
		if errors.Is(err, repositories.ErrItemNotFound) {
			return nil, NewValidationError("entries", err.Error())
		}
		return nil, err
	}

	metrics.WasteReported.Add(float64(len(created)))
	itemIDs := make([]int, 0, len(created))
	for _, e := range created {
		itemIDs = append(itemIDs, e.ItemID)
	}
	s.Inventory.checkLowStock(ctx, itemIDs)
	cache.Invalidate(ctx, cache.DashboardSummaryKey)

	return created, nil
}

func (s *WasteService) List(ctx context.Context, limit, offset int) ([]*models.WasteTracking, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.List(ctx, limit, offset)
}

// Delete removes a waste entry and restores the recorded quantity to stock.
// If the original deduction was floored, the restoration can leave stock
// above its pre-waste level; the ledger favors not losing recorded material.
func (s *WasteService) Delete(ctx context.Context, actor auth.Actor, id int) error {
	if err := requireRole(actor, auth.RoleModerator); err != nil {
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
