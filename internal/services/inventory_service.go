package services

import (
	"context"
	"errors"
	"fmt"

	"fieldops-backend/internal/auth"
	"fieldops-backend/internal/cache"
	"fieldops-backend/internal/models"
	"fieldops-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

type InventoryService struct {
	Repo          *repositories.InventoryRepository
	Notifications *NotificationService
}

func NewInventoryService(repo *repositories.InventoryRepository, notifications *NotificationService) *InventoryService {
	return &InventoryService{Repo: repo, Notifications: notifications}
}

func (s *InventoryService) CreateItem(ctx context.Context, actor auth.Actor, req *models.CreateInventoryItemRequest) (*models.InventoryItem, error) {
	if err := requireRole(actor, auth.RoleModerator); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, NewValidationError("name", "is required")
	}
	if req.CurrentStock < 0 || req.ReorderLevel < 0 {
		return nil, NewValidationError("", "stock figures cannot be negative")
	}

	item := &models.InventoryItem{
		Name:         req.Name,
		Category:     req.Category,
		CurrentStock: req.CurrentStock,
		ReorderLevel: req.ReorderLevel,
		SerialNo:     req.SerialNo,
	}
	if err := s.Repo.Create(ctx, item); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.DashboardSummaryKey)
	return item, nil
}

func (s *InventoryService) GetItem(ctx context.Context, id int) (*models.InventoryItem, error) {
	item, err := s.Repo.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return item, err
}

func (s *InventoryService) ListItems(ctx context.Context) ([]*models.InventoryItem, error) {
	return s.Repo.List(ctx)
}

func (s *InventoryService) ListLowStock(ctx context.Context) ([]*models.InventoryItem, error) {
	return s.Repo.ListLowStock(ctx)
}

func (s *InventoryService) UpdateItem(ctx context.Context, actor auth.Actor, id int, req *models.CreateInventoryItemRequest) (*models.InventoryItem, error) {
	if err := requireRole(actor, auth.RoleModerator); err != nil {
		return nil, err
	}

	item, err := s.Repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	item.Name = req.Name
	item.Category = req.Category
	item.ReorderLevel = req.ReorderLevel
	item.SerialNo = req.SerialNo

	if err := s.Repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, id)
}

func (s *InventoryService) DeleteItem(ctx context.Context, actor auth.Actor, id int) error {
	if err := requireRole(actor, auth.RoleAdmin); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.DashboardSummaryKey)
	return nil
}

// checkLowStock raises a notification for any item that has fallen to its
// reorder level. Called after stock-deducting operations.
func (s *InventoryService) checkLowStock(ctx context.Context, itemIDs []int) {
	for _, id := range itemIDs {
		item, err := s.Repo.Get(ctx, id)
		if err != nil {
			continue
		}
		if item.LowOnStock() {
			s.Notifications.Notify(ctx, models.NotificationLowStock,
				fmt.Sprintf("%s is low on stock: %.1f remaining (reorder at %.1f)",
					item.Name, item.CurrentStock, item.ReorderLevel),
				&item.ID)
		}
	}
}
