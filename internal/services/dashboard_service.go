package services

import (
	"context"
	"encoding/json"
	"time"

	"fieldops-backend/internal/cache"
	"fieldops-backend/internal/repositories"
)

const dashboardCacheTTL = 5 * time.Minute

// DashboardSummary is the single landing-page aggregate.
type DashboardSummary struct {
	Stock       *repositories.StockSummary   `json:"stock"`
	Drums       *repositories.DrumSummary    `json:"drums"`
	Lines       *repositories.LineSummary    `json:"lines"`
	Payroll     *repositories.PayrollSummary `json:"payroll"`
	GeneratedAt time.Time                    `json:"generated_at"`
	FromCache   bool                         `json:"from_cache"`
}

type DashboardService struct {
	Inventory *repositories.InventoryRepository
	Drums     *repositories.DrumRepository
	Lines     *repositories.LineRepository
	Payroll   *repositories.PayrollRepository
}

func NewDashboardService(inventory *repositories.InventoryRepository, drums *repositories.DrumRepository, lines *repositories.LineRepository, payroll *repositories.PayrollRepository) *DashboardService {
	return &DashboardService{
		Inventory: inventory,
		Drums:     drums,
		Lines:     lines,
		Payroll:   payroll,
	}
}

// Summary aggregates the dashboard counters. Served from Redis for 5
// minutes; stock and payroll mutations invalidate the key early.
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	if data, ok := cache.GetCached(ctx, cache.DashboardSummaryKey); ok {
		var summary DashboardSummary
		if err := json.Unmarshal(data, &summary); err == nil {
			summary.FromCache = true
			return &summary, nil
		}
	}

	stock, err := s.Inventory.Summary(ctx)
	if err != nil {
		return nil, err
	}
	drums, err := s.Drums.Summary(ctx)
	if err != nil {
		return nil, err
	}
	lines, err := s.Lines.Summary(ctx)
	if err != nil {
		return nil, err
	}
	payroll, err := s.Payroll.Summary(ctx)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		Stock:       stock,
		Drums:       drums,
		Lines:       lines,
		Payroll:     payroll,
		GeneratedAt: time.Now(),
	}

	if data, err := json.Marshal(summary); err == nil {
		cache.SetCached(ctx, cache.DashboardSummaryKey, data, dashboardCacheTTL)
	}
	return summary, nil
}
