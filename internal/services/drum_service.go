package services

import (
	"context"
	"errors"
	"fmt"

	"fieldops-backend/internal/auth"
	"fieldops-backend/internal/metrics"
	"fieldops-backend/internal/models"
	"fieldops-backend/internal/repositories"
	"fieldops-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
)

type DrumService struct {
	Repo          *repositories.DrumRepository
	Notifications *NotificationService
}

func NewDrumService(repo *repositories.DrumRepository, notifications *NotificationService) *DrumService {
	return &DrumService{Repo: repo, Notifications: notifications}
}

func (s *DrumService) Get(ctx context.Context, id int) (*models.DrumTracking, error) {
	drum, err := s.Repo.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return drum, err
}

func (s *DrumService) List(ctx context.Context, status string) ([]*models.DrumTracking, error) {
	if status != "" && status != models.DrumStatusActive &&
		status != models.DrumStatusDepleted && status != models.DrumStatusRetired {
		return nil, NewValidationError("status", "unknown drum status")
	}
	return s.Repo.List(ctx, status)
}

// RecordUsage appends a cable draw to the drum's usage log. The quantity
// must be positive and fit within the derived remaining length.
func (s *DrumService) RecordUsage(ctx context.Context, actor auth.Actor, drumID int, req *models.RecordDrumUsageRequest) (*models.DrumUsage, error) {
	if err := requireRole(actor, auth.RoleModerator); err != nil {
		return nil, err
	}
	if req.QuantityUsed <= 0 {
		return nil, NewValidationError("quantity_used", "must be positive")
	}

	date := timeutil.Now()
	if req.UsageDate != "" {
		parsed, err := timeutil.ParseInSLT(timeutil.DateLayout, req.UsageDate)
		if err != nil {
			return nil, NewValidationError("usage_date", "must be YYYY-MM-DD")
		}
		date = parsed
	}

	usage := &models.DrumUsage{
		LineDetailsID: req.LineDetailsID,
		QuantityUsed:  req.QuantityUsed,
	}
	err := s.Repo.RecordUsage(ctx, drumID, usage, date)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrNotFound
		case errors.Is(err, repositories.ErrDrumExhausted):
			return nil, NewValidationError("quantity_used", "exceeds remaining cable on drum")
		case errors.Is(err, repositories.ErrDrumInactive):
			return nil, ErrConflict
		}
		return nil, err
	}

	metrics.DrumUsageRecorded.Inc()

	drum, err := s.Repo.Get(ctx, drumID)
	if err == nil && drum.Status == models.DrumStatusDepleted {
		s.Notifications.Notify(ctx, models.NotificationDrumDepleted,
			fmt.Sprintf("Drum %s is depleted (%.1fm used of %.1fm)",
				drum.DrumNumber, drum.TotalUsed, drum.InitialQuantity),
			&drum.ID)
	}

	return usage, nil
}

func (s *DrumService) ListUsage(ctx context.Context, drumID int) ([]*models.DrumUsage, error) {
	if _, err := s.Get(ctx, drumID); err != nil {
		return nil, err
	}
	return s.Repo.ListUsage(ctx, drumID)
}

// UpdateSettings changes a drum's wastage method and status. Switching to
// manual override requires an override value; switching back to automatic
// clears it.
func (s *DrumService) UpdateSettings(ctx context.Context, actor auth.Actor, id int, req *models.UpdateDrumSettingsRequest) (*models.DrumTracking, error) {
	if err := requireRole(actor, auth.RoleModerator); err != nil {
		return nil, err
	}

	switch req.WastageCalculationMethod {
	case models.WastageAutomatic:
		req.ManualWastageOverride = nil
	case models.WastageManualOverride:
		if req.ManualWastageOverride == nil {
			return nil, NewValidationError("manual_wastage_override", "required when method is manual_override")
		}
		if *req.ManualWastageOverride < 0 {
			return nil, NewValidationError("manual_wastage_override", "cannot be negative")
		}
	default:
		return nil, NewValidationError("wastage_calculation_method", "must be automatic or manual_override")
	}

	if req.Status != nil {
		st := *req.Status
		if st != models.DrumStatusActive && st != models.DrumStatusDepleted && st != models.DrumStatusRetired {
			return nil, NewValidationError("status", "unknown drum status")
		}
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	err := s.Repo.UpdateSettings(ctx, id, req.WastageCalculationMethod, req.ManualWastageOverride, req.Status)
	if err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, id)
}

// Delete removes a drum and its usage history. Admin only.
func (s *DrumService) Delete(ctx context.Context, actor auth.Actor, id int) error {
	if err := requireRole(actor, auth.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}
