package services

import (
	"context"
	"errors"
	"time"

	"fieldops-backend/internal/auth"
	"fieldops-backend/internal/cable"
	"fieldops-backend/internal/models"
	"fieldops-backend/internal/repositories"
	"fieldops-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
)

type LineService struct {
	Repo *repositories.LineRepository
}

func NewLineService(repo *repositories.LineRepository) *LineService {
	return &LineService{Repo: repo}
}

// Create records a line installation. The cable total is derived from the
// start/end meter readings; a supplied drum id draws that total from the
// drum in the same transaction as the line insert.
func (s *LineService) Create(ctx context.Context, actor auth.Actor, req *models.CreateLineRequest) (*models.LineDetails, error) {
	if err := requireRole(actor, auth.RoleModerator); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.LineStatusPending
	}
	if !models.ValidLineStatus(status) {
		return nil, NewValidationError("status", "unknown line status")
	}

	line := &models.LineDetails{
		TaskID:           req.TaskID,
		PhoneNumber:      req.PhoneNumber,
		CustomerName:     req.CustomerName,
		Address:          req.Address,
		AssignedWorkerID: req.AssignedWorkerID,
		Measurement:      req.Measurement,
		TotalCable:       cable.TotalOf(req.Measurement),
		Poles:            req.Poles,
		Clips:            req.Clips,
		Connectors:       req.Connectors,
		LHooks:           req.LHooks,
		Nails:            req.Nails,
		Screws:           req.Screws,
		UClips:           req.UClips,
		TagBlocks:        req.TagBlocks,
		CasingLength:     req.CasingLength,
		InternalWire:     req.InternalWire,
		ConduitLength:    req.ConduitLength,
		RetainerRings:    req.RetainerRings,
		Status:           status,
	}
	if status == models.LineStatusCompleted {
		now := timeutil.Now()
		line.CompletedDate = &now
	}

	err := s.Repo.Create(ctx, line, req.DrumID, timeutil.Now())
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, NewValidationError("drum_id", "drum not found")
		case errors.Is(err, repositories.ErrDrumExhausted):
			return nil, NewValidationError("drum_id", "cable total exceeds remaining cable on drum")
		case errors.Is(err, repositories.ErrDrumInactive):
			return nil, NewValidationError("drum_id", "drum is not active")
		}
		return nil, err
	}
	return line, nil
}

func (s *LineService) Get(ctx context.Context, id int) (*models.LineDetails, error) {
	line, err := s.Repo.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return line, err
}

// List returns lines filtered by status and worker. Field workers only see
// their own assignments.
func (s *LineService) List(ctx context.Context, actor auth.Actor, status string, workerID *int, limit, offset int) ([]*models.LineDetails, error) {
	if status != "" && !models.ValidLineStatus(status) {
		return nil, NewValidationError("status", "unknown line status")
	}
	if actor.Role == auth.RoleUser {
		workerID = &actor.ID
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.List(ctx, status, workerID, limit, offset)
}

// Update rewrites a line's fields and re-derives the cable total.
func (s *LineService) Update(ctx context.Context, actor auth.Actor, id int, req *models.CreateLineRequest) (*models.LineDetails, error) {
	if err := requireRole(actor, auth.RoleModerator); err != nil {
		return nil, err
	}

	line, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	line.TaskID = req.TaskID
	line.PhoneNumber = req.PhoneNumber
	line.CustomerName = req.CustomerName
	line.Address = req.Address
	line.AssignedWorkerID = req.AssignedWorkerID
	line.Measurement = req.Measurement
	line.TotalCable = cable.TotalOf(req.Measurement)
	line.Poles = req.Poles
	line.Clips = req.Clips
	line.Connectors = req.Connectors
	line.LHooks = req.LHooks
	line.Nails = req.Nails
	line.Screws = req.Screws
	line.UClips = req.UClips
	line.TagBlocks = req.TagBlocks
	line.CasingLength = req.CasingLength
	line.InternalWire = req.InternalWire
	line.ConduitLength = req.ConduitLength
	line.RetainerRings = req.RetainerRings

	if err := s.Repo.Update(ctx, line); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// UpdateStatus moves a line through its lifecycle. Completing stamps
// completed_date, which feeds per-line payroll counting; leaving completed
// clears it.
func (s *LineService) UpdateStatus(ctx context.Context, actor auth.Actor, id int, status string) (*models.LineDetails, error) {
	if err := requireRole(actor, auth.RoleModerator); err != nil {
		return nil, err
	}
	if !models.ValidLineStatus(status) {
		return nil, NewValidationError("status", "unknown line status")
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	var completedAt *time.Time
	if status == models.LineStatusCompleted {
		now := timeutil.Now()
		completedAt = &now
	}

	if err := s.Repo.UpdateStatus(ctx, id, status, completedAt); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a line along with its drum usage rows; the affected drums'
// remaining quantities reconcile automatically.
func (s *LineService) Delete(ctx context.Context, actor auth.Actor, id int) error {
	if err := requireRole(actor, auth.RoleModerator); err != nil {
		return err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}
