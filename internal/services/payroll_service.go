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

type PayrollService struct {
	Repo          *repositories.PayrollRepository
	Users         *repositories.UserRepository
	Lines         *repositories.LineRepository
	Notifications *NotificationService
}

func NewPayrollService(repo *repositories.PayrollRepository, users *repositories.UserRepository, lines *repositories.LineRepository, notifications *NotificationService) *PayrollService {
	return &PayrollService{
		Repo:          repo,
		Users:         users,
		Lines:         lines,
		Notifications: notifications,
	}
}

// ---- Periods ----

// CreatePeriod opens a payroll period covering one calendar month. Admin
// only; one period per month/year.
func (s *PayrollService) CreatePeriod(ctx context.Context, actor auth.Actor, req *models.CreatePeriodRequest) (*models.PayrollPeriod, error) {
	if err := requireRole(actor, auth.RoleAdmin); err != nil {
		return nil, err
	}
	if req.Month < 1 || req.Month > 12 {
		return nil, NewValidationError("month", "must be between 1 and 12")
	}
	if req.Year < 2000 || req.Year > 2100 {
		return nil, NewValidationError("year", "out of range")
	}

	start, end := timeutil.MonthRange(req.Year, time.Month(req.Month))
	period := &models.PayrollPeriod{
		Month:     req.Month,
		Year:      req.Year,
		StartDate: start,
		EndDate:   end,
		Status:    models.PeriodStatusDraft,
		CreatedBy: actor.ID,
	}
	if err := s.Repo.CreatePeriod(ctx, period); err != nil {
		return nil, err
	}
	return period, nil
}

func (s *PayrollService) GetPeriod(ctx context.Context, id int) (*models.PayrollPeriod, error) {
	p, err := s.Repo.GetPeriod(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *PayrollService) ListPeriods(ctx context.Context) ([]*models.PayrollPeriod, error) {
	return s.Repo.ListPeriods(ctx)
}

// UpdatePeriodStatus moves a period forward through
// draft → processing → approved → paid. Admin only; a paid period refuses
// new payments, so closing one is the end of that month's run.
func (s *PayrollService) UpdatePeriodStatus(ctx context.Context, actor auth.Actor, id int, status string) (*models.PayrollPeriod, error) {
	if err := requireRole(actor, auth.RoleAdmin); err != nil {
		return nil, err
	}
	if !models.ValidPeriodStatus(status) {
		return nil, NewValidationError("status", "unknown period status")
	}

	period, err := s.Repo.UpdatePeriodStatus(ctx, id, status)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrNotFound
		case errors.Is(err, repositories.ErrInvalidTransition):
			return nil, ErrConflict
		}
		return nil, err
	}
	cache.Invalidate(ctx, cache.DashboardSummaryKey)
	return period, nil
}

// ---- Payments ----

// CreatePayment computes a worker's pay for a period: derives the base from
// the worker's payment type (per-line workers get their completed line count
// inside the period window times their rate), injects the statutory EPF/ETF
// deductions from the current settings, and persists everything in one
// transaction.
func (s *PayrollService) CreatePayment(ctx context.Context, actor auth.Actor, req *models.CreateWorkerPaymentRequest) (*models.WorkerPayment, error) {
	if err := requireRole(actor, auth.RoleModerator); err != nil {
		return nil, err
	}

	period, err := s.GetPeriod(ctx, req.PeriodID)
	if err != nil {
		return nil, err
	}
	if period.Status == models.PeriodStatusPaid {
		return nil, ErrConflict
	}

	worker, err := s.Users.Get(ctx, req.WorkerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var linesCompleted int
	var perLineRate *float64
	if worker.PaymentType == models.PaymentTypePerLine {
		linesCompleted, err = s.Lines.CountCompletedForWorker(ctx, worker.ID, period.StartDate, period.EndDate)
		if err != nil {
			return nil, err
		}
		rate := worker.PerLineRate
		perLineRate = &rate
	}

	base := models.DeriveBaseAmount(worker.PaymentType, linesCompleted, worker.PerLineRate, worker.MonthlyRate)

	settings, err := s.Repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	adjustments := models.StatutoryAdjustments(base, *settings)
	for i := range adjustments {
		adjustments[i].CreatedBy = actor.ID
	}
	bonus, deduction, net := models.RecomputeTotals(base, adjustments)

	payment := &models.WorkerPayment{
		PeriodID:        period.ID,
		WorkerID:        worker.ID,
		PaymentType:     worker.PaymentType,
		LinesCompleted:  linesCompleted,
		PerLineRate:     perLineRate,
		BaseAmount:      base,
		BonusAmount:     bonus,
		DeductionAmount: deduction,
		NetAmount:       net,
		Status:          models.PaymentStatusCalculated,
	}
	if err := s.Repo.CreatePayment(ctx, payment, adjustments); err != nil {
		return nil, err
	}

	metrics.PaymentsComputed.WithLabelValues(worker.PaymentType).Inc()
	cache.Invalidate(ctx, cache.DashboardSummaryKey)
	payment.WorkerName = worker.Name
	return payment, nil
}

func (s *PayrollService) GetPayment(ctx context.Context, id int) (*models.WorkerPayment, error) {
	p, err := s.Repo.GetPayment(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *PayrollService) ListPayments(ctx context.Context, periodID int) ([]*models.WorkerPayment, error) {
	if _, err := s.GetPeriod(ctx, periodID); err != nil {
		return nil, err
	}
	return s.Repo.ListPaymentsByPeriod(ctx, periodID)
}

func (s *PayrollService) ListAdjustments(ctx context.Context, paymentID int) ([]models.PayrollAdjustment, error) {
	if _, err := s.GetPayment(ctx, paymentID); err != nil {
		return nil, err
	}
	return s.Repo.ListAdjustments(ctx, paymentID)
}

// AddAdjustment attaches a bonus or deduction to a payment; the payment's
// totals are recomputed from the surviving rows in the same transaction.
func (s *PayrollService) AddAdjustment(ctx context.Context, actor auth.Actor, req *models.CreateAdjustmentRequest) (*models.PayrollAdjustment, error) {
	if err := requireRole(actor, auth.RoleModerator); err != nil {
		return nil, err
	}
	if req.Type != models.AdjustmentBonus && req.Type != models.AdjustmentDeduction {
		return nil, NewValidationError("type", "must be bonus or deduction")
	}
	if req.Amount <= 0 {
		return nil, NewValidationError("amount", "must be positive")
	}
	if req.Category == "" {
		req.Category = models.AdjCategoryOther
	}

	adj := &models.PayrollAdjustment{
		WorkerPaymentID: req.WorkerPaymentID,
		Type:            req.Type,
		Category:        req.Category,
		Description:     req.Description,
		Amount:          req.Amount,
		CreatedBy:       actor.ID,
	}
	if err := s.Repo.AddAdjustment(ctx, adj); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrNotFound
		case errors.Is(err, repositories.ErrPaymentLocked):
			return nil, ErrConflict
		}
		return nil, err
	}
	cache.Invalidate(ctx, cache.DashboardSummaryKey)
	return adj, nil
}

// DeleteAdjustment removes an adjustment; totals recompute in the same
// transaction, so deleting a deduction raises the net immediately.
func (s *PayrollService) DeleteAdjustment(ctx context.Context, actor auth.Actor, adjustmentID int) error {
	if err := requireRole(actor, auth.RoleModerator); err != nil {
		return err
	}
	err := s.Repo.DeleteAdjustment(ctx, adjustmentID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case errors.Is(err, repositories.ErrPaymentLocked):
		return ErrConflict
	}
	if err == nil {
		cache.Invalidate(ctx, cache.DashboardSummaryKey)
	}
	return err
}

// UpdatePaymentStatus moves a payment along calculated → approved → paid
// (or calculated → paid directly). Marking paid requires admin, stamps
// paid_at and records the payment method and reference.
func (s *PayrollService) UpdatePaymentStatus(ctx context.Context, actor auth.Actor, id int, req *models.UpdatePaymentStatusRequest) (*models.WorkerPayment, error) {
	required := auth.RoleModerator
	if req.Status == models.PaymentStatusPaid {
		required = auth.RoleAdmin
	}
	if err := requireRole(actor, required); err != nil {
		return nil, err
	}

	if req.Status != models.PaymentStatusApproved && req.Status != models.PaymentStatusPaid {
		return nil, NewValidationError("status", "must be approved or paid")
	}

	var paidAt *time.Time
	if req.Status == models.PaymentStatusPaid {
		now := timeutil.Now()
		paidAt = &now
	}

	payment, err := s.Repo.UpdatePaymentStatus(ctx, id, req.Status, req.PaymentMethod, req.PaymentRef, paidAt)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrNotFound
		case errors.Is(err, repositories.ErrInvalidTransition):
			return nil, ErrConflict
		}
		return nil, err
	}

	s.Notifications.Notify(ctx, models.NotificationPaymentStatus,
		fmt.Sprintf("Payment for %s is now %s (Rs. %.2f)", payment.WorkerName, payment.Status, payment.NetAmount),
		&payment.ID)
	cache.Invalidate(ctx, cache.DashboardSummaryKey)
	return payment, nil
}

// ---- Settings ----

func (s *PayrollService) GetSettings(ctx context.Context) (*models.PayrollSettings, error) {
	return s.Repo.GetSettings(ctx)
}

func (s *PayrollService) UpdateSettings(ctx context.Context, actor auth.Actor, req *models.UpdatePayrollSettingsRequest) (*models.PayrollSettings, error) {
	if err := requireRole(actor, auth.RoleAdmin); err != nil {
		return nil, err
	}
	if req.EPFPercentage < 0 || req.EPFPercentage > 100 ||
		req.ETFPercentage < 0 || req.ETFPercentage > 100 ||
		req.TaxPercentage < 0 || req.TaxPercentage > 100 {
		return nil, NewValidationError("", "percentages must be between 0 and 100")
	}

	settings, err := s.Repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	settings.EPFEnabled = req.EPFEnabled
	settings.EPFPercentage = req.EPFPercentage
	settings.ETFEnabled = req.ETFEnabled
	settings.ETFPercentage = req.ETFPercentage
	settings.TaxEnabled = req.TaxEnabled
	settings.TaxPercentage = req.TaxPercentage

	if err := s.Repo.UpdateSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
