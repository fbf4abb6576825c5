package repositories

import (
	"context"
	"errors"
	"time"

	"fieldops-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInvalidTransition rejects a payment status change not allowed from the
// row's current status.
var ErrInvalidTransition = errors.New("invalid payment status transition")

// ErrPaymentLocked rejects adjustment changes on a paid payment.
var ErrPaymentLocked = errors.New("payment is paid and can no longer be adjusted")

type PayrollRepository struct {
	DB *pgxpool.Pool
}

func NewPayrollRepository(db *pgxpool.Pool) *PayrollRepository {
	return &PayrollRepository{DB: db}
}

// ---- Periods ----

func (r *PayrollRepository) CreatePeriod(ctx context.Context, p *models.PayrollPeriod) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO payroll_periods(month, year, start_date, end_date, status, created_by)
		 VALUES($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		p.Month, p.Year, p.StartDate, p.EndDate, p.Status, p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PayrollRepository) GetPeriod(ctx context.Context, id int) (*models.PayrollPeriod, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, month, year, start_date, end_date, status, total_amount, COALESCE(created_by, 0), created_at, updated_at
		 FROM payroll_periods WHERE id=$1`, id)

	var p models.PayrollPeriod
	err := row.Scan(&p.ID, &p.Month, &p.Year, &p.StartDate, &p.EndDate, &p.Status,
		&p.TotalAmount, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PayrollRepository) ListPeriods(ctx context.Context) ([]*models.PayrollPeriod, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, month, year, start_date, end_date, status, total_amount, COALESCE(created_by, 0), created_at, updated_at
		 FROM payroll_periods ORDER BY year DESC, month DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []*models.PayrollPeriod
	for rows.Next() {
		var p models.PayrollPeriod
		err := rows.Scan(&p.ID, &p.Month, &p.Year, &p.StartDate, &p.EndDate, &p.Status,
			&p.TotalAmount, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		periods = append(periods, &p)
	}
	return periods, rows.Err()
}

// UpdatePeriodStatus advances a period through its lifecycle. The row is
// locked and the transition checked against the current status, so two
// concurrent updates cannot both move the period.
func (r *PayrollRepository) UpdatePeriodStatus(ctx context.Context, id int, status string) (*models.PayrollPeriod, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var current string
	err = tx.QueryRow(ctx,
		`SELECT status FROM payroll_periods WHERE id=$1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		return nil, err
	}
	if !models.ValidPeriodTransition(current, status) {
		return nil, ErrInvalidTransition
	}

	var p models.PayrollPeriod
	err = tx.QueryRow(ctx,
		`UPDATE payroll_periods SET status=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2
		 RETURNING id, month, year, start_date, end_date, status, total_amount, COALESCE(created_by, 0), created_at, updated_at`,
		status, id,
	).Scan(&p.ID, &p.Month, &p.Year, &p.StartDate, &p.EndDate, &p.Status,
		&p.TotalAmount, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}

// ---- Worker payments ----

const paymentColumns = `
	p.id, p.period_id, p.worker_id, COALESCE(u.name, ''), p.payment_type,
	p.lines_completed, p.per_line_rate, p.base_amount, p.bonus_amount,
	p.deduction_amount, p.net_amount, p.status, p.paid_at,
	p.payment_method, p.payment_ref, p.created_at, p.updated_at`

func scanPayment(row interface{ Scan(...any) error }) (*models.WorkerPayment, error) {
	var p models.WorkerPayment
	err := row.Scan(&p.ID, &p.PeriodID, &p.WorkerID, &p.WorkerName, &p.PaymentType,
		&p.LinesCompleted, &p.PerLineRate, &p.BaseAmount, &p.BonusAmount,
		&p.DeductionAmount, &p.NetAmount, &p.Status, &p.PaidAt,
		&p.PaymentMethod, &p.PaymentRef, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePayment persists a computed payment together with its initial
// adjustment rows (the statutory EPF/ETF deductions) and refreshes the
// period total — all in one transaction. The bonus, deduction and net
// figures must already be folded into p by the caller.
func (r *PayrollRepository) CreatePayment(ctx context.Context, p *models.WorkerPayment, adjustments []models.PayrollAdjustment) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO worker_payments(period_id, worker_id, payment_type, lines_completed, per_line_rate,
			base_amount, bonus_amount, deduction_amount, net_amount, status)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		p.PeriodID, p.WorkerID, p.PaymentType, p.LinesCompleted, p.PerLineRate,
		p.BaseAmount, p.BonusAmount, p.DeductionAmount, p.NetAmount, p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return err
	}

	for i := range adjustments {
		adj := &adjustments[i]
		adj.WorkerPaymentID = p.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO payroll_adjustments(worker_payment_id, type, category, description, amount, created_by)
			 VALUES($1, $2, $3, $4, $5, $6)
			 RETURNING id, created_at`,
			adj.WorkerPaymentID, adj.Type, adj.Category, adj.Description, adj.Amount, adj.CreatedBy,
		).Scan(&adj.ID, &adj.CreatedAt)
		if err != nil {
			return err
		}
	}

	if err := refreshPeriodTotal(ctx, tx, p.PeriodID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PayrollRepository) GetPayment(ctx context.Context, id int) (*models.WorkerPayment, error) {
	return scanPayment(r.DB.QueryRow(ctx,
		`SELECT `+paymentColumns+`
		 FROM worker_payments p
		 JOIN users u ON u.id = p.worker_id
		 WHERE p.id=$1`, id))
}

func (r *PayrollRepository) ListPaymentsByPeriod(ctx context.Context, periodID int) ([]*models.WorkerPayment, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+paymentColumns+`
		 FROM worker_payments p
		 JOIN users u ON u.id = p.worker_id
		 WHERE p.period_id=$1 ORDER BY u.name`, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.WorkerPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *PayrollRepository) ListAdjustments(ctx context.Context, paymentID int) ([]models.PayrollAdjustment, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, worker_payment_id, type, category, description, amount, COALESCE(created_by, 0), created_at
		 FROM payroll_adjustments WHERE worker_payment_id=$1 ORDER BY id`, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var adjs []models.PayrollAdjustment
	for rows.Next() {
		var a models.PayrollAdjustment
		err := rows.Scan(&a.ID, &a.WorkerPaymentID, &a.Type, &a.Category,
			&a.Description, &a.Amount, &a.CreatedBy, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		adjs = append(adjs, a)
	}
	return adjs, rows.Err()
}

// AddAdjustment inserts an adjustment and recomputes the payment's totals
// from the surviving rows inside the same transaction. Paid payments are
// locked.
func (r *PayrollRepository) AddAdjustment(ctx context.Context, adj *models.PayrollAdjustment) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status string
	var periodID int
	err = tx.QueryRow(ctx,
		`SELECT status, period_id FROM worker_payments WHERE id=$1 FOR UPDATE`,
		adj.WorkerPaymentID).Scan(&status, &periodID)
	if err != nil {
		return err
	}
	if status == models.PaymentStatusPaid {
		return ErrPaymentLocked
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO payroll_adjustments(worker_payment_id, type, category, description, amount, created_by)
		 VALUES($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		adj.WorkerPaymentID, adj.Type, adj.Category, adj.Description, adj.Amount, adj.CreatedBy,
	).Scan(&adj.ID, &adj.CreatedAt)
	if err != nil {
		return err
	}

	if err := recomputePaymentTotals(ctx, tx, adj.WorkerPaymentID); err != nil {
		return err
	}
	if err := refreshPeriodTotal(ctx, tx, periodID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DeleteAdjustment removes an adjustment and recomputes the payment's totals
// in the same transaction, so a deleted deduction raises the net immediately.
func (r *PayrollRepository) DeleteAdjustment(ctx context.Context, adjustmentID int) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var paymentID int
	err = tx.QueryRow(ctx,
		`SELECT worker_payment_id FROM payroll_adjustments WHERE id=$1`, adjustmentID,
	).Scan(&paymentID)
	if err != nil {
		return err
	}

	var status string
	var periodID int
	err = tx.QueryRow(ctx,
		`SELECT status, period_id FROM worker_payments WHERE id=$1 FOR UPDATE`, paymentID,
	).Scan(&status, &periodID)
	if err != nil {
		return err
	}
	if status == models.PaymentStatusPaid {
		return ErrPaymentLocked
	}

	if _, err := tx.Exec(ctx, `DELETE FROM payroll_adjustments WHERE id=$1`, adjustmentID); err != nil {
		return err
	}

	if err := recomputePaymentTotals(ctx, tx, paymentID); err != nil {
		return err
	}
	if err := refreshPeriodTotal(ctx, tx, periodID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdatePaymentStatus moves a payment through calculated → approved → paid.
// The transition is validated under a row lock so concurrent updates cannot
// race past it; nothing moves backwards.
func (r *PayrollRepository) UpdatePaymentStatus(ctx context.Context, id int, status, method, ref string, paidAt *time.Time) (*models.WorkerPayment, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var current string
	err = tx.QueryRow(ctx,
		`SELECT status FROM worker_payments WHERE id=$1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		return nil, err
	}
	if !models.ValidPaymentTransition(current, status) {
		return nil, ErrInvalidTransition
	}

	_, err = tx.Exec(ctx,
		`UPDATE worker_payments SET status=$1, payment_method=$2, payment_ref=$3, paid_at=$4, updated_at=CURRENT_TIMESTAMP
		 WHERE id=$5`,
		status, method, ref, paidAt, id)
	if err != nil {
		return nil, err
	}

	p, err := scanPayment(tx.QueryRow(ctx,
		`SELECT `+paymentColumns+`
		 FROM worker_payments p
		 JOIN users u ON u.id = p.worker_id
		 WHERE p.id=$1`, id))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// recomputePaymentTotals rebuilds bonus/deduction/net from the adjustment
// rows. net = base + Σbonus − Σdeduction.
func recomputePaymentTotals(ctx context.Context, tx pgx.Tx, paymentID int) error {
	_, err := tx.Exec(ctx,
		`UPDATE worker_payments SET
			bonus_amount = COALESCE((SELECT SUM(amount) FROM payroll_adjustments WHERE worker_payment_id=$1 AND type=$2), 0),
			deduction_amount = COALESCE((SELECT SUM(amount) FROM payroll_adjustments WHERE worker_payment_id=$1 AND type=$3), 0),
			updated_at = CURRENT_TIMESTAMP
		 WHERE id=$1`,
		paymentID, models.AdjustmentBonus, models.AdjustmentDeduction)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx,
		`UPDATE worker_payments SET net_amount = base_amount + bonus_amount - deduction_amount WHERE id=$1`,
		paymentID)
	return err
}

func refreshPeriodTotal(ctx context.Context, tx pgx.Tx, periodID int) error {
	_, err := tx.Exec(ctx,
		`UPDATE payroll_periods SET
			total_amount = COALESCE((SELECT SUM(net_amount) FROM worker_payments WHERE period_id=$1), 0),
			updated_at = CURRENT_TIMESTAMP
		 WHERE id=$1`, periodID)
	return err
}

// ---- Settings ----

// GetSettings returns the statutory settings row, creating it with defaults
// on first read.
func (r *PayrollRepository) GetSettings(ctx context.Context) (*models.PayrollSettings, error) {
	var s models.PayrollSettings
	err := r.DB.QueryRow(ctx,
		`SELECT id, epf_enabled, epf_percentage, etf_enabled, etf_percentage, tax_enabled, tax_percentage, updated_at
		 FROM payroll_settings ORDER BY id LIMIT 1`).Scan(
		&s.ID, &s.EPFEnabled, &s.EPFPercentage, &s.ETFEnabled, &s.ETFPercentage,
		&s.TaxEnabled, &s.TaxPercentage, &s.UpdatedAt)
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	defaults := models.DefaultPayrollSettings()
	err = r.DB.QueryRow(ctx,
		`INSERT INTO payroll_settings(epf_enabled, epf_percentage, etf_enabled, etf_percentage, tax_enabled, tax_percentage)
		 VALUES($1, $2, $3, $4, $5, $6)
		 RETURNING id, epf_enabled, epf_percentage, etf_enabled, etf_percentage, tax_enabled, tax_percentage, updated_at`,
		defaults.EPFEnabled, defaults.EPFPercentage, defaults.ETFEnabled, defaults.ETFPercentage,
		defaults.TaxEnabled, defaults.TaxPercentage,
	).Scan(&s.ID, &s.EPFEnabled, &s.EPFPercentage, &s.ETFEnabled, &s.ETFPercentage,
		&s.TaxEnabled, &s.TaxPercentage, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PayrollRepository) UpdateSettings(ctx context.Context, s *models.PayrollSettings) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE payroll_settings SET epf_enabled=$1, epf_percentage=$2, etf_enabled=$3, etf_percentage=$4,
			tax_enabled=$5, tax_percentage=$6, updated_at=CURRENT_TIMESTAMP
		 WHERE id=$7`,
		s.EPFEnabled, s.EPFPercentage, s.ETFEnabled, s.ETFPercentage, s.TaxEnabled, s.TaxPercentage, s.ID)
	return err
}

// PayrollSummary is the dashboard aggregate over the latest period.
type PayrollSummary struct {
	LatestPeriod *models.PayrollPeriod `json:"latest_period,omitempty"`
	PendingCount int                   `json:"pending_count"`
	PaidCount    int                   `json:"paid_count"`
}

func (r *PayrollRepository) Summary(ctx context.Context) (*PayrollSummary, error) {
	var s PayrollSummary

	periods, err := r.ListPeriods(ctx)
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return &s, nil
	}
	s.LatestPeriod = periods[0]

	err = r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE status <> $2),
		        COUNT(*) FILTER (WHERE status = $2)
		 FROM worker_payments WHERE period_id=$1`,
		s.LatestPeriod.ID, models.PaymentStatusPaid).Scan(&s.PendingCount, &s.PaidCount)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
