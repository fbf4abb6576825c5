package models

import "time"

// Payroll period statuses
const (
	PeriodStatusDraft      = "draft"
	PeriodStatusProcessing = "processing"
	PeriodStatusApproved   = "approved"
	PeriodStatusPaid       = "paid"
)

// Worker payment statuses
const (
	PaymentStatusCalculated = "calculated"
	PaymentStatusApproved   = "approved"
	PaymentStatusPaid       = "paid"
)

// Payment types
const (
	PaymentTypePerLine      = "per_line"
	PaymentTypeFixedMonthly = "fixed_monthly"
)

// Adjustment types
const (
	AdjustmentBonus     = "bonus"
	AdjustmentDeduction = "deduction"
)

// Adjustment categories
const (
	AdjCategoryPerformance = "performance"
	AdjCategoryOvertime    = "overtime"
	AdjCategoryAdvance     = "advance"
	AdjCategoryEPF         = "epf"
	AdjCategoryETF         = "etf"
	AdjCategoryOther       = "other"
)

type PayrollPeriod struct {
	ID          int       `json:"id"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Status      string    `json:"status"`
	TotalAmount float64   `json:"total_amount"`
	CreatedBy   int       `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreatePeriodRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// WorkerPayment is one worker's pay for one period. BonusAmount,
// DeductionAmount and NetAmount are always recomputed from the surviving
// adjustment rows inside the same transaction as any adjustment change —
// never patched independently.
type WorkerPayment struct {
	ID              int        `json:"id"`
	PeriodID        int        `json:"period_id"`
	WorkerID        int        `json:"worker_id"`
	WorkerName      string     `json:"worker_name,omitempty"`
	PaymentType     string     `json:"payment_type"`
	LinesCompleted  int        `json:"lines_completed"`
	PerLineRate     *float64   `json:"per_line_rate,omitempty"`
	BaseAmount      float64    `json:"base_amount"`
	BonusAmount     float64    `json:"bonus_amount"`
	DeductionAmount float64    `json:"deduction_amount"`
	NetAmount       float64    `json:"net_amount"`
	Status          string     `json:"status"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	PaymentMethod   string     `json:"payment_method,omitempty"`
	PaymentRef      string     `json:"payment_ref,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type CreateWorkerPaymentRequest struct {
	PeriodID int `json:"period_id"`
	WorkerID int `json:"worker_id"`
}

type UpdatePeriodStatusRequest struct {
	Status string `json:"status"`
}

type UpdatePaymentStatusRequest struct {
	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method"`
	PaymentRef    string `json:"payment_ref"`
}

type PayrollAdjustment struct {
	ID              int       `json:"id"`
	WorkerPaymentID int       `json:"worker_payment_id"`
	Type            string    `json:"type"` // bonus or deduction
	Category        string    `json:"category"`
	Description     string    `json:"description"`
	Amount          float64   `json:"amount"`
	CreatedBy       int       `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
}

type CreateAdjustmentRequest struct {
	WorkerPaymentID int     `json:"worker_payment_id"`
	Type            string  `json:"type"`
	Category        string  `json:"category"`
	Description     string  `json:"description"`
	Amount          float64 `json:"amount"`
}

// PayrollSettings is the single statutory-deduction row, created lazily with
// Sri Lankan defaults (EPF 8%, ETF 3%, tax off) on first read.
type PayrollSettings struct {
	ID            int       `json:"id"`
	EPFEnabled    bool      `json:"epf_enabled"`
	EPFPercentage float64   `json:"epf_percentage"`
	ETFEnabled    bool      `json:"etf_enabled"`
	ETFPercentage float64   `json:"etf_percentage"`
	TaxEnabled    bool      `json:"tax_enabled"`
	TaxPercentage float64   `json:"tax_percentage"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type UpdatePayrollSettingsRequest struct {
	EPFEnabled    bool    `json:"epf_enabled"`
	EPFPercentage float64 `json:"epf_percentage"`
	ETFEnabled    bool    `json:"etf_enabled"`
	ETFPercentage float64 `json:"etf_percentage"`
	TaxEnabled    bool    `json:"tax_enabled"`
	TaxPercentage float64 `json:"tax_percentage"`
}

// DefaultPayrollSettings returns the lazily-created defaults.
func DefaultPayrollSettings() PayrollSettings {
	return PayrollSettings{
		EPFEnabled:    true,
		EPFPercentage: 8,
		ETFEnabled:    true,
		ETFPercentage: 3,
		TaxEnabled:    false,
		TaxPercentage: 0,
	}
}

// DeriveBaseAmount computes a payment's base: per-line workers earn
// linesCompleted × perLineRate; fixed-monthly workers earn their configured
// monthly rate regardless of line count.
func DeriveBaseAmount(paymentType string, linesCompleted int, perLineRate, monthlyRate float64) float64 {
	if paymentType == PaymentTypePerLine {
		return float64(linesCompleted) * perLineRate
	}
	return monthlyRate
}

// RecomputeTotals folds the surviving adjustments into the payment's bonus,
// deduction and net figures: net = base + Σbonus − Σdeduction.
func RecomputeTotals(baseAmount float64, adjustments []PayrollAdjustment) (bonus, deduction, net float64) {
	for _, adj := range adjustments {
		switch adj.Type {
		case AdjustmentBonus:
			bonus += adj.Amount
		case AdjustmentDeduction:
			deduction += adj.Amount
		}
	}
	net = baseAmount + bonus - deduction
	return bonus, deduction, net
}

// StatutoryAdjustments builds the automatic EPF/ETF deduction rows injected
// when a payment is created. Percentages apply to the base amount only.
func StatutoryAdjustments(baseAmount float64, settings PayrollSettings) []PayrollAdjustment {
	var adjs []PayrollAdjustment
	if settings.EPFEnabled && settings.EPFPercentage > 0 {
		adjs = append(adjs, PayrollAdjustment{
			Type:        AdjustmentDeduction,
			Category:    AdjCategoryEPF,
			Description: "EPF employee contribution",
			Amount:      baseAmount * settings.EPFPercentage / 100,
		})
	}
	if settings.ETFEnabled && settings.ETFPercentage > 0 {
		adjs = append(adjs, PayrollAdjustment{
			Type:        AdjustmentDeduction,
			Category:    AdjCategoryETF,
			Description: "ETF employee contribution",
			Amount:      baseAmount * settings.ETFPercentage / 100,
		})
	}
	return adjs
}

// ValidPaymentTransition reports whether a payment status change is allowed:
// calculated → approved → paid, or calculated → paid directly. Nothing moves
// backwards.
func ValidPaymentTransition(from, to string) bool {
	switch from {
	case PaymentStatusCalculated:
		return to == PaymentStatusApproved || to == PaymentStatusPaid
	case PaymentStatusApproved:
		return to == PaymentStatusPaid
	}
	return false
}

var periodStatusRank = map[string]int{
	PeriodStatusDraft:      1,
	PeriodStatusProcessing: 2,
	PeriodStatusApproved:   3,
	PeriodStatusPaid:       4,
}

// ValidPeriodStatus reports whether s is one of the four period statuses.
func ValidPeriodStatus(s string) bool {
	_, ok := periodStatusRank[s]
	return ok
}

// ValidPeriodTransition reports whether a period status change is allowed.
// Periods only move forward through draft → processing → approved → paid;
// stages may be skipped but never revisited.
func ValidPeriodTransition(from, to string) bool {
	f, ok := periodStatusRank[from]
	if !ok {
		return false
	}
	t, ok := periodStatusRank[to]
	if !ok {
		return false
	}
	return t > f
}
