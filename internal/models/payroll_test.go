package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveBaseAmount(t *testing.T) {
	assert.Equal(t, 7500.0, DeriveBaseAmount(PaymentTypePerLine, 15, 500, 40000))
	assert.Equal(t, 0.0, DeriveBaseAmount(PaymentTypePerLine, 0, 500, 40000))
	// fixed monthly ignores line count entirely
	assert.Equal(t, 40000.0, DeriveBaseAmount(PaymentTypeFixedMonthly, 15, 500, 40000))
	assert.Equal(t, 40000.0, DeriveBaseAmount(PaymentTypeFixedMonthly, 0, 500, 40000))
}

func TestRecomputeTotals(t *testing.T) {
	adjs := []PayrollAdjustment{
		{Type: AdjustmentBonus, Amount: 500},
		{Type: AdjustmentDeduction, Amount: 200},
	}
	bonus, deduction, net := RecomputeTotals(10000, adjs)
	assert.Equal(t, 500.0, bonus)
	assert.Equal(t, 200.0, deduction)
	assert.Equal(t, 10300.0, net)

	// deleting the deduction and recomputing restores it
	bonus, deduction, net = RecomputeTotals(10000, adjs[:1])
	assert.Equal(t, 500.0, bonus)
	assert.Equal(t, 0.0, deduction)
	assert.Equal(t, 10500.0, net)

	// no adjustments: net equals base
	bonus, deduction, net = RecomputeTotals(10000, nil)
	assert.Equal(t, 0.0, bonus+deduction)
	assert.Equal(t, 10000.0, net)
}

func TestRecomputeTotalsIgnoresUnknownType(t *testing.T) {
	adjs := []PayrollAdjustment{{Type: "mystery", Amount: 999}}
	_, _, net := RecomputeTotals(1000, adjs)
	assert.Equal(t, 1000.0, net)
}

func TestStatutoryAdjustments(t *testing.T) {
	s := DefaultPayrollSettings()
	adjs := StatutoryAdjustments(50000, s)
	assert.Len(t, adjs, 2)
	assert.Equal(t, AdjCategoryEPF, adjs[0].Category)
	assert.Equal(t, AdjustmentDeduction, adjs[0].Type)
	assert.Equal(t, 4000.0, adjs[0].Amount) // 8% of 50000
	assert.Equal(t, AdjCategoryETF, adjs[1].Category)
	assert.Equal(t, 1500.0, adjs[1].Amount) // 3% of 50000

	// fold into the payment the way creation does
	_, deduction, net := RecomputeTotals(50000, adjs)
	assert.Equal(t, 5500.0, deduction)
	assert.Equal(t, 44500.0, net)
}

func TestStatutoryAdjustmentsDisabled(t *testing.T) {
	s := PayrollSettings{EPFEnabled: false, ETFEnabled: false}
	assert.Empty(t, StatutoryAdjustments(50000, s))

	// zero percentage behaves like disabled
	s = PayrollSettings{EPFEnabled: true, EPFPercentage: 0, ETFEnabled: true, ETFPercentage: 3}
	adjs := StatutoryAdjustments(10000, s)
	assert.Len(t, adjs, 1)
	assert.Equal(t, AdjCategoryETF, adjs[0].Category)
}

func TestValidPaymentTransition(t *testing.T) {
	assert.True(t, ValidPaymentTransition(PaymentStatusCalculated, PaymentStatusApproved))
	assert.True(t, ValidPaymentTransition(PaymentStatusCalculated, PaymentStatusPaid))
	assert.True(t, ValidPaymentTransition(PaymentStatusApproved, PaymentStatusPaid))

	// nothing moves backwards
	assert.False(t, ValidPaymentTransition(PaymentStatusPaid, PaymentStatusCalculated))
	assert.False(t, ValidPaymentTransition(PaymentStatusPaid, PaymentStatusApproved))
	assert.False(t, ValidPaymentTransition(PaymentStatusApproved, PaymentStatusCalculated))
	assert.False(t, ValidPaymentTransition(PaymentStatusPaid, PaymentStatusPaid))
}

func TestValidPeriodTransition(t *testing.T) {
	assert.True(t, ValidPeriodTransition(PeriodStatusDraft, PeriodStatusProcessing))
	assert.True(t, ValidPeriodTransition(PeriodStatusProcessing, PeriodStatusApproved))
	assert.True(t, ValidPeriodTransition(PeriodStatusApproved, PeriodStatusPaid))
	// skipping ahead is allowed
	assert.True(t, ValidPeriodTransition(PeriodStatusDraft, PeriodStatusPaid))

	// nothing moves backwards, and no self-transition
	assert.False(t, ValidPeriodTransition(PeriodStatusPaid, PeriodStatusDraft))
	assert.False(t, ValidPeriodTransition(PeriodStatusApproved, PeriodStatusProcessing))
	assert.False(t, ValidPeriodTransition(PeriodStatusDraft, PeriodStatusDraft))

	assert.False(t, ValidPeriodTransition("archived", PeriodStatusPaid))
	assert.False(t, ValidPeriodTransition(PeriodStatusDraft, "archived"))
}

func TestValidPeriodStatus(t *testing.T) {
	for _, s := range []string{PeriodStatusDraft, PeriodStatusProcessing, PeriodStatusApproved, PeriodStatusPaid} {
		assert.True(t, ValidPeriodStatus(s), s)
	}
	assert.False(t, ValidPeriodStatus("archived"))
	assert.False(t, ValidPeriodStatus(""))
}

func TestDefaultPayrollSettings(t *testing.T) {
	s := DefaultPayrollSettings()
	assert.True(t, s.EPFEnabled)
	assert.Equal(t, 8.0, s.EPFPercentage)
	assert.True(t, s.ETFEnabled)
	assert.Equal(t, 3.0, s.ETFPercentage)
	assert.False(t, s.TaxEnabled)
}
