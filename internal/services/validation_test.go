package services

import (
	"context"
	"testing"

	"fieldops-backend/internal/auth"
	"fieldops-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

var (
	moderator = auth.Actor{ID: 3, Role: auth.RoleModerator}
	admin     = auth.Actor{ID: 1, Role: auth.RoleAdmin}
)

func TestInvoiceValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewInvoiceService(nil, nil)

	t.Run("empty items rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, moderator, &models.CreateInvoiceRequest{})
		assert.True(t, IsValidation(err))
	})

	t.Run("non-positive quantity rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, moderator, &models.CreateInvoiceRequest{
			Items: []models.CreateInvoiceItemRequest{{ItemID: 1, QuantityIssued: 0}},
		})
		assert.True(t, IsValidation(err))
	})

	t.Run("negative unit cost rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, moderator, &models.CreateInvoiceRequest{
			Items: []models.CreateInvoiceItemRequest{{ItemID: 1, QuantityIssued: 5, UnitCost: -1}},
		})
		assert.True(t, IsValidation(err))
	})

	t.Run("bad date rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, moderator, &models.CreateInvoiceRequest{
			InvoiceDate: "31-12-2026",
			Items:       []models.CreateInvoiceItemRequest{{ItemID: 1, QuantityIssued: 5}},
		})
		assert.True(t, IsValidation(err))
	})
}

func TestWasteValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewWasteService(nil, nil)

	t.Run("empty batch rejected", func(t *testing.T) {
		_, err := svc.Report(ctx, moderator, &models.ReportWasteRequest{})
		assert.True(t, IsValidation(err))
	})

	t.Run("non-positive quantity rejected", func(t *testing.T) {
		_, err := svc.Report(ctx, moderator, &models.ReportWasteRequest{
			Entries: []models.WasteEntryRequest{{ItemID: 1, Quantity: -2}},
		})
		assert.True(t, IsValidation(err))
	})
}

func TestDrumValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewDrumService(nil, nil)

	t.Run("non-positive usage rejected", func(t *testing.T) {
		_, err := svc.RecordUsage(ctx, moderator, 1, &models.RecordDrumUsageRequest{QuantityUsed: 0})
		assert.True(t, IsValidation(err))
	})

	t.Run("manual override requires value", func(t *testing.T) {
		_, err := svc.UpdateSettings(ctx, moderator, 1, &models.UpdateDrumSettingsRequest{
			WastageCalculationMethod: models.WastageManualOverride,
		})
		assert.True(t, IsValidation(err))
	})

	t.Run("negative override rejected", func(t *testing.T) {
		override := -5.0
		_, err := svc.UpdateSettings(ctx, moderator, 1, &models.UpdateDrumSettingsRequest{
			WastageCalculationMethod: models.WastageManualOverride,
			ManualWastageOverride:    &override,
		})
		assert.True(t, IsValidation(err))
	})

	t.Run("unknown method rejected", func(t *testing.T) {
		_, err := svc.UpdateSettings(ctx, moderator, 1, &models.UpdateDrumSettingsRequest{
			WastageCalculationMethod: "guesswork",
		})
		assert.True(t, IsValidation(err))
	})

	t.Run("unknown list status rejected", func(t *testing.T) {
		_, err := svc.List(ctx, "melted")
		assert.True(t, IsValidation(err))
	})
}

func TestPayrollValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewPayrollService(nil, nil, nil, nil)

	t.Run("month out of range", func(t *testing.T) {
		_, err := svc.CreatePeriod(ctx, admin, &models.CreatePeriodRequest{Month: 13, Year: 2026})
		assert.True(t, IsValidation(err))
	})

	t.Run("adjustment type checked", func(t *testing.T) {
		_, err := svc.AddAdjustment(ctx, moderator, &models.CreateAdjustmentRequest{
			WorkerPaymentID: 1, Type: "refund", Amount: 100,
		})
		assert.True(t, IsValidation(err))
	})

	t.Run("adjustment amount positive", func(t *testing.T) {
		_, err := svc.AddAdjustment(ctx, moderator, &models.CreateAdjustmentRequest{
			WorkerPaymentID: 1, Type: models.AdjustmentBonus, Amount: 0,
		})
		assert.True(t, IsValidation(err))
	})

	t.Run("unknown period status rejected", func(t *testing.T) {
		_, err := svc.UpdatePeriodStatus(ctx, admin, 1, "archived")
		assert.True(t, IsValidation(err))
	})

	t.Run("settings percentages bounded", func(t *testing.T) {
		_, err := svc.UpdateSettings(ctx, admin, &models.UpdatePayrollSettingsRequest{EPFPercentage: 120})
		assert.True(t, IsValidation(err))
	})
}

func TestValidationErrorMessage(t *testing.T) {
	assert.Equal(t, "month: must be between 1 and 12",
		NewValidationError("month", "must be between 1 and 12").Error())
	assert.Equal(t, "at least one entry is required",
		NewValidationError("", "at least one entry is required").Error())
}
