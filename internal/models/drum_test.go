package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveQuantityInvariant(t *testing.T) {
	d := DrumTracking{InitialQuantity: 500, WastageCalculationMethod: WastageAutomatic, Status: DrumStatusActive}

	// remaining never exceeds initial for any usage total
	for _, used := range []float64{0, 120.5, 499.99, 500, 730} {
		d.Status = DrumStatusActive
		d.Derive(used)
		assert.LessOrEqual(t, d.CurrentQuantity, d.InitialQuantity, "used=%v", used)
		assert.GreaterOrEqual(t, d.CurrentQuantity, 0.0, "used=%v", used)
	}
}

func TestDeriveRemaining(t *testing.T) {
	d := DrumTracking{InitialQuantity: 500, WastageCalculationMethod: WastageAutomatic, Status: DrumStatusActive}
	d.Derive(320)
	assert.Equal(t, 320.0, d.TotalUsed)
	assert.Equal(t, 180.0, d.CurrentQuantity)
	assert.Equal(t, DrumStatusActive, d.Status)
}

func TestDeriveDepletion(t *testing.T) {
	d := DrumTracking{InitialQuantity: 500, WastageCalculationMethod: WastageAutomatic, Status: DrumStatusActive}
	d.Derive(500)
	assert.Equal(t, 0.0, d.CurrentQuantity)
	assert.Equal(t, DrumStatusDepleted, d.Status)

	// a retired drum stays retired even at zero
	d = DrumTracking{InitialQuantity: 500, Status: DrumStatusRetired}
	d.Derive(500)
	assert.Equal(t, DrumStatusRetired, d.Status)
}

func TestDrumWastageAutomatic(t *testing.T) {
	assert.Equal(t, 180.0, DrumWastage(500, 320, WastageAutomatic, nil))
	assert.Equal(t, 0.0, DrumWastage(500, 500, WastageAutomatic, nil))
	// over-drawn drums report zero, not negative wastage
	assert.Equal(t, 0.0, DrumWastage(500, 620, WastageAutomatic, nil))
}

func TestDrumWastageManualOverride(t *testing.T) {
	override := 42.5
	// override is returned verbatim, usage ignored
	assert.Equal(t, 42.5, DrumWastage(500, 10, WastageManualOverride, &override))
	assert.Equal(t, 42.5, DrumWastage(500, 499, WastageManualOverride, &override))

	// manual_override with a nil override falls back to automatic
	assert.Equal(t, 180.0, DrumWastage(500, 320, WastageManualOverride, nil))
}

func TestApplyWasteFloorsAtZero(t *testing.T) {
	assert.Equal(t, 2.0, ApplyWaste(5, 3))
	assert.Equal(t, 0.0, ApplyWaste(5, 5))
	// stock=5, waste qty=8 → 0, not −3
	assert.Equal(t, 0.0, ApplyWaste(5, 8))
}

func TestWasteDeleteRestoresRecordedQuantity(t *testing.T) {
	// Deleting a waste entry puts the recorded quantity back on the item.
	stock := ApplyWaste(20, 7)
	assert.Equal(t, 13.0, stock)
	assert.Equal(t, 20.0, stock+7)

	// When the deduction floored at zero, restoring the recorded quantity
	// can legitimately leave more stock than before the entry: the floor
	// absorbed the difference and it is not recoverable.
	stock = ApplyWaste(5, 8)
	assert.Equal(t, 0.0, stock)
	assert.Equal(t, 8.0, stock+8)
}
