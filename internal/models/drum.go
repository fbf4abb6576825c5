package models

import "time"

// Wastage calculation methods
const (
	WastageAutomatic      = "automatic"
	WastageManualOverride = "manual_override"
)

// Drum statuses
const (
	DrumStatusActive   = "active"
	DrumStatusDepleted = "depleted"
	DrumStatusRetired  = "retired"
)

// DrumTracking is a spool of drop-wire cable issued via an inventory invoice
// and drawn down across installation jobs. The remaining quantity is never
// stored as a mutable counter: it is derived from the usage history on every
// read, so the usage log stays the single source of truth.
type DrumTracking struct {
	ID                       int       `json:"id"`
	DrumNumber               string    `json:"drum_number"`
	ItemID                   int       `json:"item_id"`
	ItemName                 string    `json:"item_name,omitempty"`
	InitialQuantity          float64   `json:"initial_quantity"`
	WastageCalculationMethod string    `json:"wastage_calculation_method"`
	ManualWastageOverride    *float64  `json:"manual_wastage_override,omitempty"`
	Status                   string    `json:"status"`
	ReceivedDate             time.Time `json:"received_date"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`

	// Derived on read, never persisted.
	TotalUsed       float64 `json:"total_used"`
	CurrentQuantity float64 `json:"current_quantity"`
	Wastage         float64 `json:"wastage"`
}

// DrumUsage is one cable draw against a drum, normally tied to a line
// installation. Deleting a line deletes its usage rows; the drum's remaining
// quantity reconciles by construction since it is derived from this log.
type DrumUsage struct {
	ID                int       `json:"id"`
	DrumID            int       `json:"drum_id"`
	LineDetailsID     *int      `json:"line_details_id,omitempty"`
	QuantityUsed      float64   `json:"quantity_used"`
	UsageDate         time.Time `json:"usage_date"`
	WastageCalculated float64   `json:"wastage_calculated"`
	CreatedAt         time.Time `json:"created_at"`
}

type RecordDrumUsageRequest struct {
	LineDetailsID *int    `json:"line_details_id"`
	QuantityUsed  float64 `json:"quantity_used"`
	UsageDate     string  `json:"usage_date"` // YYYY-MM-DD, defaults to today
}

type UpdateDrumSettingsRequest struct {
	WastageCalculationMethod string   `json:"wastage_calculation_method"`
	ManualWastageOverride    *float64 `json:"manual_wastage_override"`
	Status                   *string  `json:"status"`
}

// Derive fills the drum's derived fields from the summed usage history.
// Remaining is clamped at 0 so the currentQuantity ≤ initialQuantity
// invariant always holds, and the reported status flips to depleted once the
// drum is exhausted (a retired drum stays retired).
func (d *DrumTracking) Derive(totalUsed float64) {
	d.TotalUsed = totalUsed

	remaining := d.InitialQuantity - totalUsed
	if remaining < 0 {
		remaining = 0
	}
	d.CurrentQuantity = remaining

	d.Wastage = DrumWastage(d.InitialQuantity, totalUsed, d.WastageCalculationMethod, d.ManualWastageOverride)

	if d.Status == DrumStatusActive && remaining <= 0 {
		d.Status = DrumStatusDepleted
	}
}

// DrumWastage computes the wastage figure for a drum. Automatic mode reports
// the cable issued but unaccounted for once all usage is tallied:
// initial − used (clamped at 0). Manual override returns the stored value
// verbatim, ignoring usage entirely.
func DrumWastage(initial, totalUsed float64, method string, override *float64) float64 {
	if method == WastageManualOverride && override != nil {
		return *override
	}
	w := initial - totalUsed
	if w < 0 {
		return 0
	}
	return w
}
