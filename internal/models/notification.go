package models

import "time"

// Notification types
const (
	NotificationLowStock      = "low_stock"
	NotificationDrumDepleted  = "drum_depleted"
	NotificationPaymentStatus = "payment_status"
)

// Notification is a fire-and-forget event row surfaced on the dashboard.
// Creation failures are logged and swallowed; they never fail the operation
// that raised them.
type Notification struct {
	ID        int       `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	RefID     *int      `json:"ref_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
