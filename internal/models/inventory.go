package models

import "time"

// InventoryItem is a stocked material (cable, poles, clips, connectors...).
// CurrentStock is only ever mutated through invoice issuance and waste
// reporting, both inside single transactions, and is floored at zero on
// deduction.
type InventoryItem struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	CurrentStock float64   `json:"current_stock"`
	ReorderLevel float64   `json:"reorder_level"`
	SerialNo     *string   `json:"serial_no,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LowOnStock reports whether the item has fallen to or below its reorder level.
func (i *InventoryItem) LowOnStock() bool {
	return i.CurrentStock <= i.ReorderLevel
}

type CreateInventoryItemRequest struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	CurrentStock float64 `json:"current_stock"`
	ReorderLevel float64 `json:"reorder_level"`
	SerialNo     *string `json:"serial_no"`
}

// InventoryInvoice groups one or more issued line items. Issuing an invoice
// increments stock for every referenced item in one transaction.
type InventoryInvoice struct {
	ID            int       `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	InvoiceDate   time.Time `json:"invoice_date"`
	Supplier      string    `json:"supplier"`
	Notes         string    `json:"notes"`
	CreatedBy     int       `json:"created_by"`
	CreatedByName string    `json:"created_by_name,omitempty"` // Joined from users table
	ItemsCount    int       `json:"items_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type InventoryInvoiceItem struct {
	ID             int     `json:"id"`
	InvoiceID      int     `json:"invoice_id"`
	ItemID         int     `json:"item_id"`
	ItemName       string  `json:"item_name,omitempty"`
	QuantityIssued float64 `json:"quantity_issued"`
	UnitCost       float64 `json:"unit_cost"`
	DrumNumber     *string `json:"drum_number,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type CreateInvoiceRequest struct {
	InvoiceDate string                     `json:"invoice_date"` // YYYY-MM-DD, defaults to today
	Supplier    string                     `json:"supplier"`
	Notes       string                     `json:"notes"`
	Items       []CreateInvoiceItemRequest `json:"items"`
}

type CreateInvoiceItemRequest struct {
	ItemID         int     `json:"item_id"`
	QuantityIssued float64 `json:"quantity_issued"`
	UnitCost       float64 `json:"unit_cost"`
	DrumNumber     *string `json:"drum_number"`
}

// InvoiceWithItems includes the line items
type InvoiceWithItems struct {
	InventoryInvoice
	Items []InventoryInvoiceItem `json:"items"`
}

// WasteTracking records material lost in the field. Creating one decrements
// stock (floored at 0); deleting one restores stock by the recorded quantity.
type WasteTracking struct {
	ID             int       `json:"id"`
	ItemID         int       `json:"item_id"`
	ItemName       string    `json:"item_name,omitempty"`
	Quantity       float64   `json:"quantity"`
	WasteReason    string    `json:"waste_reason"`
	WasteDate      time.Time `json:"waste_date"`
	ReportedBy     int       `json:"reported_by"`
	ReportedByName string    `json:"reported_by_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ReportWasteRequest is a batch of waste entries recorded in one transaction.
type ReportWasteRequest struct {
	Entries []WasteEntryRequest `json:"entries"`
}

type WasteEntryRequest struct {
	ItemID      int     `json:"item_id"`
	Quantity    float64 `json:"quantity"`
	WasteReason string  `json:"waste_reason"`
	WasteDate   string  `json:"waste_date"` // YYYY-MM-DD, defaults to today
}

// ApplyWaste returns the stock remaining after deducting qty, floored at 0.
func ApplyWaste(stock, qty float64) float64 {
	remaining := stock - qty
	if remaining < 0 {
		return 0
	}
	return remaining
}
