package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType selects how Invoice.Discount is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage" // Discount is a percent of the item total
	DiscountFixed      DiscountType = "fixed"      // Discount is an absolute amount
)

// DateLayout is the layout of Invoice.Date and Invoice.ConfirmationDate.
const DateLayout = "2006-01-02"

// ClientInfo identifies who the invoice is issued to.
type ClientInfo struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// LineItem is a single billed position.
type LineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"gte=0"`
	Preset      string          `json:"preset,omitempty"` // Preset key the item was filled from ("custom" when typed by hand)
}

// Invoice is an issued invoice as stored locally. Amounts derived from it
// (total, final, due, status) are never stored; see internal/invoice.
type Invoice struct {
	// Core identifiers
	ID            string `json:"id"`            // Opaque identifier, empty until first save
	InvoiceNumber string `json:"invoiceNumber"` // Zero-padded sequential number ("00001")

	// Header
	Date      string     `json:"date"`      // Issue date, YYYY-MM-DD
	PANNumber string     `json:"panNumber"` // Tax registration number printed on the receipt
	Client    ClientInfo `json:"client"`

	// Billing
	Items        []LineItem      `json:"items" validate:"dive"`
	Discount     decimal.Decimal `json:"discount" validate:"gte=0"`
	DiscountType DiscountType    `json:"discountType"`
	PaidAmount   decimal.Decimal `json:"paidAmount" validate:"gte=0"` // Cumulative amount received so far

	// Confirmation
	ConfirmationName string `json:"confirmationName"`
	ConfirmationDate string `json:"confirmationDate"`

	CreatedAt time.Time `json:"createdAt"`
}

// IsNew reports whether the invoice has never been saved.
func (i *Invoice) IsNew() bool {
	return i.ID == ""
}

// Clone returns a deep copy so callers can mutate it without touching stored state.
func (i Invoice) Clone() Invoice {
	if i.Items != nil {
		items := make([]LineItem, len(i.Items))
		copy(items, i.Items)
		i.Items = items
	}
	return i
}
