// internal/domain/invoice/entity.go
package invoice

import (
	"time"

	"gorm.io/gorm"
)

// PaymentStatus tracks whether an invoice has been settled. It is
// independent of the order's fulfillment status.
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Valid reports whether the payment status is one of the known values.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPending, PaymentStatusPaid:
		return true
	}
	return false
}

// CustomerDetails is the billing snapshot frozen onto the invoice at
// creation time. Later changes to the user's profile never alter an
// issued invoice.
type CustomerDetails struct {
	FirstName string `gorm:"size:100" json:"firstName"`
	LastName  string `gorm:"size:100" json:"lastName"`
	Email     string `gorm:"size:255" json:"email"`
	Address   string `gorm:"size:512" json:"address"`
}

// Invoice represents the invoice entity. Exactly one invoice exists
// per order, enforced by the unique index on OrderID. TotalAmount is
// in minor currency units (cents).
type Invoice struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderID         uint            `gorm:"uniqueIndex;not null" json:"order_id"`
	UserID          uint            `gorm:"index;not null" json:"user_id"`
	InvoiceNumber   string          `gorm:"size:32;uniqueIndex;not null" json:"invoice_number"`
	TotalAmount     int64           `gorm:"not null" json:"total_amount"`
	IssuedAt        time.Time       `gorm:"not null" json:"issued_at"`
	PaymentStatus   PaymentStatus   `gorm:"size:20;default:'unpaid'" json:"payment_status"`
	CustomerDetails CustomerDetails `gorm:"embedded;embeddedPrefix:customer_" json:"customer_details"`
	PDFPath         string          `gorm:"size:512" json:"pdf_path,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName returns the table name for Invoice
func (Invoice) TableName() string {
	return "invoices"
}

// Sequence backs invoice numbering. A single row holds the last value
// handed out; every allocation bumps it atomically so numbers are
// unique and gapless under concurrency.
type Sequence struct {
	ID    uint  `gorm:"primaryKey"`
	Value int64 `gorm:"not null"`
}

// TableName returns the table name for Sequence
func (Sequence) TableName() string {
	return "invoice_sequences"
}

// OwnedBy checks if the invoice belongs to the given user
func (i *Invoice) OwnedBy(userID uint) bool {
	return i.UserID == userID
}
