// internal/domain/order/entity.go
package order

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
)

// Valid reports whether the status is one of the recognized values.
// Any recognized value is reachable from any other; there is no
// transition graph.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// PaymentResult holds the payment gateway's correlation data attached
// to orders created through the payment path.
type PaymentResult struct {
	ProviderID   string `gorm:"size:255" json:"id"`
	Status       string `gorm:"size:50" json:"status"`
	UpdateTime   string `gorm:"size:64" json:"update_time"`
	EmailAddress string `gorm:"size:255" json:"email_address"`
}

// Order represents the order entity. TotalAmount is in minor currency
// units (cents), computed from live prices at creation time. SessionID
// correlates orders created through the payment gateway; its unique
// index is the idempotency guard for concurrent confirmation triggers.
type Order struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	UserID          uint          `gorm:"not null;index" json:"user_id"`
	Status          OrderStatus   `gorm:"not null;default:'pending'" json:"status"`
	TotalAmount     int64         `gorm:"not null" json:"total_amount"` // In cents
	PaymentMethod   string        `gorm:"size:50" json:"payment_method"`
	ShippingAddress string        `gorm:"size:500" json:"shipping_address"`
	PaymentResult   PaymentResult `gorm:"embedded;embeddedPrefix:payment_" json:"payment_result"`
	SessionID       *string       `gorm:"uniqueIndex;size:255" json:"session_id,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// OrderItem is the snapshot of one purchased line: product reference
// and quantity only. Unit prices live on the derived invoice, not here.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }

// OwnedBy reports whether the order belongs to the given user.
func (o *Order) OwnedBy(userID uint) bool {
	return o.UserID == userID
}
