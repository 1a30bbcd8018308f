// internal/domain/cart/entity.go
package cart

import (
	"time"
)

// CartItem represents one line of a user's cart. One row per
// (user, product); quantity is merged on repeated adds.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_cart_items_user_product,unique" json:"user_id"`
	ProductID uint      `gorm:"not null;index:idx_cart_items_user_product,unique" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name for CartItem
func (CartItem) TableName() string {
	return "cart_items"
}
