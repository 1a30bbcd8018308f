// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a catalog product. Prices are stored in minor
// currency units (cents). Stock is the aggregate available quantity,
// the sum of the per-seller ledger rows.
type Product struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Code      string         `gorm:"uniqueIndex;size:100" json:"code"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Brand     string         `gorm:"size:255" json:"brand"`
	ImageURL  string         `gorm:"size:500" json:"image_url"`
	Price     int64          `gorm:"not null" json:"price"` // In cents
	Stock     int            `gorm:"not null;default:0" json:"stock"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Sellers []ProductSeller `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"sellers,omitempty"`
}

// ProductSeller is the per-seller stock ledger: one row per seller
// offering a product, with the seller's own price and quantity.
type ProductSeller struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index:idx_product_sellers_product_seller,unique" json:"product_id"`
	SellerID  uint      `gorm:"not null;index:idx_product_sellers_product_seller,unique" json:"seller_id"`
	Stock     int       `gorm:"not null;default:0" json:"stock"`
	Price     int64     `gorm:"not null" json:"price"` // In cents
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (Product) TableName() string       { return "products" }
func (ProductSeller) TableName() string { return "product_sellers" }

// InStock reports whether the requested quantity is currently available.
func (p *Product) InStock(quantity int) bool {
	return p.Stock >= quantity
}
