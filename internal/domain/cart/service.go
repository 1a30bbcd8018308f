// internal/domain/cart/service.go
package cart

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/order-service/internal/config"
	"github.com/your-org/order-service/internal/domain/product"
	"gorm.io/gorm"
)

// ErrItemNotFound is returned when updating a cart line that does not exist.
var ErrItemNotFound = errors.New("item not found in cart")

// Service handles cart business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CartItemResponse represents a cart item with product details
type CartItemResponse struct {
	ProductID uint             `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Product   *product.Product `json:"product,omitempty"`
	AddedAt   time.Time        `json:"added_at"`
}

// CartTotals summarizes a cart. Amounts are in cents.
type CartTotals struct {
	ItemCount     int   `json:"item_count"`
	TotalQuantity int   `json:"total_quantity"`
	SubTotal      int64 `json:"sub_total"`
}

// CartResponse represents a shopping cart with items and summary
type CartResponse struct {
	UserID    uint               `json:"user_id"`
	Items     []CartItemResponse `json:"items"`
	Totals    CartTotals         `json:"totals"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// GetCart retrieves the user's cart with product details
func (s *Service) GetCart(userID uint) (*CartResponse, error) {
	var dbItems []CartItem
	if err := s.db.Where("user_id = ?", userID).Order("created_at").Find(&dbItems).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	items := make([]CartItemResponse, len(dbItems))
	var updatedAt time.Time
	for i, item := range dbItems {
		items[i] = CartItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			AddedAt:   item.CreatedAt,
		}
		if item.UpdatedAt.After(updatedAt) {
			updatedAt = item.UpdatedAt
		}
	}

	if err := s.loadProductDetails(items); err != nil {
		return nil, err
	}

	return &CartResponse{
		UserID:    userID,
		Items:     items,
		Totals:    s.calculateTotals(items),
		UpdatedAt: updatedAt,
	}, nil
}

// AddToCart adds an item to the cart, merging quantity with any
// existing line for the same product. The requested total quantity is
// validated against current stock.
func (s *Service) AddToCart(userID uint, req *AddToCartRequest) (*CartResponse, error) {
	var prod product.Product
	if err := s.db.First(&prod, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &product.NotFoundError{ProductID: req.ProductID}
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	var existing CartItem
	result := s.db.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&existing)

	newQuantity := req.Quantity
	if result.Error == nil {
		newQuantity += existing.Quantity
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to read cart item: %w", result.Error)
	}

	if !prod.InStock(newQuantity) {
		return nil, &product.InsufficientStockError{ProductName: prod.Name, Available: prod.Stock, Requested: newQuantity}
	}

	if result.Error == nil {
		existing.Quantity = newQuantity
		if err := s.db.Save(&existing).Error; err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	} else {
		item := CartItem{
			UserID:    userID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to create cart item: %w", err)
		}
	}

	return s.GetCart(userID)
}

// UpdateCartItem sets the quantity of a cart line; zero removes it.
func (s *Service) UpdateCartItem(userID, productID uint, req *UpdateCartItemRequest) (*CartResponse, error) {
	var item CartItem
	if err := s.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to read cart item: %w", err)
	}

	if req.Quantity == 0 {
		if err := s.db.Delete(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to remove cart item: %w", err)
		}
		return s.GetCart(userID)
	}

	var prod product.Product
	if err := s.db.First(&prod, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &product.NotFoundError{ProductID: productID}
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if !prod.InStock(req.Quantity) {
		return nil, &product.InsufficientStockError{ProductName: prod.Name, Available: prod.Stock, Requested: req.Quantity}
	}

	if err := s.db.Model(&item).Update("quantity", req.Quantity).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.GetCart(userID)
}

// RemoveFromCart removes an item from the cart
func (s *Service) RemoveFromCart(userID, productID uint) (*CartResponse, error) {
	return s.UpdateCartItem(userID, productID, &UpdateCartItemRequest{Quantity: 0})
}

// ClearCart removes all items from the cart
func (s *Service) ClearCart(userID uint) error {
	return s.db.Where("user_id = ?", userID).Delete(&CartItem{}).Error
}

// Private helper methods

func (s *Service) loadProductDetails(items []CartItemResponse) error {
	for i := range items {
		var prod product.Product
		err := s.db.Where("id = ?", items[i].ProductID).First(&prod).Error
		if err != nil {
			continue // Skip if product not found
		}
		items[i].Product = &prod
	}
	return nil
}

func (s *Service) calculateTotals(items []CartItemResponse) CartTotals {
	var totals CartTotals
	totals.ItemCount = len(items)
	for _, item := range items {
		totals.TotalQuantity += item.Quantity
		if item.Product != nil {
			totals.SubTotal += item.Product.Price * int64(item.Quantity)
		}
	}
	return totals
}
