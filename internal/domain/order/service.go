// internal/domain/order/service.go
package order

import (
	"errors"
	"fmt"

	"github.com/your-org/order-service/internal/config"
	"github.com/your-org/order-service/internal/domain/cart"
	"github.com/your-org/order-service/internal/domain/product"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sentinel errors returned by order operations.
var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrOrderNotFound = errors.New("order not found")
	ErrNoOrders      = errors.New("no orders found")
	ErrInvalidStatus = errors.New("invalid order status")
)

// Service handles order business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateOrderRequest represents order creation data
type CreateOrderRequest struct {
	ShippingAddress string `json:"shipping_address,omitempty"`
	PaymentMethod   string `json:"payment_method,omitempty"`
}

// UpdateStatusRequest represents an order status change
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

// SessionOrderParams carries everything needed to synthesize an order
// from a confirmed payment session. Items and user identity come from
// the payment intent's metadata snapshot, the total from the gateway's
// recorded amount (already in cents).
type SessionOrderParams struct {
	UserID        uint
	SessionID     string
	Items         []OrderItem
	TotalAmount   int64
	PaymentMethod string
	PaymentResult PaymentResult
}

// CreateOrderFromCart creates a new order from the user's cart.
//
// Stock decrement, order insert and cart clear run in a single
// transaction: a failure on any line leaves stock, cart and orders
// untouched. Each line re-fetches the product so stale cart data never
// drives pricing or stock accounting.
func (s *Service) CreateOrderFromCart(userID uint, req *CreateOrderRequest) (*Order, error) {
	var created Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var items []cart.CartItem
		if err := tx.Where("user_id = ?", userID).Order("created_at").Find(&items).Error; err != nil {
			return fmt.Errorf("failed to retrieve cart: %w", err)
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		var totalAmount int64
		orderItems := make([]OrderItem, 0, len(items))

		for _, item := range items {
			var prod product.Product
			if err := tx.First(&prod, item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &product.NotFoundError{ProductID: item.ProductID}
				}
				return fmt.Errorf("failed to load product %d: %w", item.ProductID, err)
			}

			if prod.Stock < item.Quantity {
				return &product.InsufficientStockError{
					ProductName: prod.Name,
					Available:   prod.Stock,
					Requested:   item.Quantity,
				}
			}

			// Conditional decrement guards against a concurrent
			// checkout draining stock between the read and the write.
			result := tx.Model(&product.Product{}).
				Where("id = ? AND stock >= ?", prod.ID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if result.Error != nil {
				return fmt.Errorf("failed to update stock for product %d: %w", prod.ID, result.Error)
			}
			if result.RowsAffected == 0 {
				return &product.InsufficientStockError{
					ProductName: prod.Name,
					Available:   prod.Stock,
					Requested:   item.Quantity,
				}
			}

			if err := s.drawDownSellerStock(tx, prod.ID, item.Quantity); err != nil {
				return err
			}

			totalAmount += prod.Price * int64(item.Quantity)
			orderItems = append(orderItems, OrderItem{
				ProductID: prod.ID,
				Quantity:  item.Quantity,
			})
		}

		created = Order{
			UserID:          userID,
			Status:          OrderStatusPending,
			TotalAmount:     totalAmount,
			PaymentMethod:   req.PaymentMethod,
			ShippingAddress: req.ShippingAddress,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i := range orderItems {
			orderItems[i].OrderID = created.ID
			if err := tx.Create(&orderItems[i]).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}
		created.Items = orderItems

		// Cart is cleared last, inside the same transaction, so a
		// failure never loses the cart without a durable order.
		if err := tx.Where("user_id = ?", userID).Delete(&cart.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

// CreateOrderFromSession creates the order for a confirmed payment
// session, or returns the existing one. The unique index on session_id
// plus the conflict-ignoring insert make this safe against the webhook
// and the client poll racing each other: exactly one order per session.
func (s *Service) CreateOrderFromSession(p *SessionOrderParams) (*Order, error) {
	sessionID := p.SessionID
	newOrder := Order{
		UserID:        p.UserID,
		Status:        OrderStatusProcessing,
		TotalAmount:   p.TotalAmount,
		PaymentMethod: p.PaymentMethod,
		PaymentResult: p.PaymentResult,
		SessionID:     &sessionID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoNothing: true,
		}).Create(&newOrder)
		if result.Error != nil {
			return fmt.Errorf("failed to create order: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// The other confirmation trigger won the race.
			return nil
		}

		for i := range p.Items {
			item := p.Items[i]
			item.OrderID = newOrder.ID
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
			newOrder.Items = append(newOrder.Items, item)
		}

		return tx.Where("user_id = ?", p.UserID).Delete(&cart.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}

	if newOrder.ID == 0 {
		return s.GetOrderBySession(sessionID)
	}
	return &newOrder, nil
}

// GetOrderBySession retrieves the order created for a payment session.
func (s *Service) GetOrderBySession(sessionID string) (*Order, error) {
	var order Order
	err := s.db.Preload("Items").Where("session_id = ?", sessionID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &order, nil
}

// GetOrder retrieves a single order by ID
func (s *Service) GetOrder(id uint) (*Order, error) {
	var order Order
	err := s.db.Preload("Items").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &order, nil
}

// GetUserOrders retrieves all orders belonging to a user. An empty
// result is reported as ErrNoOrders; the HTTP layer maps it to 404
// uniformly for both the self and the admin listing.
func (s *Service) GetUserOrders(userID uint) ([]Order, error) {
	var orders []Order
	err := s.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, ErrNoOrders
	}
	return orders, nil
}

// UpdateOrderStatus updates order status. Only the four recognized
// values are accepted; anything else fails validation and leaves the
// order unchanged.
func (s *Service) UpdateOrderStatus(orderID uint, status OrderStatus) (*Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(order).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	order.Status = status
	return order, nil
}

// DeleteOrder removes an order. Admin action only; routing enforces it.
func (s *Service) DeleteOrder(orderID uint) error {
	result := s.db.Delete(&Order{}, orderID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// drawDownSellerStock walks the per-seller ledger rows in seller order
// and deducts the purchased quantity greedily. The aggregate stock
// column is the authoritative guard; seller rows never go negative.
func (s *Service) drawDownSellerStock(tx *gorm.DB, productID uint, quantity int) error {
	var sellers []product.ProductSeller
	err := tx.Where("product_id = ? AND stock > 0", productID).
		Order("seller_id").
		Find(&sellers).Error
	if err != nil {
		return fmt.Errorf("failed to load seller stock for product %d: %w", productID, err)
	}

	remaining := quantity
	for _, ps := range sellers {
		if remaining == 0 {
			break
		}
		take := ps.Stock
		if take > remaining {
			take = remaining
		}
		result := tx.Model(&product.ProductSeller{}).
			Where("id = ? AND stock >= ?", ps.ID, take).
			UpdateColumn("stock", gorm.Expr("stock - ?", take))
		if result.Error != nil {
			return fmt.Errorf("failed to update seller stock: %w", result.Error)
		}
		if result.RowsAffected == 1 {
			remaining -= take
		}
	}
	return nil
}
