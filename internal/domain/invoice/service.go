// internal/domain/invoice/service.go
package invoice

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/order-service/internal/config"
	"github.com/your-org/order-service/internal/domain/order"
	"github.com/your-org/order-service/internal/domain/user"
)

// invoiceNumberPrefix is stitched onto the sequence value to form the
// human-facing invoice number, e.g. "IFSB-17".
const invoiceNumberPrefix = "IFSB-"

var (
	// ErrInvoiceNotFound is returned when an invoice doesn't exist
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrInvoiceExists is returned when the order already has an invoice
	ErrInvoiceExists = errors.New("invoice already exists for this order")

	// ErrNoInvoices is returned when a listing matches nothing
	ErrNoInvoices = errors.New("no invoices found")

	// ErrInvalidPaymentStatus is returned for unknown payment statuses
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
)

// Service handles invoice operations
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new invoice service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{db: db, config: cfg}
}

// UpdatePaymentStatusRequest represents a payment status change
type UpdatePaymentStatusRequest struct {
	PaymentStatus PaymentStatus `json:"paymentStatus" binding:"required"`
}

// CreateFromOrder issues the invoice for an order. The customer block
// is snapshotted from the order's user at this moment, and the number
// comes from an atomic single-row sequence bump, so two concurrent
// calls can neither share a number nor both succeed for one order: the
// unique index on order_id rejects the loser.
func (s *Service) CreateFromOrder(orderID uint) (*Invoice, error) {
	var ord order.Order
	if err := s.db.First(&ord, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	var customer user.User
	if err := s.db.First(&customer, ord.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d has no user %d", ord.ID, ord.UserID)
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	var inv *Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var next int64
		row := tx.Raw(
			"UPDATE invoice_sequences SET value = value + 1 WHERE id = ? RETURNING value",
			1,
		).Scan(&next)
		if row.Error != nil {
			return fmt.Errorf("failed to allocate invoice number: %w", row.Error)
		}
		if row.RowsAffected == 0 {
			return errors.New("invoice sequence row missing")
		}

		inv = &Invoice{
			OrderID:       ord.ID,
			UserID:        ord.UserID,
			InvoiceNumber: fmt.Sprintf("%s%d", invoiceNumberPrefix, next),
			TotalAmount:   ord.TotalAmount,
			IssuedAt:      time.Now().UTC(),
			PaymentStatus: PaymentStatusUnpaid,
			CustomerDetails: CustomerDetails{
				FirstName: customer.FirstName,
				LastName:  customer.LastName,
				Email:     customer.Email,
				Address:   customer.Billing.Format(),
			},
		}
		if err := tx.Create(inv).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrInvoiceExists
			}
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Get retrieves an invoice by ID
func (s *Service) Get(id uint) (*Invoice, error) {
	var inv Invoice
	if err := s.db.First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &inv, nil
}

// GetByOrder retrieves the invoice issued for an order.
func (s *Service) GetByOrder(orderID uint) (*Invoice, error) {
	var inv Invoice
	if err := s.db.Where("order_id = ?", orderID).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &inv, nil
}

// ListForUser returns the user's invoices, newest first.
func (s *Service) ListForUser(userID uint) ([]Invoice, error) {
	var invoices []Invoice
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	if len(invoices) == 0 {
		return nil, ErrNoInvoices
	}
	return invoices, nil
}

// ListAll returns every invoice, newest first.
func (s *Service) ListAll() ([]Invoice, error) {
	var invoices []Invoice
	if err := s.db.Order("created_at DESC").Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	if len(invoices) == 0 {
		return nil, ErrNoInvoices
	}
	return invoices, nil
}

// UpdatePaymentStatus sets the invoice's settlement status.
func (s *Service) UpdatePaymentStatus(id uint, status PaymentStatus) (*Invoice, error) {
	if !status.Valid() {
		return nil, ErrInvalidPaymentStatus
	}

	inv, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(inv).Update("payment_status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	inv.PaymentStatus = status
	return inv, nil
}

// AttachPDF records where the rendered PDF for the invoice is stored.
func (s *Service) AttachPDF(id uint, path string) (*Invoice, error) {
	inv, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(inv).Update("pdf_path", path).Error; err != nil {
		return nil, fmt.Errorf("failed to attach pdf: %w", err)
	}
	inv.PDFPath = path
	return inv, nil
}

// Delete removes an invoice.
func (s *Service) Delete(id uint) error {
	result := s.db.Delete(&Invoice{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete invoice: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}
