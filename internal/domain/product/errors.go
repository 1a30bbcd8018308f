// internal/domain/product/errors.go
package product

import "fmt"

// NotFoundError reports a cart or order line referencing a product
// that no longer exists.
type NotFoundError struct {
	ProductID uint
	Name      string
}

func (e *NotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("product not found: %s", e.Name)
	}
	return fmt.Sprintf("product not found: id %d", e.ProductID)
}

// InsufficientStockError reports a requested quantity exceeding the
// product's available stock.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}
