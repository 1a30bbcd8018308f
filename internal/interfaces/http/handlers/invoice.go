// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/order-service/internal/config"
	"github.com/your-org/order-service/internal/domain/invoice"
	"github.com/your-org/order-service/internal/domain/order"
	"github.com/your-org/order-service/internal/domain/product"
	"github.com/your-org/order-service/internal/interfaces/http/middleware"
	"github.com/your-org/order-service/internal/pkg/pdf"
	"github.com/your-org/order-service/internal/pkg/storage"
	"gorm.io/gorm"
)

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	invoiceService *invoice.Service
	orderService   *order.Service
	pdfService     *pdf.Service
	store          *storage.LocalStore
	db             *gorm.DB
	config         *config.Config
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(db *gorm.DB, cfg *config.Config) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoice.NewService(db, cfg),
		orderService:   order.NewService(db, cfg),
		pdfService:     pdf.NewService(cfg),
		store:          storage.NewLocalStore(cfg),
		db:             db,
		config:         cfg,
	}
}

// CreateInvoiceRequest represents invoice creation data
type CreateInvoiceRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// CreateInvoice handles POST /invoices
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ord, err := h.orderService.GetOrder(req.OrderID)
	if err != nil {
		respondInvoiceError(c, err)
		return
	}
	if !ord.OwnedBy(userID) && !middleware.IsAdminFromContext(c) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "You do not have access to this order",
		})
		return
	}

	inv, err := h.invoiceService.CreateFromOrder(req.OrderID)
	if err != nil {
		respondInvoiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Invoice created successfully",
		"data":    inv,
	})
}

// GetMyInvoices handles GET /invoices
func (h *InvoiceHandler) GetMyInvoices(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	invoices, err := h.invoiceService.ListForUser(userID)
	if err != nil {
		respondInvoiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invoices retrieved successfully",
		"data":    invoices,
	})
}

// GetInvoice handles GET /invoices/:id
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	inv, ok := h.loadOwnedInvoice(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invoice retrieved successfully",
		"data":    inv,
	})
}

// DownloadPDF handles GET /invoices/:id/pdf. The document is rendered
// on the fly from the invoice and its order's lines.
func (h *InvoiceHandler) DownloadPDF(c *gin.Context) {
	inv, ok := h.loadOwnedInvoice(c)
	if !ok {
		return
	}

	lines, err := h.invoiceLines(inv)
	if err != nil {
		respondInvoiceError(c, err)
		return
	}

	buf, err := h.pdfService.GenerateInvoice(inv, lines)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate PDF",
		})
		return
	}

	filename := fmt.Sprintf("invoice-%s.pdf", inv.InvoiceNumber)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// UploadPDF handles POST /invoices/:id/pdf, storing an externally
// generated document against the invoice.
func (h *InvoiceHandler) UploadPDF(c *gin.Context) {
	inv, ok := h.loadOwnedInvoice(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "PDF file is required",
		})
		return
	}
	if fileHeader.Size > h.config.Upload.MaxSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": "File too large",
		})
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Only PDF files are accepted",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read uploaded file",
		})
		return
	}
	defer file.Close()

	path, err := h.store.Save("invoice", ".pdf", file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to store file",
		})
		return
	}

	updated, err := h.invoiceService.AttachPDF(inv.ID, path)
	if err != nil {
		h.store.Remove(path)
		respondInvoiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "PDF attached successfully",
		"data":    updated,
	})
}

// ListAllInvoices handles GET /admin/invoices
func (h *InvoiceHandler) ListAllInvoices(c *gin.Context) {
	invoices, err := h.invoiceService.ListAll()
	if err != nil {
		respondInvoiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invoices retrieved successfully",
		"data":    invoices,
	})
}

// UpdatePaymentStatus handles PUT /admin/invoices/:id/payment-status
func (h *InvoiceHandler) UpdatePaymentStatus(c *gin.Context) {
	invoiceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid invoice ID",
		})
		return
	}

	var req invoice.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	inv, err := h.invoiceService.UpdatePaymentStatus(uint(invoiceID), req.PaymentStatus)
	if err != nil {
		respondInvoiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment status updated successfully",
		"data":    inv,
	})
}

// DeleteInvoice handles DELETE /admin/invoices/:id
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	invoiceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid invoice ID",
		})
		return
	}

	if err := h.invoiceService.Delete(uint(invoiceID)); err != nil {
		respondInvoiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invoice deleted successfully",
	})
}

// loadOwnedInvoice parses :id, loads the invoice and enforces
// owner-or-admin access. On failure it writes the response itself.
func (h *InvoiceHandler) loadOwnedInvoice(c *gin.Context) (*invoice.Invoice, bool) {
	userID, _ := middleware.GetUserIDFromContext(c)

	invoiceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid invoice ID",
		})
		return nil, false
	}

	inv, err := h.invoiceService.Get(uint(invoiceID))
	if err != nil {
		respondInvoiceError(c, err)
		return nil, false
	}

	if !inv.OwnedBy(userID) && !middleware.IsAdminFromContext(c) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "You do not have access to this invoice",
		})
		return nil, false
	}
	return inv, true
}

// invoiceLines resolves the invoice's order items into printable
// lines. Products deleted since the order keep their quantity with a
// placeholder name.
func (h *InvoiceHandler) invoiceLines(inv *invoice.Invoice) ([]pdf.Line, error) {
	ord, err := h.orderService.GetOrder(inv.OrderID)
	if err != nil {
		return nil, err
	}

	lines := make([]pdf.Line, 0, len(ord.Items))
	for _, item := range ord.Items {
		var p product.Product
		name := fmt.Sprintf("Product #%d", item.ProductID)
		var unit int64
		if err := h.db.First(&p, item.ProductID).Error; err == nil {
			name = p.Name
			unit = p.Price
		}
		lines = append(lines, pdf.Line{
			Name:       name,
			Quantity:   item.Quantity,
			UnitAmount: unit,
			Total:      unit * int64(item.Quantity),
		})
	}
	return lines, nil
}

func respondInvoiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, invoice.ErrInvoiceNotFound), errors.Is(err, invoice.ErrNoInvoices):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, order.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, invoice.ErrInvoiceExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, invoice.ErrInvalidPaymentStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invoice operation failed"})
	}
}
