// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/order-service/internal/config"
	"github.com/your-org/order-service/internal/domain/cart"
	"github.com/your-org/order-service/internal/domain/order"
	"github.com/your-org/order-service/internal/domain/payment"
	"github.com/your-org/order-service/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// maxWebhookBody bounds how much of a webhook delivery is read.
const maxWebhookBody = 1 << 20

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	paymentService *payment.Service
	config         *config.Config
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(db *gorm.DB, cfg *config.Config, log *logrus.Logger) *PaymentHandler {
	gateway := payment.NewStripeClient(cfg)
	cartService := cart.NewService(db, cfg)
	orderService := order.NewService(db, cfg)
	return &PaymentHandler{
		paymentService: payment.NewService(cfg, gateway, cartService, orderService, log),
		config:         cfg,
	}
}

// CreateCheckoutSession handles POST /payments/create-session
func (h *PaymentHandler) CreateCheckoutSession(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	session, err := h.paymentService.CreateCheckoutSession(c.Request.Context(), userID)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout session created successfully",
		"data":    session,
	})
}

// CheckStatus handles GET /payments/check-status/:sessionId
func (h *PaymentHandler) CheckStatus(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	sessionID := c.Param("sessionId")

	status, err := h.paymentService.CheckStatus(c.Request.Context(), userID, sessionID)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment status retrieved successfully",
		"data":    status,
	})
}

// InvoiceURL handles GET /payments/invoice/:sessionId
func (h *PaymentHandler) InvoiceURL(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	sessionID := c.Param("sessionId")

	url, err := h.paymentService.InvoiceURL(c.Request.Context(), userID, sessionID)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invoice URL retrieved successfully",
		"data":    gin.H{"url": url},
	})
}

// Webhook handles POST /payments/webhook. Unauthenticated; trust
// comes from the signature.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payloadBody, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read webhook payload",
		})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.paymentService.HandleWebhook(c.Request.Context(), payloadBody, signature); err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid webhook signature",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Webhook processing failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func respondPaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, payment.ErrSessionOwnership):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, payment.ErrNoPaymentIntent):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment operation failed"})
	}
}
