// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/order-service/internal/config"
	"github.com/your-org/order-service/internal/interfaces/http/handlers"
	"github.com/your-org/order-service/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupCartRoutes sets up cart related routes
func SetupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(db, cfg)

	cart := rg.Group("/cart")
	cart.Use(middleware.AuthMiddleware(cfg))
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:id", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:id", cartHandler.RemoveFromCart)
		cart.DELETE("", cartHandler.ClearCart)
	}
}

// SetupOrderRoutes sets up order related routes
func SetupOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	orderHandler := handlers.NewOrderHandler(db, cfg)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.POST("", orderHandler.CreateOrder)
		orders.GET("", orderHandler.GetMyOrders)
		orders.GET("/:id", orderHandler.GetOrder)
	}
}

// SetupPaymentRoutes sets up payment related routes. The webhook is
// unauthenticated: the provider calls it and trust comes from the
// signature check.
func SetupPaymentRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config, log *logrus.Logger) {
	paymentHandler := handlers.NewPaymentHandler(db, cfg, log)

	payments := rg.Group("/payments")
	{
		payments.POST("/webhook", paymentHandler.Webhook)

		protected := payments.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/create-session", paymentHandler.CreateCheckoutSession)
			protected.GET("/check-status/:sessionId", paymentHandler.CheckStatus)
			protected.GET("/invoice/:sessionId", paymentHandler.InvoiceURL)
		}
	}
}

// SetupInvoiceRoutes sets up invoice related routes
func SetupInvoiceRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	invoiceHandler := handlers.NewInvoiceHandler(db, cfg)

	invoices := rg.Group("/invoices")
	invoices.Use(middleware.AuthMiddleware(cfg))
	{
		invoices.POST("", invoiceHandler.CreateInvoice)
		invoices.GET("", invoiceHandler.GetMyInvoices)
		invoices.GET("/:id", invoiceHandler.GetInvoice)
		invoices.GET("/:id/pdf", invoiceHandler.DownloadPDF)
		invoices.POST("/:id/pdf", invoiceHandler.UploadPDF)
	}
}

// SetupAdminRoutes sets up admin related routes
func SetupAdminRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	orderHandler := handlers.NewOrderHandler(db, cfg)
	invoiceHandler := handlers.NewInvoiceHandler(db, cfg)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		orders := admin.Group("/orders")
		{
			orders.GET("/user/:userId", orderHandler.GetUserOrders)
			orders.PUT("/:id/status", orderHandler.UpdateOrderStatus)
			orders.DELETE("/:id", orderHandler.DeleteOrder)
		}

		invoices := admin.Group("/invoices")
		{
			invoices.GET("", invoiceHandler.ListAllInvoices)
			invoices.PUT("/:id/payment-status", invoiceHandler.UpdatePaymentStatus)
			invoices.DELETE("/:id", invoiceHandler.DeleteInvoice)
		}
	}
}

// SetupRoutes sets up all API routes
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config, log *logrus.Logger) {
	SetupCartRoutes(rg, db, cfg)
	SetupOrderRoutes(rg, db, cfg)
	SetupPaymentRoutes(rg, db, cfg, log)
	SetupInvoiceRoutes(rg, db, cfg)
	SetupAdminRoutes(rg, db, cfg)
}
