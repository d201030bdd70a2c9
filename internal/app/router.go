// internal/app/router.go
package app

import (
	authHandler "hesabu-service/internal/handlers/auth"
	businessHandler "hesabu-service/internal/handlers/business"
	customerHandler "hesabu-service/internal/handlers/customer"
	expenseHandler "hesabu-service/internal/handlers/expense"
	invoiceHandler "hesabu-service/internal/handlers/invoice"
	paymentHandler "hesabu-service/internal/handlers/payment"
	reportHandler "hesabu-service/internal/handlers/report"
	"hesabu-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AuthHandler      *authHandler.AuthHandler
	BusinessHandler  *businessHandler.BusinessHandler
	CustomerHandler  *customerHandler.CustomerHandler
	InvoiceHandler   *invoiceHandler.InvoiceHandler
	ExpenseHandler   *expenseHandler.ExpenseHandler
	PaymentHandler   *paymentHandler.PaymentHandler
	ReportHandler    *reportHandler.ReportHandler
	AuthMiddleware   *middleware.AuthMiddleware
	TenantMiddleware *middleware.TenantMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/register", h.AuthHandler.Register)
		authPublic.POST("/login", h.AuthHandler.Login)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.GET("/me", h.AuthHandler.Me)
	}

	// ==================== Business Profile ====================
	// The business profile is created after registration, so these routes
	// need authentication but not an existing tenant.
	business := api.Group("/business")
	business.Use(h.AuthMiddleware.Auth())
	{
		business.POST("", h.BusinessHandler.Create)
		business.GET("", h.BusinessHandler.GetMine)
		business.PUT("", h.BusinessHandler.Update)
	}

	// Everything below operates on tenant-owned data.
	tenant := api.Group("")
	tenant.Use(h.AuthMiddleware.Auth(), h.TenantMiddleware.RequireTenant())

	// ==================== Customers ====================
	customers := tenant.Group("/customers")
	{
		customers.POST("", h.CustomerHandler.Create)
		customers.GET("", h.CustomerHandler.List)
		customers.GET("/:id", h.CustomerHandler.Get)
		customers.PUT("/:id", h.CustomerHandler.Update)
		customers.DELETE("/:id", h.CustomerHandler.Delete)
	}

	// ==================== Invoices ====================
	invoices := tenant.Group("/invoices")
	{
		invoices.POST("", h.InvoiceHandler.Create)
		invoices.GET("", h.InvoiceHandler.List)
		invoices.GET("/:id", h.InvoiceHandler.Get)
		invoices.PUT("/:id/status", h.InvoiceHandler.UpdateStatus)
		invoices.POST("/:id/recalculate", h.InvoiceHandler.Recalculate)
		invoices.DELETE("/:id", h.InvoiceHandler.Delete)
		invoices.GET("/:id/pdf", h.InvoiceHandler.DownloadPDF)

		// Payments against an invoice
		invoices.POST("/:id/payments", h.InvoiceHandler.RecordManualPayment)
		invoices.GET("/:id/payments", h.InvoiceHandler.ListPayments)
		invoices.GET("/:id/payments/:paymentID/receipt", h.InvoiceHandler.DownloadReceipt)
	}

	// ==================== Expenses ====================
	expenses := tenant.Group("/expenses")
	{
		expenses.GET("/categories", h.ExpenseHandler.Categories)
		expenses.POST("", h.ExpenseHandler.Create)
		expenses.GET("", h.ExpenseHandler.List)
		expenses.GET("/:id", h.ExpenseHandler.Get)
		expenses.PUT("/:id", h.ExpenseHandler.Update)
		expenses.DELETE("/:id", h.ExpenseHandler.Delete)
	}

	// ==================== Payments (M-Pesa) ====================
	payments := tenant.Group("/payments")
	{
		payments.POST("/mpesa", h.PaymentHandler.InitiateMpesa)
		payments.GET("/:id", h.PaymentHandler.Get)
	}

	// ==================== Reports ====================
	reports := tenant.Group("/reports")
	{
		reports.GET("/vat", h.ReportHandler.VAT)
		reports.GET("/profit", h.ReportHandler.Profit)
	}

	// ==================== Provider Callbacks ====================
	// Unauthenticated: Daraja calls this, correlation happens through the
	// CheckoutRequestID inside the payload.
	api.POST("/payments/mpesa/callback", h.PaymentHandler.MpesaCallback)
}
