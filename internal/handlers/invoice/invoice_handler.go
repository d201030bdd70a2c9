// internal/handlers/invoice/invoice_handler.go
package invoice

import (
	"fmt"
	"net/http"

	"hesabu-service/internal/domain/invoice"
	"hesabu-service/internal/domain/payment"
	"hesabu-service/internal/middleware"
	"hesabu-service/internal/pdf"
	"hesabu-service/internal/pkg/response"
	"hesabu-service/internal/repository/postgres"
	service "hesabu-service/internal/service/invoice"
	paymentsvc "hesabu-service/internal/service/payment"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	paymentService *paymentsvc.PaymentService
	businessRepo   *postgres.BusinessRepository
	customerRepo   *postgres.CustomerRepository
}

func NewInvoiceHandler(
	invoiceService *service.InvoiceService,
	paymentService *paymentsvc.PaymentService,
	businessRepo *postgres.BusinessRepository,
	customerRepo *postgres.CustomerRepository,
) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		paymentService: paymentService,
		businessRepo:   businessRepo,
		customerRepo:   customerRepo,
	}
}

// Create builds an invoice from its line items
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req invoice.CreateInvoiceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	scope := middleware.MustGetTenantScope(c)
	result, err := h.invoiceService.Create(c.Request.Context(), scope, &req)
	if err != nil {
		response.FromError(c, "failed to create invoice", err)
		return
	}

	response.Success(c, http.StatusCreated, "invoice created", result)
}

// Get retrieves an invoice with its items
func (h *InvoiceHandler) Get(c *gin.Context) {
	scope := middleware.MustGetTenantScope(c)

	result, err := h.invoiceService.Get(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		response.FromError(c, "invoice not found", err)
		return
	}

	response.Success(c, http.StatusOK, "invoice retrieved", result)
}

// List returns a page of invoices. Past-due invoices are flipped to OVERDUE
// on the way in so the listing is always current.
func (h *InvoiceHandler) List(c *gin.Context) {
	var filters invoice.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	scope := middleware.MustGetTenantScope(c)
	if _, err := h.invoiceService.MarkOverdue(c.Request.Context(), scope); err != nil {
		response.FromError(c, "failed to refresh overdue invoices", err)
		return
	}

	result, err := h.invoiceService.List(c.Request.Context(), scope, &filters)
	if err != nil {
		response.FromError(c, "failed to list invoices", err)
		return
	}

	response.Success(c, http.StatusOK, "invoices retrieved", result)
}

// UpdateStatus applies a manual transition such as send or cancel
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	var req invoice.UpdateStatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	scope := middleware.MustGetTenantScope(c)
	result, err := h.invoiceService.UpdateStatus(c.Request.Context(), scope, c.Param("id"), req.Status)
	if err != nil {
		response.FromError(c, "failed to update invoice status", err)
		return
	}

	response.Success(c, http.StatusOK, "invoice status updated", result)
}

// Recalculate re-derives the invoice totals from its items
func (h *InvoiceHandler) Recalculate(c *gin.Context) {
	scope := middleware.MustGetTenantScope(c)

	result, err := h.invoiceService.Recalculate(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		response.FromError(c, "failed to recalculate invoice", err)
		return
	}

	response.Success(c, http.StatusOK, "invoice totals recalculated", result)
}

// Delete removes a draft invoice
func (h *InvoiceHandler) Delete(c *gin.Context) {
	scope := middleware.MustGetTenantScope(c)

	if err := h.invoiceService.Delete(c.Request.Context(), scope, c.Param("id")); err != nil {
		response.FromError(c, "failed to delete invoice", err)
		return
	}

	response.Success(c, http.StatusOK, "invoice deleted", nil)
}

// RecordManualPayment records an out-of-band payment against the invoice
func (h *InvoiceHandler) RecordManualPayment(c *gin.Context) {
	var req payment.RecordManualInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	scope := middleware.MustGetTenantScope(c)
	result, err := h.paymentService.RecordManual(c.Request.Context(), scope, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, "failed to record payment", err)
		return
	}

	response.Success(c, http.StatusCreated, "payment recorded", result)
}

// ListPayments returns the invoice's payment history
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	scope := middleware.MustGetTenantScope(c)

	payments, err := h.paymentService.ListForInvoice(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		response.FromError(c, "failed to list payments", err)
		return
	}

	response.Success(c, http.StatusOK, "payments retrieved", gin.H{"payments": payments})
}

// DownloadPDF streams the invoice as a PDF
func (h *InvoiceHandler) DownloadPDF(c *gin.Context) {
	scope := middleware.MustGetTenantScope(c)
	ctx := c.Request.Context()

	inv, err := h.invoiceService.Get(ctx, scope, c.Param("id"))
	if err != nil {
		response.FromError(c, "invoice not found", err)
		return
	}

	biz, err := h.businessRepo.FindByID(ctx, scope.TenantID())
	if err != nil {
		response.FromError(c, "failed to resolve business", err)
		return
	}

	cust, err := h.customerRepo.FindByID(ctx, scope, inv.CustomerID)
	if err != nil {
		response.FromError(c, "failed to resolve customer", err)
		return
	}

	doc, err := pdf.GenerateInvoice(biz, cust, inv)
	if err != nil {
		response.FromError(c, "failed to render pdf", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", inv.InvoiceNumber+".pdf"))
	c.DataFromReader(http.StatusOK, -1, "application/pdf", doc, nil)
}

// DownloadReceipt streams a receipt PDF for a successful payment
func (h *InvoiceHandler) DownloadReceipt(c *gin.Context) {
	scope := middleware.MustGetTenantScope(c)
	ctx := c.Request.Context()

	inv, err := h.invoiceService.Get(ctx, scope, c.Param("id"))
	if err != nil {
		response.FromError(c, "invoice not found", err)
		return
	}

	p, err := h.paymentService.Get(ctx, scope, c.Param("paymentID"))
	if err != nil || p.InvoiceID != inv.ID {
		response.NotFound(c, "payment not found")
		return
	}
	if p.Status != payment.StatusSuccess {
		response.Error(c, http.StatusUnprocessableEntity, "receipt only available for successful payments", nil)
		return
	}

	biz, err := h.businessRepo.FindByID(ctx, scope.TenantID())
	if err != nil {
		response.FromError(c, "failed to resolve business", err)
		return
	}

	cust, err := h.customerRepo.FindByID(ctx, scope, inv.CustomerID)
	if err != nil {
		response.FromError(c, "failed to resolve customer", err)
		return
	}

	doc, err := pdf.GenerateReceipt(biz, cust, &inv.Invoice, p)
	if err != nil {
		response.FromError(c, "failed to render pdf", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "receipt-"+p.ID+".pdf"))
	c.DataFromReader(http.StatusOK, -1, "application/pdf", doc, nil)
}
