// internal/handlers/payment/payment_handler.go
package payment

import (
	"io"
	"net/http"

	"hesabu-service/internal/domain/payment"
	"hesabu-service/internal/middleware"
	"hesabu-service/internal/pkg/response"
	"hesabu-service/internal/pkg/session"
	mpesasvc "hesabu-service/internal/service/mpesa"
	paymentsvc "hesabu-service/internal/service/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Daraja callbacks are small; anything bigger is not a callback.
const maxCallbackBody = 64 * 1024

type PaymentHandler struct {
	mpesaService   *mpesasvc.MpesaService
	paymentService *paymentsvc.PaymentService
	limiter        *session.RateLimiter
	logger         *zap.Logger
}

func NewPaymentHandler(
	mpesaService *mpesasvc.MpesaService,
	paymentService *paymentsvc.PaymentService,
	limiter *session.RateLimiter,
	logger *zap.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		mpesaService:   mpesaService,
		paymentService: paymentService,
		limiter:        limiter,
		logger:         logger,
	}
}

// InitiateMpesa pushes a payment prompt to the customer's phone
func (h *PaymentHandler) InitiateMpesa(c *gin.Context) {
	var req payment.InitiateMpesaInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	// Checked before the rate limiter so a garbage number never burns a
	// window slot for a real one.
	if !payment.ValidPhoneNumber(req.PhoneNumber) {
		response.ValidationError(c, "phone number must be in 2547XXXXXXXX format", nil)
		return
	}

	allowed, err := h.limiter.CheckSTKPushAttempt(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		h.logger.Warn("stk push rate limit check failed", zap.Error(err))
	} else if !allowed {
		response.Error(c, http.StatusTooManyRequests, "too many payment attempts for this number", nil)
		return
	}

	scope := middleware.MustGetTenantScope(c)
	result, err := h.mpesaService.InitiatePayment(c.Request.Context(), scope, &req)
	if err != nil {
		response.FromError(c, "failed to initiate payment", err)
		return
	}

	response.Success(c, http.StatusAccepted, "payment prompt sent", result)
}

// Get returns a payment's current status, polled by the client while the
// customer completes the prompt on their phone
func (h *PaymentHandler) Get(c *gin.Context) {
	scope := middleware.MustGetTenantScope(c)

	result, err := h.paymentService.Get(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		response.FromError(c, "payment not found", err)
		return
	}

	response.Success(c, http.StatusOK, "payment retrieved", result)
}

// MpesaCallback receives the asynchronous settlement result from Daraja.
// It is unauthenticated (the provider calls it) and always acknowledges
// with 200: returning an error only makes the provider redeliver a payload
// that will fail the same way again.
func (h *PaymentHandler) MpesaCallback(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackBody))
	if err != nil {
		h.logger.Warn("failed to read callback body", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
		return
	}

	if err := h.mpesaService.ProcessCallback(c.Request.Context(), raw); err != nil {
		// Storage-level failure. Still acknowledged; the raw payload is
		// logged so the payment can be settled by hand if it never retries.
		h.logger.Error("failed to process mpesa callback",
			zap.ByteString("payload", raw),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
}
