package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	portssvc "github.com/digiwallet/wallet_backend/internal/core/ports/services"
	"github.com/digiwallet/wallet_backend/internal/core/services"
	"github.com/digiwallet/wallet_backend/internal/dto"
	"github.com/digiwallet/wallet_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// topUpHandler handles checkout session creation and confirmed top-ups.
type topUpHandler struct {
	topUpSvc portssvc.TopUpSvcFacade
}

func newTopUpHandler(topUpSvc portssvc.TopUpSvcFacade) *topUpHandler {
	return &topUpHandler{topUpSvc: topUpSvc}
}

// createCheckoutSession returns the provider's hosted payment page URL.
func (h *topUpHandler) createCheckoutSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind checkout session request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	url, err := h.topUpSvc.CreateCheckoutSession(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be a positive integer"})
		case errors.Is(err, services.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		default:
			logger.Error("Failed to create checkout session", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider unavailable"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.CheckoutSessionResponse{URL: url})
}

// confirmTopUp credits an account after the payment provider confirmed
// the payment. The balance increment and ledger entry are one atomic
// unit; a storage failure rolls back both and is fatal to this request.
func (h *topUpHandler) confirmTopUp(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind top-up request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	entry, err := h.topUpSvc.TopUp(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be a positive integer"})
		case errors.Is(err, services.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		default:
			logger.Error("Top-up failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record top-up"})
		}
		return
	}

	txn := dto.ToTransactionResponse(entry)
	c.JSON(http.StatusCreated, gin.H{"transaction": txn})
}
