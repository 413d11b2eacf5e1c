package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/digiwallet/wallet_backend/internal/apperrors"
	"github.com/digiwallet/wallet_backend/internal/core/domain"
	portssvc "github.com/digiwallet/wallet_backend/internal/core/ports/services"
	"github.com/digiwallet/wallet_backend/internal/core/services"
	"github.com/digiwallet/wallet_backend/internal/dto"
	"github.com/digiwallet/wallet_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transactionHandler handles transfer creation and history listing.
type transactionHandler struct {
	transferSvc portssvc.TransferSvcFacade
}

func newTransactionHandler(transferSvc portssvc.TransferSvcFacade) *transactionHandler {
	return &transactionHandler{transferSvc: transferSvc}
}

// createTransfer drives one transfer attempt and reports its terminal
// outcome. Every non-succeeded outcome carries a machine-readable reason:
// a rejected request, a failed-but-logged attempt and an unreconciled
// failure are three different things and must stay distinguishable.
func (h *transactionHandler) createTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind transfer request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.TransferResponse{Reason: string(domain.ReasonInternal), Status: "REJECTED"})
		return
	}
	if key := c.GetHeader("Idempotency-Key"); key != "" {
		req.IdempotencyKey = key
	}

	result, err := h.transferSvc.Transfer(c.Request.Context(), req)

	switch {
	case err == nil:
		status := http.StatusCreated
		if result.Replayed {
			status = http.StatusOK
		}
		c.JSON(status, transferResponse(result, ""))
	case errors.Is(err, services.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, rejection(domain.ReasonInvalidAmount))
	case errors.Is(err, services.ErrSelfTransfer):
		c.JSON(http.StatusBadRequest, rejection(domain.ReasonSelfTransfer))
	case errors.Is(err, services.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, rejection(domain.ReasonUnknownAccount))
	case errors.Is(err, services.ErrDuplicateRequest):
		c.JSON(http.StatusConflict, rejection(domain.ReasonDuplicateRequest))
	case errors.Is(err, services.ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, transferResponse(result, domain.ReasonInsufficientFunds))
	case errors.Is(err, services.ErrRemoteUnavailable):
		c.JSON(http.StatusBadGateway, transferResponse(result, domain.ReasonUpstreamFailure))
	case errors.Is(err, apperrors.ErrUnreconciled):
		logger.Error("Transfer left unreconciled, operator attention required",
			slog.String("transaction_id", result.Entry.TransactionID))
		c.JSON(http.StatusInternalServerError, transferResponse(result, domain.ReasonCompensationFail))
	default:
		logger.Error("Transfer failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, rejection(domain.ReasonInternal))
	}
}

func rejection(reason domain.FailureReason) dto.TransferResponse {
	return dto.TransferResponse{Status: "REJECTED", Reason: string(reason)}
}

func transferResponse(result *dto.TransferResult, reason domain.FailureReason) dto.TransferResponse {
	resp := dto.TransferResponse{Reason: string(reason), Replayed: result.Replayed}
	entry := dto.ToTransactionResponse(&result.Entry)
	resp.Transaction = &entry
	resp.Status = string(result.Entry.Status)
	if resp.Reason == "" {
		resp.Reason = string(result.Entry.Reason)
	}
	return resp
}

// listTransactions returns the transaction history for an account along
// with its current balance.
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email query parameter is required"})
		return
	}

	params := dto.ListTransactionsParams{}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		params.Limit = limit
	}
	if token := c.Query("nextToken"); token != "" {
		params.NextToken = &token
	}

	resp, err := h.transferSvc.ListTransactions(c.Request.Context(), email, params)
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination token"})
			return
		}
		logger.Error("Failed to list transactions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transactions"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
