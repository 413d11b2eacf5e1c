package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/digiwallet/wallet_backend/internal/apperrors"
	portssvc "github.com/digiwallet/wallet_backend/internal/core/ports/services"
	"github.com/digiwallet/wallet_backend/internal/core/services"
	"github.com/digiwallet/wallet_backend/internal/dto"
	"github.com/digiwallet/wallet_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler exposes the account directory surface.
type accountHandler struct {
	accountSvc portssvc.AccountSvcFacade
}

func newAccountHandler(accountSvc portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountSvc: accountSvc}
}

func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind account request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	account, err := h.accountSvc.CreateAccount(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "Account already exists"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create account", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	email := c.Param("email")

	account, err := h.accountSvc.GetAccountByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		logger.Error("Failed to get account", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account"})
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	accounts, err := h.accountSvc.ListAccounts(c.Request.Context(), limit, offset)
	if err != nil {
		logger.Error("Failed to list accounts", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list accounts"})
		return
	}

	resp := make([]dto.AccountResponse, len(accounts))
	for i := range accounts {
		resp[i] = dto.ToAccountResponse(&accounts[i])
	}
	c.JSON(http.StatusOK, gin.H{"accounts": resp})
}
