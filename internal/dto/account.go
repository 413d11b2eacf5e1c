package dto

import (
	"time"

	"github.com/digiwallet/wallet_backend/internal/core/domain"
)

// CreateAccountRequest registers a new wallet account in the directory.
type CreateAccountRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
}

// AccountResponse is the caller-facing shape of an account.
type AccountResponse struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToAccountResponse maps a domain account to its response shape.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		Email:     a.Email,
		Name:      a.Name,
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
	}
}

// ListTransactionsParams holds query parameters for history listing.
type ListTransactionsParams struct {
	Limit     int
	NextToken *string
}

// ListTransactionsResponse is the history response: the entries touching
// the account on either side, newest first, plus the current balance.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Balance      int64                 `json:"balance"`
	NextToken    *string               `json:"nextToken,omitempty"`
}
