package dto

import (
	"time"

	"github.com/digiwallet/wallet_backend/internal/core/domain"
)

// TransactionResponse is the caller-facing shape of one ledger entry.
type TransactionResponse struct {
	TransactionID  string    `json:"transactionID"`
	FromEmail      string    `json:"fromEmail"`
	ToEmail        string    `json:"toEmail"`
	FromName       string    `json:"fromName"`
	ToName         string    `json:"toName"`
	Amount         int64     `json:"amount"`
	Status         string    `json:"status"`
	Reason         string    `json:"reason,omitempty"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ToTransactionResponse maps a domain ledger entry to its response shape.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:  t.TransactionID,
		FromEmail:      t.FromEmail,
		ToEmail:        t.ToEmail,
		FromName:       t.FromName,
		ToName:         t.ToName,
		Amount:         t.Amount,
		Status:         string(t.Status),
		Reason:         string(t.Reason),
		IdempotencyKey: t.IdempotencyKey,
		CreatedAt:      t.CreatedAt,
	}
}

// ToTransactionResponses maps a slice of ledger entries.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txns))
	for i := range txns {
		out[i] = ToTransactionResponse(&txns[i])
	}
	return out
}
