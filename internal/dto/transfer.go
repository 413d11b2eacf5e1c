package dto

import "github.com/digiwallet/wallet_backend/internal/core/domain"

// CreateTransferRequest is the caller-facing transfer request. The
// idempotency key is normally supplied via the Idempotency-Key header;
// the body field is a fallback for clients that cannot set headers.
type CreateTransferRequest struct {
	FromEmail      string `json:"from_email" binding:"required,email"`
	ToEmail        string `json:"to_email" binding:"required,email"`
	Amount         int64  `json:"amount" binding:"required"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// TransferResult is the engine's outcome: the ledger entry recorded for
// the attempt, plus whether it was served from a prior attempt with the
// same idempotency key.
type TransferResult struct {
	Entry    domain.Transaction
	Replayed bool
}

// TransferResponse is the HTTP response for a transfer attempt. Reason is
// present on every non-succeeded outcome and is machine-readable.
type TransferResponse struct {
	Status      string               `json:"status"`
	Reason      string               `json:"reason,omitempty"`
	Replayed    bool                 `json:"replayed,omitempty"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
}
