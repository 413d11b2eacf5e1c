package domain

import "time"

// TransactionStatus is the terminal outcome recorded on a ledger entry.
// An attempt is conceptually PENDING while in flight, but PENDING is
// never persisted: every row in the ledger carries one of the terminal
// statuses below and is immutable once written.
type TransactionStatus string

const (
	// StatusSucceeded means both sides of the balance mutation were confirmed.
	StatusSucceeded TransactionStatus = "SUCCEEDED"
	// StatusLoggedFailed means the attempt was recorded but the balance
	// mutation did not complete (rejected, or failed and fully compensated).
	StatusLoggedFailed TransactionStatus = "LOGGED_FAILED"
	// StatusUnreconciled means a partial mutation could not be compensated.
	// The entry is terminal but flagged for out-of-band operator recovery.
	StatusUnreconciled TransactionStatus = "UNRECONCILED"
)

// FailureReason is the machine-readable reason attached to a non-succeeded
// entry. Callers must be able to tell a rejected request from an
// infrastructure failure, so these never collapse into one generic code.
type FailureReason string

const (
	ReasonInvalidAmount     FailureReason = "INVALID_AMOUNT"
	ReasonSelfTransfer      FailureReason = "SELF_TRANSFER"
	ReasonUnknownAccount    FailureReason = "UNKNOWN_ACCOUNT"
	ReasonInsufficientFunds FailureReason = "INSUFFICIENT_FUNDS"
	ReasonDuplicateRequest  FailureReason = "DUPLICATE_REQUEST"
	ReasonUpstreamFailure   FailureReason = "UPSTREAM_FAILURE"
	ReasonCompensationFail  FailureReason = "COMPENSATION_FAILED"
	ReasonInternal          FailureReason = "INTERNAL"
)

// ProviderEmail is the reserved synthetic counterparty recorded as the
// sender of top-up entries funded by the external payment provider.
// No real account may use this identifier.
const ProviderEmail = "payments@stripe.local"

// Transaction is one immutable ledger entry describing a single transfer
// or top-up attempt and its outcome. Exactly one entry exists per attempt,
// regardless of whether the attempt succeeded.
type Transaction struct {
	TransactionID  string            `json:"transactionID"` // UUID
	FromEmail      string            `json:"fromEmail"`
	ToEmail        string            `json:"toEmail"`
	FromName       string            `json:"fromName"`
	ToName         string            `json:"toName"`
	Amount         int64             `json:"amount"` // Positive, minor units
	Status         TransactionStatus `json:"status"`
	Reason         FailureReason     `json:"reason,omitempty"` // Empty on success
	IdempotencyKey string            `json:"idempotencyKey,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// Valid reports whether s is one of the persistable terminal statuses.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusSucceeded, StatusLoggedFailed, StatusUnreconciled:
		return true
	}
	return false
}

// Terminal reports whether s is terminal. All persistable statuses are
// terminal; the distinction matters only for the in-flight attempt.
func (s TransactionStatus) Terminal() bool {
	return s.Valid()
}

// NeedsReconciliation reports whether the entry records a partially applied
// mutation whose compensation failed.
func (t Transaction) NeedsReconciliation() bool {
	return t.Status == StatusUnreconciled
}
