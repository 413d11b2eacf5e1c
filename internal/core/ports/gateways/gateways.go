package gateways

import "context"

// BalanceAdjuster is the remote balance-of-record service. AdjustBalance
// applies a signed delta to the identified account and must only return
// nil once the adjustment is confirmed applied. Implementations are
// expected to be safe to retry with the same logical adjustment.
type BalanceAdjuster interface {
	AdjustBalance(ctx context.Context, email string, delta int64) error
}

// PaymentProvider creates hosted checkout sessions for fiat top-ups.
// Confirmation of a completed payment arrives out-of-band and triggers
// the top-up credit separately.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, email string, amount int64, currency string) (string, error)
}
