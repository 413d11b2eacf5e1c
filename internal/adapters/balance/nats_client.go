package balance

import (
	"context"
	"encoding/json"
	"fmt"

	portsgw "github.com/digiwallet/wallet_backend/internal/core/ports/gateways"
	"github.com/nats-io/nats.go"
)

// AdjustSubject is the request/reply subject the balance service answers on.
const AdjustSubject = "wallet.balance.adjust"

// NATSAdjuster talks to a balance service over NATS request/reply.
type NATSAdjuster struct {
	nc *nats.Conn
}

// NewNATSAdjuster creates an adjuster over an established NATS connection.
func NewNATSAdjuster(nc *nats.Conn) *NATSAdjuster {
	return &NATSAdjuster{nc: nc}
}

var _ portsgw.BalanceAdjuster = (*NATSAdjuster)(nil)

type natsAdjustRequest struct {
	Email  string `json:"email"`
	Amount int64  `json:"amount"`
}

type natsAdjustReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// AdjustBalance sends the signed delta and waits for the reply; the
// caller's context bounds the wait.
func (a *NATSAdjuster) AdjustBalance(ctx context.Context, email string, delta int64) error {
	payload, err := json.Marshal(natsAdjustRequest{Email: email, Amount: delta})
	if err != nil {
		return fmt.Errorf("failed to encode adjustment: %w", err)
	}

	msg, err := a.nc.RequestWithContext(ctx, AdjustSubject, payload)
	if err != nil {
		return fmt.Errorf("balance service request failed: %w", err)
	}

	var reply natsAdjustReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return fmt.Errorf("failed to decode balance service reply: %w", err)
	}
	if !reply.OK {
		return fmt.Errorf("balance service refused adjustment: %s", reply.Error)
	}
	return nil
}
