package services

import (
	"context"

	"github.com/digiwallet/wallet_backend/internal/core/domain"
	"github.com/digiwallet/wallet_backend/internal/dto"
)

// TransferSvcFacade is the Transfer Engine contract. Transfer drives one
// attempt to a terminal status. For rejected and failed attempts that
// still produced a ledger entry (insufficient funds, upstream failure,
// unreconciled compensation) both the result and a sentinel error are
// returned so callers can report the specific outcome alongside the entry.
type TransferSvcFacade interface {
	Transfer(ctx context.Context, req dto.CreateTransferRequest) (*dto.TransferResult, error)
	ListTransactions(ctx context.Context, email string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// TopUpSvcFacade is the Top-Up Engine contract.
type TopUpSvcFacade interface {
	CreateCheckoutSession(ctx context.Context, req dto.CreateCheckoutSessionRequest) (string, error)
	TopUp(ctx context.Context, req dto.TopUpRequest) (*domain.Transaction, error)
}

// AccountSvcFacade is the account directory surface.
type AccountSvcFacade interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
}

// ServiceContainer bundles the service facades for route registration.
type ServiceContainer struct {
	Transfer TransferSvcFacade
	TopUp    TopUpSvcFacade
	Account  AccountSvcFacade
}
