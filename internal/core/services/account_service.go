package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/digiwallet/wallet_backend/internal/apperrors"
	"github.com/digiwallet/wallet_backend/internal/core/domain"
	portsrepo "github.com/digiwallet/wallet_backend/internal/core/ports/repositories"
	portssvc "github.com/digiwallet/wallet_backend/internal/core/ports/services"
	"github.com/digiwallet/wallet_backend/internal/dto"
	"github.com/digiwallet/wallet_backend/internal/middleware"
)

// accountService is the account directory surface: registration and lookup.
// Balances are never mutated here; that is the engines' job.
type accountService struct {
	accountRepo portsrepo.AccountRepository
}

// NewAccountService creates a new account directory service.
func NewAccountService(accountRepo portsrepo.AccountRepository) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount registers a new wallet account with a zero balance.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	email := domain.NormalizeEmail(req.Email)
	if email == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: email and name are required", apperrors.ErrValidation)
	}
	if email == domain.ProviderEmail {
		return nil, fmt.Errorf("%w: %s is reserved", apperrors.ErrValidation, domain.ProviderEmail)
	}

	now := time.Now().UTC()
	account := domain.Account{
		Email:   email,
		Name:    req.Name,
		Balance: 0,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, email)
		}
		logger.Error("Failed to save account", slog.String("email", email), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", slog.String("email", email))
	return &account, nil
}

// GetAccountByEmail resolves an identifier to its account.
func (s *accountService) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account %s: %w", email, err)
	}
	return account, nil
}

// ListAccounts returns a page of accounts.
func (s *accountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}
