package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/digiwallet/wallet_backend/internal/apperrors"
	"github.com/digiwallet/wallet_backend/internal/core/domain"
	portsgw "github.com/digiwallet/wallet_backend/internal/core/ports/gateways"
	portsrepo "github.com/digiwallet/wallet_backend/internal/core/ports/repositories"
	portssvc "github.com/digiwallet/wallet_backend/internal/core/ports/services"
	"github.com/digiwallet/wallet_backend/internal/dto"
	"github.com/digiwallet/wallet_backend/internal/middleware"
	"github.com/digiwallet/wallet_backend/internal/platform/metrics"
)

// topUpService is the top-up engine: a one-sided credit sourced from an
// already-confirmed external payment, recorded against the synthetic
// payment-provider counterparty.
type topUpService struct {
	txMgr        portsrepo.TxManager
	accountRepo  portsrepo.AccountRepository
	ledgerRepo   portsrepo.LedgerRepository
	provider     portsgw.PaymentProvider
	providerName string
	currency     string
}

// NewTopUpService creates a new top-up engine. providerName is the display
// name written on ledger entries ("Stripe"); currency is the checkout
// currency code.
func NewTopUpService(txMgr portsrepo.TxManager, accountRepo portsrepo.AccountRepository, ledgerRepo portsrepo.LedgerRepository, provider portsgw.PaymentProvider, providerName, currency string) portssvc.TopUpSvcFacade {
	return &topUpService{
		txMgr:        txMgr,
		accountRepo:  accountRepo,
		ledgerRepo:   ledgerRepo,
		provider:     provider,
		providerName: providerName,
		currency:     currency,
	}
}

var _ portssvc.TopUpSvcFacade = (*topUpService)(nil)

// CreateCheckoutSession validates the account and asks the payment
// provider for a hosted checkout URL. No balance is touched here; the
// credit happens only after the provider confirms payment.
func (s *topUpService) CreateCheckoutSession(ctx context.Context, req dto.CreateCheckoutSessionRequest) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	req.Email = domain.NormalizeEmail(req.Email)
	if req.Amount <= 0 {
		return "", ErrInvalidAmount
	}
	if _, err := s.accountRepo.FindAccountByEmail(ctx, req.Email); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", ErrAccountNotFound
		}
		return "", fmt.Errorf("failed to resolve account %s: %w", req.Email, err)
	}

	url, err := s.provider.CreateCheckoutSession(ctx, req.Email, req.Amount, s.currency)
	if err != nil {
		logger.Error("Failed to create checkout session",
			slog.String("email", req.Email),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	logger.Info("Checkout session created", slog.String("email", req.Email), slog.Int64("amount", req.Amount))
	return url, nil
}

// TopUp atomically credits the account and writes the SUCCEEDED ledger
// entry. The funding source already confirmed payment, so there is no
// admissibility check and no compensation path: any failure here is a
// storage failure, rolled back as a whole and surfaced as fatal.
func (s *topUpService) TopUp(ctx context.Context, req dto.TopUpRequest) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	req.Email = domain.NormalizeEmail(req.Email)
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	// The confirmed payment must be recorded even if the caller has
	// stopped listening.
	mctx := context.WithoutCancel(ctx)

	var entry domain.Transaction
	err := s.txMgr.WithTx(mctx, func(tx pgx.Tx) error {
		accounts, err := s.accountRepo.FindAccountsByEmailsForUpdate(mctx, tx, []string{req.Email})
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return ErrAccountNotFound
			}
			return fmt.Errorf("failed to lock account: %w", err)
		}
		account := accounts[req.Email]

		now := time.Now().UTC()
		if err := s.accountRepo.ApplyBalanceChangesInTx(mctx, tx, map[string]int64{account.Email: req.Amount}, now); err != nil {
			return fmt.Errorf("failed to credit balance: %w", err)
		}

		entry = domain.Transaction{
			TransactionID: uuid.NewString(),
			FromEmail:     domain.ProviderEmail,
			ToEmail:       account.Email,
			FromName:      s.providerName,
			ToName:        account.Name,
			Amount:        req.Amount,
			Status:        domain.StatusSucceeded,
			CreatedAt:     now,
		}
		return s.ledgerRepo.SaveEntryInTx(mctx, tx, entry)
	})
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		logger.Error("Top-up failed, credit and ledger entry rolled back",
			slog.String("email", req.Email),
			slog.String("error", err.Error()))
		return nil, err
	}

	metrics.TopUpsTotal.Inc()
	logger.Info("Top-up recorded",
		slog.String("transaction_id", entry.TransactionID),
		slog.String("email", req.Email),
		slog.Int64("amount", req.Amount))
	return &entry, nil
}
