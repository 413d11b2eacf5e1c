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

var (
	ErrInvalidAmount     = fmt.Errorf("%w: amount must be a positive integer", apperrors.ErrValidation)
	ErrSelfTransfer      = fmt.Errorf("%w: sender and receiver must differ", apperrors.ErrValidation)
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrDuplicateRequest  = errors.New("a transfer with this idempotency key is already recorded or in flight")
	ErrRemoteUnavailable = errors.New("remote balance service unavailable")
)

// TransferConfig bounds the remote legs of the mutation protocol.
type TransferConfig struct {
	RemoteCallTimeout time.Duration // per remote call
	RetryBackoff      time.Duration // fixed backoff before the single retry
}

const (
	defaultRemoteCallTimeout = 3 * time.Second
	defaultRetryBackoff      = 200 * time.Millisecond
)

// transferService is the transfer engine: it decides admissibility,
// mutates both balances (local rows plus the optional remote balance of
// record) and records exactly one immutable ledger entry per attempt.
type transferService struct {
	txMgr       portsrepo.TxManager
	accountRepo portsrepo.AccountRepository
	ledgerRepo  portsrepo.LedgerRepository
	adjuster    portsgw.BalanceAdjuster // nil when local rows are authoritative
	cfg         TransferConfig
}

// NewTransferService creates a new transfer engine. adjuster may be nil if
// no remote balance-of-record is deployed.
func NewTransferService(txMgr portsrepo.TxManager, accountRepo portsrepo.AccountRepository, ledgerRepo portsrepo.LedgerRepository, adjuster portsgw.BalanceAdjuster, cfg TransferConfig) portssvc.TransferSvcFacade {
	if cfg.RemoteCallTimeout <= 0 {
		cfg.RemoteCallTimeout = defaultRemoteCallTimeout
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	return &transferService{
		txMgr:       txMgr,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		adjuster:    adjuster,
		cfg:         cfg,
	}
}

var _ portssvc.TransferSvcFacade = (*transferService)(nil)

// Transfer drives one transfer attempt to a terminal status. When the
// attempt produced a ledger entry but did not succeed (insufficient
// funds, upstream failure, failed compensation) the result carries the
// entry and the error identifies the outcome; callers must check both.
func (s *transferService) Transfer(ctx context.Context, req dto.CreateTransferRequest) (*dto.TransferResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	req.FromEmail = domain.NormalizeEmail(req.FromEmail)
	req.ToEmail = domain.NormalizeEmail(req.ToEmail)

	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.FromEmail == req.ToEmail {
		return nil, ErrSelfTransfer
	}

	// Idempotent replay: a key that already reached a terminal status
	// returns the recorded entry unchanged, with no further mutation.
	if req.IdempotencyKey != "" {
		existing, err := s.ledgerRepo.FindByIdempotencyKey(ctx, req.IdempotencyKey)
		if err == nil {
			logger.Info("Idempotent replay, returning recorded outcome",
				slog.String("idempotency_key", req.IdempotencyKey),
				slog.String("transaction_id", existing.TransactionID))
			return &dto.TransferResult{Entry: *existing, Replayed: true}, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("idempotency lookup failed: %w", err)
		}
	}

	// Past this point the attempt must reach a terminal recorded status
	// even if the caller cancels or disconnects.
	mctx := context.WithoutCancel(ctx)

	var (
		entry         domain.Transaction
		outcomeErr    error
		replayed      bool
		remoteApplied bool
	)
	err := s.txMgr.WithTx(mctx, func(tx pgx.Tx) error {
		// Row locks are taken in lexicographic email order inside the
		// repository, which serializes concurrent transfers per account.
		accounts, err := s.accountRepo.FindAccountsByEmailsForUpdate(mctx, tx, []string{req.FromEmail, req.ToEmail})
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return ErrAccountNotFound
			}
			return fmt.Errorf("failed to lock accounts: %w", err)
		}
		sender := accounts[req.FromEmail]
		receiver := accounts[req.ToEmail]

		// Re-check the key now that the locks are held. A rival attempt
		// that raced past the first check has committed by the time the
		// locks are granted; returning its entry here keeps the remote
		// legs from running twice for one key.
		if req.IdempotencyKey != "" {
			existing, err := s.ledgerRepo.FindByIdempotencyKeyInTx(mctx, tx, req.IdempotencyKey)
			if err == nil {
				entry = *existing
				replayed = true
				return nil
			}
			if !errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("idempotency lookup failed: %w", err)
			}
		}

		entry = domain.Transaction{
			TransactionID:  uuid.NewString(),
			FromEmail:      sender.Email,
			ToEmail:        receiver.Email,
			FromName:       sender.Name,
			ToName:         receiver.Name,
			Amount:         req.Amount,
			IdempotencyKey: req.IdempotencyKey,
			CreatedAt:      time.Now().UTC(),
		}

		// Inadmissible transfers still produce a ledger entry: intent is
		// always recorded, not just success.
		if sender.Balance < req.Amount {
			entry.Status = domain.StatusLoggedFailed
			entry.Reason = domain.ReasonInsufficientFunds
			outcomeErr = ErrInsufficientFunds
			return s.ledgerRepo.SaveEntryInTx(mctx, tx, entry)
		}

		if s.adjuster != nil {
			// Debit first; the credit is only attempted once the debit is
			// confirmed. Both legs are awaited synchronously.
			if err := s.adjustWithRetry(mctx, "debit", sender.Email, -req.Amount); err != nil {
				logger.Warn("Remote debit failed, no balance was moved",
					slog.String("transaction_id", entry.TransactionID),
					slog.String("error", err.Error()))
				entry.Status = domain.StatusLoggedFailed
				entry.Reason = domain.ReasonUpstreamFailure
				outcomeErr = ErrRemoteUnavailable
				return s.ledgerRepo.SaveEntryInTx(mctx, tx, entry)
			}
			if err := s.adjustWithRetry(mctx, "credit", receiver.Email, req.Amount); err != nil {
				if cerr := s.adjustWithRetry(mctx, "compensation", sender.Email, req.Amount); cerr != nil {
					logger.Error("Compensation failed, manual reconciliation required",
						slog.String("transaction_id", entry.TransactionID),
						slog.String("from", sender.Email),
						slog.String("to", receiver.Email),
						slog.Int64("amount", req.Amount),
						slog.String("credit_error", err.Error()),
						slog.String("compensation_error", cerr.Error()))
					entry.Status = domain.StatusUnreconciled
					entry.Reason = domain.ReasonCompensationFail
					outcomeErr = apperrors.ErrUnreconciled
					return s.ledgerRepo.SaveEntryInTx(mctx, tx, entry)
				}
				logger.Warn("Remote credit failed, debit compensated",
					slog.String("transaction_id", entry.TransactionID),
					slog.String("error", err.Error()))
				entry.Status = domain.StatusLoggedFailed
				entry.Reason = domain.ReasonUpstreamFailure
				outcomeErr = ErrRemoteUnavailable
				return s.ledgerRepo.SaveEntryInTx(mctx, tx, entry)
			}
			remoteApplied = true
		}

		changes := map[string]int64{
			sender.Email:   -req.Amount,
			receiver.Email: req.Amount,
		}
		if err := s.accountRepo.ApplyBalanceChangesInTx(mctx, tx, changes, entry.CreatedAt); err != nil {
			return fmt.Errorf("failed to apply balance changes: %w", err)
		}
		entry.Status = domain.StatusSucceeded
		return s.ledgerRepo.SaveEntryInTx(mctx, tx, entry)
	})
	if err != nil {
		// The local transaction rolled back. Confirmed remote legs are
		// not covered by that rollback and must be unwound here.
		if remoteApplied {
			s.reverseRemoteLegs(mctx, logger, entry)
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost the race for the idempotency key against a concurrent
			// attempt; the unique index rejected the second entry.
			return nil, ErrDuplicateRequest
		}
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		logger.Error("Transfer attempt failed with storage error", slog.String("error", err.Error()))
		return nil, err
	}

	if replayed {
		logger.Info("Idempotent replay, returning recorded outcome",
			slog.String("idempotency_key", req.IdempotencyKey),
			slog.String("transaction_id", entry.TransactionID))
		return &dto.TransferResult{Entry: entry, Replayed: true}, nil
	}

	metrics.TransfersTotal.WithLabelValues(string(entry.Status)).Inc()
	logger.Info("Transfer attempt recorded",
		slog.String("transaction_id", entry.TransactionID),
		slog.String("status", string(entry.Status)))
	return &dto.TransferResult{Entry: entry}, outcomeErr
}

// adjustWithRetry performs one remote adjustment with a bounded timeout,
// retrying once after a short fixed backoff. No unbounded retries, no
// background continuation after returning.
func (s *transferService) adjustWithRetry(ctx context.Context, leg string, email string, delta int64) error {
	var err error
	for attempt := 0; attempt <= 1; attempt++ {
		if attempt > 0 {
			time.Sleep(s.cfg.RetryBackoff)
		}
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.RemoteCallTimeout)
		err = s.adjuster.AdjustBalance(callCtx, email, delta)
		cancel()
		if err == nil {
			return nil
		}
	}
	metrics.RemoteAdjustFailures.WithLabelValues(leg).Inc()
	return err
}

// reverseRemoteLegs unwinds both confirmed remote legs after the local
// transaction failed to commit. A failed reversal leaves the remote
// balance of record ahead of the ledger and is logged with the full
// identifiers for operator recovery.
func (s *transferService) reverseRemoteLegs(ctx context.Context, logger *slog.Logger, entry domain.Transaction) {
	if err := s.adjustWithRetry(ctx, "compensation", entry.ToEmail, -entry.Amount); err != nil {
		logger.Error("Failed to reverse remote credit after local rollback",
			slog.String("transaction_id", entry.TransactionID),
			slog.String("to", entry.ToEmail),
			slog.Int64("amount", entry.Amount),
			slog.String("error", err.Error()))
	}
	if err := s.adjustWithRetry(ctx, "compensation", entry.FromEmail, entry.Amount); err != nil {
		logger.Error("Failed to reverse remote debit after local rollback",
			slog.String("transaction_id", entry.TransactionID),
			slog.String("from", entry.FromEmail),
			slog.Int64("amount", entry.Amount),
			slog.String("error", err.Error()))
	}
}

// ListTransactions returns the ledger entries touching email on either
// side, newest first, along with the account's current balance.
func (s *transferService) ListTransactions(ctx context.Context, email string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	email = domain.NormalizeEmail(email)
	account, err := s.accountRepo.FindAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to resolve account %s: %w", email, err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	entries, nextToken, err := s.ledgerRepo.ListEntriesByEmail(ctx, email, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list ledger entries", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve transactions: %w", err)
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(entries),
		Balance:      account.Balance,
		NextToken:    nextToken,
	}, nil
}
