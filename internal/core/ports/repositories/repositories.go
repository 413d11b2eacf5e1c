package repositories

import (
	"context"
	"time"

	"github.com/digiwallet/wallet_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// TxManager runs fn inside a database transaction: begin, fn, then commit
// on nil or rollback on error. Repository methods suffixed InTx / ForUpdate
// expect the pgx.Tx handed to fn.
type TxManager interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// AccountRepository is the account directory: identity lookup plus the
// conditional balance mutations performed under a transactional boundary.
type AccountRepository interface {
	SaveAccount(ctx context.Context, account domain.Account) error
	// FindAccountByEmail resolves an identifier to its account.
	// Returns apperrors.ErrNotFound when no such account exists.
	FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
	// FindAccountsByEmailsForUpdate locks the given account rows with
	// SELECT ... FOR UPDATE. Locks are always acquired in lexicographic
	// email order so two transfers touching the same pair of accounts in
	// opposite directions cannot deadlock. Returns apperrors.ErrNotFound
	// if any email does not resolve.
	FindAccountsByEmailsForUpdate(ctx context.Context, tx pgx.Tx, emails []string) (map[string]domain.Account, error)
	// ApplyBalanceChangesInTx applies signed deltas to already-locked rows.
	ApplyBalanceChangesInTx(ctx context.Context, tx pgx.Tx, changes map[string]int64, now time.Time) error
}

// LedgerRepository is the append-only transaction ledger.
type LedgerRepository interface {
	// SaveEntryInTx writes one immutable ledger entry. A duplicate
	// idempotency key surfaces as apperrors.ErrDuplicate.
	SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.Transaction) error
	// FindByIdempotencyKey returns the entry recorded for key, or
	// apperrors.ErrNotFound when no attempt with that key completed.
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)
	// FindByIdempotencyKeyInTx is the same lookup through tx. Run after
	// the account row locks are held, it sees the entry committed by a
	// rival attempt that won the race for the same key.
	FindByIdempotencyKeyInTx(ctx context.Context, tx pgx.Tx, key string) (*domain.Transaction, error)
	// ListEntriesByEmail returns entries where email is either side,
	// newest first, with an opaque token for the next page.
	ListEntriesByEmail(ctx context.Context, email string, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// RepositoryProvider bundles the concrete repositories for wiring.
type RepositoryProvider struct {
	TxManager   TxManager
	AccountRepo AccountRepository
	LedgerRepo  LedgerRepository
}
