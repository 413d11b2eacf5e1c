package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/digiwallet/wallet_backend/internal/apperrors"
	"github.com/digiwallet/wallet_backend/internal/core/domain"
	portsrepo "github.com/digiwallet/wallet_backend/internal/core/ports/repositories"
	"github.com/digiwallet/wallet_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for the append-only ledger.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepository {
	return &pgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepository = (*pgxLedgerRepository)(nil)

// SaveEntryInTx writes one immutable ledger entry. The partial unique
// index on idempotency_key turns a concurrent duplicate into ErrDuplicate.
func (r *pgxLedgerRepository) SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.Transaction) error {
	query := `
		INSERT INTO transactions (transaction_id, from_email, to_email, from_name, to_name, amount, status, reason, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	var idemKey *string
	if entry.IdempotencyKey != "" {
		idemKey = &entry.IdempotencyKey
	}
	var reason *string
	if entry.Reason != "" {
		reasonStr := string(entry.Reason)
		reason = &reasonStr
	}

	_, err := tx.Exec(ctx, query,
		entry.TransactionID,
		entry.FromEmail,
		entry.ToEmail,
		entry.FromName,
		entry.ToName,
		entry.Amount,
		string(entry.Status),
		reason,
		idemKey,
		entry.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save ledger entry %s: %w", entry.TransactionID, err)
	}
	return nil
}

const entryColumns = `transaction_id, from_email, to_email, from_name, to_name, amount, status, reason, idempotency_key, created_at`

func scanEntry(row pgx.Row) (*domain.Transaction, error) {
	var (
		entry   domain.Transaction
		status  string
		reason  *string
		idemKey *string
	)
	err := row.Scan(
		&entry.TransactionID,
		&entry.FromEmail,
		&entry.ToEmail,
		&entry.FromName,
		&entry.ToName,
		&entry.Amount,
		&status,
		&reason,
		&idemKey,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.Status = domain.TransactionStatus(status)
	if reason != nil {
		entry.Reason = domain.FailureReason(*reason)
	}
	if idemKey != nil {
		entry.IdempotencyKey = *idemKey
	}
	return &entry, nil
}

// FindByIdempotencyKey returns the entry recorded under key.
func (r *pgxLedgerRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	query := `SELECT ` + entryColumns + ` FROM transactions WHERE idempotency_key = $1;`
	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by idempotency key: %w", err)
	}
	return entry, nil
}

// FindByIdempotencyKeyInTx runs the same lookup through tx. Under read
// committed each statement takes a fresh snapshot, so once the row locks
// are held this sees an entry committed by a concurrent attempt.
func (r *pgxLedgerRepository) FindByIdempotencyKeyInTx(ctx context.Context, tx pgx.Tx, key string) (*domain.Transaction, error) {
	query := `SELECT ` + entryColumns + ` FROM transactions WHERE idempotency_key = $1;`
	entry, err := scanEntry(tx.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by idempotency key: %w", err)
	}
	return entry, nil
}

// ListEntriesByEmail returns entries where email is either side, newest
// first, using a (created_at, transaction_id) cursor for pagination.
func (r *pgxLedgerRepository) ListEntriesByEmail(ctx context.Context, email string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := []any{email, limit + 1}
	query := `SELECT ` + entryColumns + `
		FROM transactions
		WHERE (from_email = $1 OR to_email = $1)`
	if nextToken != nil && *nextToken != "" {
		createdAt, txnID, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += ` AND (created_at, transaction_id) < ($3, $4)`
		args = append(args, createdAt, txnID)
	}
	query += `
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT $2;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list ledger entries for %s: %w", email, err)
	}
	defer rows.Close()

	var entries []domain.Transaction
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	var token *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		t := pagination.EncodeCursor(last.CreatedAt, last.TransactionID)
		token = &t
	}
	return entries, token, nil
}
