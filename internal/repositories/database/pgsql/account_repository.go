package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/digiwallet/wallet_backend/internal/apperrors"
	"github.com/digiwallet/wallet_backend/internal/core/domain"
	portsrepo "github.com/digiwallet/wallet_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type pgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepository {
	return &pgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepository = (*pgxAccountRepository)(nil)

// SaveAccount inserts a new account row.
func (r *pgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (email, name, balance, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.Pool.Exec(ctx, query,
		account.Email,
		account.Name,
		account.Balance,
		account.CreatedAt,
		account.LastUpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save account %s: %w", account.Email, err)
	}
	return nil
}

// FindAccountByEmail retrieves an account by its email identifier.
func (r *pgxAccountRepository) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `
		SELECT email, name, balance, created_at, last_updated_at
		FROM accounts
		WHERE email = $1;
	`
	var acc domain.Account
	err := r.Pool.QueryRow(ctx, query, email).Scan(
		&acc.Email,
		&acc.Name,
		&acc.Balance,
		&acc.CreatedAt,
		&acc.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account %s: %w", email, err)
	}
	return &acc, nil
}

// ListAccounts returns a page of accounts ordered by email.
func (r *pgxAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	query := `
		SELECT email, name, balance, created_at, last_updated_at
		FROM accounts
		ORDER BY email
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var acc domain.Account
		if err := rows.Scan(&acc.Email, &acc.Name, &acc.Balance, &acc.CreatedAt, &acc.LastUpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account rows: %w", err)
	}
	return accounts, nil
}

// FindAccountsByEmailsForUpdate locks the given rows with FOR UPDATE,
// acquiring locks in lexicographic email order regardless of the order
// requested so transfers touching the same pair cannot deadlock.
func (r *pgxAccountRepository) FindAccountsByEmailsForUpdate(ctx context.Context, tx pgx.Tx, emails []string) (map[string]domain.Account, error) {
	unique := make([]string, 0, len(emails))
	seen := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		if _, ok := seen[email]; !ok {
			seen[email] = struct{}{}
			unique = append(unique, email)
		}
	}
	sort.Strings(unique)

	query := `
		SELECT email, name, balance, created_at, last_updated_at
		FROM accounts
		WHERE email = $1
		FOR UPDATE;
	`
	accounts := make(map[string]domain.Account, len(unique))
	for _, email := range unique {
		var acc domain.Account
		err := tx.QueryRow(ctx, query, email).Scan(
			&acc.Email,
			&acc.Name,
			&acc.Balance,
			&acc.CreatedAt,
			&acc.LastUpdatedAt,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("account %s: %w", email, apperrors.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to lock account %s: %w", email, err)
		}
		accounts[email] = acc
	}
	return accounts, nil
}

// ApplyBalanceChangesInTx applies signed deltas to rows already locked in
// this transaction. The balance CHECK constraint is the final guard
// against a negative balance reaching disk.
func (r *pgxAccountRepository) ApplyBalanceChangesInTx(ctx context.Context, tx pgx.Tx, changes map[string]int64, now time.Time) error {
	emails := make([]string, 0, len(changes))
	for email := range changes {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	query := `
		UPDATE accounts
		SET balance = balance + $1, last_updated_at = $2
		WHERE email = $3;
	`
	for _, email := range emails {
		tag, err := tx.Exec(ctx, query, changes[email], now, email)
		if err != nil {
			return fmt.Errorf("failed to update balance for %s: %w", email, err)
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("balance update for %s affected %d rows: %w", email, tag.RowsAffected(), apperrors.ErrNotFound)
		}
	}
	return nil
}
