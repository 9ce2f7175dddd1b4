package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fassa-ttu/fassa-backend/internal/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	FindByVerificationToken(ctx context.Context, token string) (*domain.Account, error)
	MarkVerified(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Update(ctx context.Context, id int64, req *domain.UpdateAccountRequest) (*domain.Account, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, roles []domain.Role, limit, offset int) ([]domain.Account, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountCols = `id, email, full_name, role, index_number, position,
active, verified, verification_token, password_hash, created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID, &a.Email, &a.FullName, &a.Role, &a.IndexNumber, &a.Position,
		&a.Active, &a.Verified, &a.VerificationToken, &a.PasswordHash,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepository) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	const q = `
		INSERT INTO accounts (email, full_name, role, index_number, position,
			active, verified, verification_token, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + accountCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	created, err := scanAccount(r.pool.QueryRow(ctx, q,
		a.Email, a.FullName, a.Role, a.IndexNumber, a.Position,
		a.Active, a.Verified, a.VerificationToken, a.PasswordHash,
	))
	if err != nil {
		return nil, mapConflict(err)
	}
	return created, nil
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const q = `SELECT ` + accountCols + ` FROM accounts WHERE email = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanAccount(r.pool.QueryRow(ctx, q, email))
}

func (r *accountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	const q = `SELECT ` + accountCols + ` FROM accounts WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanAccount(r.pool.QueryRow(ctx, q, id))
}

func (r *accountRepository) FindByVerificationToken(ctx context.Context, token string) (*domain.Account, error) {
	const q = `SELECT ` + accountCols + ` FROM accounts WHERE verification_token = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanAccount(r.pool.QueryRow(ctx, q, token))
}

func (r *accountRepository) MarkVerified(ctx context.Context, id int64) error {
	const q = `UPDATE accounts SET verified = true, active = true, updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const q = `UPDATE accounts SET password_hash = $2, updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id, passwordHash)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) Update(ctx context.Context, id int64, req *domain.UpdateAccountRequest) (*domain.Account, error) {
	const q = `
		UPDATE accounts
		SET
			full_name = COALESCE($2, full_name),
			index_number = COALESCE($3, index_number),
			position = COALESCE($4, position),
			active = COALESCE($5, active),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + accountCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	updated, err := scanAccount(r.pool.QueryRow(ctx, q, id, req.FullName, req.IndexNumber, req.Position, req.Active))
	if err != nil {
		return nil, mapConflict(err)
	}
	return updated, nil
}

func (r *accountRepository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM accounts WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) List(ctx context.Context, roles []domain.Role, limit, offset int) ([]domain.Account, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT ` + accountCols + `
		FROM accounts
		WHERE role = ANY($1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	roleStrs := make([]string, len(roles))
	for i, role := range roles {
		roleStrs[i] = string(role)
	}

	rows, err := r.pool.Query(ctx, q, roleStrs, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(
			&a.ID, &a.Email, &a.FullName, &a.Role, &a.IndexNumber, &a.Position,
			&a.Active, &a.Verified, &a.VerificationToken, &a.PasswordHash,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}
