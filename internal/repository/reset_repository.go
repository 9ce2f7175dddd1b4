package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fassa-ttu/fassa-backend/internal/domain"
)

type ResetRepository interface {
	Create(ctx context.Context, accountID int64, token string, expiresAt time.Time) (*domain.PasswordResetRequest, error)
	FindByToken(ctx context.Context, token string) (*domain.PasswordResetRequest, error)
	Delete(ctx context.Context, id int64) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type resetRepository struct {
	pool *pgxpool.Pool
}

func NewResetRepository(pool *pgxpool.Pool) ResetRepository {
	return &resetRepository{pool: pool}
}

const resetCols = `id, account_id, token, created_at, expires_at`

func (r *resetRepository) Create(ctx context.Context, accountID int64, token string, expiresAt time.Time) (*domain.PasswordResetRequest, error) {
	const q = `
		INSERT INTO password_resets (account_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING ` + resetCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var p domain.PasswordResetRequest
	err := r.pool.QueryRow(ctx, q, accountID, token, expiresAt).Scan(
		&p.ID, &p.AccountID, &p.Token, &p.CreatedAt, &p.ExpiresAt,
	)
	if err != nil {
		return nil, mapConflict(err)
	}
	return &p, nil
}

func (r *resetRepository) FindByToken(ctx context.Context, token string) (*domain.PasswordResetRequest, error) {
	const q = `SELECT ` + resetCols + ` FROM password_resets WHERE token = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var p domain.PasswordResetRequest
	err := r.pool.QueryRow(ctx, q, token).Scan(
		&p.ID, &p.AccountID, &p.Token, &p.CreatedAt, &p.ExpiresAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *resetRepository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM password_resets WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id)
	return err
}

// DeleteExpired lazily purges reset requests past their window.
func (r *resetRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const q = `DELETE FROM password_resets WHERE expires_at < now()`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
