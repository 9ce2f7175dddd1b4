package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fassa-ttu/fassa-backend/internal/domain"
)

type RegistrationRepository interface {
	Create(ctx context.Context, accountID, courseID int64) (*domain.CourseRegistration, error)
}

type registrationRepository struct {
	pool *pgxpool.Pool
}

func NewRegistrationRepository(pool *pgxpool.Pool) RegistrationRepository {
	return &registrationRepository{pool: pool}
}

const registrationCols = `id, account_id, course_id, registered_at`

// Create relies on the (account_id, course_id) unique constraint: a
// concurrent duplicate registration surfaces as a conflict, never two
// rows.
func (r *registrationRepository) Create(ctx context.Context, accountID, courseID int64) (*domain.CourseRegistration, error) {
	const q = `
		INSERT INTO course_registrations (account_id, course_id)
		VALUES ($1, $2)
		RETURNING ` + registrationCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var reg domain.CourseRegistration
	err := r.pool.QueryRow(ctx, q, accountID, courseID).Scan(
		&reg.ID, &reg.AccountID, &reg.CourseID, &reg.RegisteredAt,
	)
	if err != nil {
		return nil, mapConflict(err)
	}
	return &reg, nil
}
