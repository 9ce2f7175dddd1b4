package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fassa-ttu/fassa-backend/internal/domain"
)

type TimetableRepository interface {
	Create(ctx context.Context, req *domain.TimetableEntryRequest) (*domain.TimetableEntry, error)
	FindByID(ctx context.Context, id int64) (*domain.TimetableEntry, error)
	Update(ctx context.Context, id int64, req *domain.TimetableEntryRequest) (*domain.TimetableEntry, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, courseID *int64) ([]domain.TimetableEntry, error)
	ListByAccount(ctx context.Context, accountID int64) ([]domain.TimetableEntry, error)
}

type timetableRepository struct {
	pool *pgxpool.Pool
}

func NewTimetableRepository(pool *pgxpool.Pool) TimetableRepository {
	return &timetableRepository{pool: pool}
}

// Entries carry the course code/title for display; start and end times
// are formatted as HH:MM on the way out.
const entrySelect = `
	SELECT t.id, t.course_id, c.code, c.title, t.day_of_week,
		to_char(t.start_time, 'HH24:MI'), to_char(t.end_time, 'HH24:MI'), t.venue
	FROM timetable_entries t
	JOIN courses c ON c.id = t.course_id`

func scanEntry(row pgx.Row) (*domain.TimetableEntry, error) {
	var e domain.TimetableEntry
	err := row.Scan(&e.ID, &e.CourseID, &e.CourseCode, &e.CourseTitle,
		&e.DayOfWeek, &e.StartTime, &e.EndTime, &e.Venue)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *timetableRepository) Create(ctx context.Context, req *domain.TimetableEntryRequest) (*domain.TimetableEntry, error) {
	const q = `
		INSERT INTO timetable_entries (course_id, day_of_week, start_time, end_time, venue)
		VALUES ($1, $2, $3::time, $4::time, $5)
		RETURNING id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var id int64
	err := r.pool.QueryRow(ctx, q, req.CourseID, req.DayOfWeek, req.StartTime, req.EndTime, req.Venue).Scan(&id)
	if err != nil {
		return nil, mapConflict(err)
	}
	return r.FindByID(ctx, id)
}

func (r *timetableRepository) FindByID(ctx context.Context, id int64) (*domain.TimetableEntry, error) {
	const q = entrySelect + ` WHERE t.id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanEntry(r.pool.QueryRow(ctx, q, id))
}

func (r *timetableRepository) Update(ctx context.Context, id int64, req *domain.TimetableEntryRequest) (*domain.TimetableEntry, error) {
	const q = `
		UPDATE timetable_entries
		SET course_id = $2, day_of_week = $3, start_time = $4::time, end_time = $5::time, venue = $6
		WHERE id = $1
		RETURNING id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var updated int64
	err := r.pool.QueryRow(ctx, q, id, req.CourseID, req.DayOfWeek, req.StartTime, req.EndTime, req.Venue).Scan(&updated)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, mapConflict(err)
	}
	return r.FindByID(ctx, updated)
}

func (r *timetableRepository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM timetable_entries WHERE id = $1`
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

func (r *timetableRepository) List(ctx context.Context, courseID *int64) ([]domain.TimetableEntry, error) {
	q := entrySelect
	args := []any{}
	if courseID != nil {
		q += ` WHERE t.course_id = $1`
		args = append(args, *courseID)
	}
	q += ` ORDER BY t.day_of_week, t.start_time`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

// ListByAccount projects a student's personal timetable from their
// course registrations, ordered by (day_of_week, start_time).
func (r *timetableRepository) ListByAccount(ctx context.Context, accountID int64) ([]domain.TimetableEntry, error) {
	const q = entrySelect + `
		JOIN course_registrations cr ON cr.course_id = t.course_id
		WHERE cr.account_id = $1
		ORDER BY t.day_of_week, t.start_time`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]domain.TimetableEntry, error) {
	var entries []domain.TimetableEntry
	for rows.Next() {
		var e domain.TimetableEntry
		if err := rows.Scan(&e.ID, &e.CourseID, &e.CourseCode, &e.CourseTitle,
			&e.DayOfWeek, &e.StartTime, &e.EndTime, &e.Venue); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
