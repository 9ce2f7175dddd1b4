package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fassa-ttu/fassa-backend/internal/domain"
)

type CourseRepository interface {
	Create(ctx context.Context, req *domain.CourseRequest) (*domain.Course, error)
	FindByID(ctx context.Context, id int64) (*domain.Course, error)
	Update(ctx context.Context, id int64, req *domain.CourseRequest) (*domain.Course, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.Course, error)
	ListByAccount(ctx context.Context, accountID int64) ([]domain.Course, error)
}

type courseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) CourseRepository {
	return &courseRepository{pool: pool}
}

const courseCols = `id, code, title, program, level, semester, lecturer`

func scanCourse(row pgx.Row) (*domain.Course, error) {
	var c domain.Course
	err := row.Scan(&c.ID, &c.Code, &c.Title, &c.Program, &c.Level, &c.Semester, &c.Lecturer)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *courseRepository) Create(ctx context.Context, req *domain.CourseRequest) (*domain.Course, error) {
	const q = `
		INSERT INTO courses (code, title, program, level, semester, lecturer)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + courseCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	c, err := scanCourse(r.pool.QueryRow(ctx, q,
		req.Code, req.Title, req.Program, req.Level, req.Semester, req.Lecturer,
	))
	if err != nil {
		return nil, mapConflict(err)
	}
	return c, nil
}

func (r *courseRepository) FindByID(ctx context.Context, id int64) (*domain.Course, error) {
	const q = `SELECT ` + courseCols + ` FROM courses WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanCourse(r.pool.QueryRow(ctx, q, id))
}

func (r *courseRepository) Update(ctx context.Context, id int64, req *domain.CourseRequest) (*domain.Course, error) {
	const q = `
		UPDATE courses
		SET code = $2, title = $3, program = $4, level = $5, semester = $6, lecturer = $7
		WHERE id = $1
		RETURNING ` + courseCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	c, err := scanCourse(r.pool.QueryRow(ctx, q, id,
		req.Code, req.Title, req.Program, req.Level, req.Semester, req.Lecturer,
	))
	if err != nil {
		return nil, mapConflict(err)
	}
	return c, nil
}

func (r *courseRepository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM courses WHERE id = $1`
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

func (r *courseRepository) List(ctx context.Context, limit, offset int) ([]domain.Course, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	const q = `SELECT ` + courseCols + ` FROM courses ORDER BY code LIMIT $1 OFFSET $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectCourses(rows)
}

// ListByAccount returns the courses a student has registered for.
func (r *courseRepository) ListByAccount(ctx context.Context, accountID int64) ([]domain.Course, error) {
	const q = `
		SELECT c.id, c.code, c.title, c.program, c.level, c.semester, c.lecturer
		FROM courses c
		JOIN course_registrations cr ON cr.course_id = c.id
		WHERE cr.account_id = $1
		ORDER BY c.code`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectCourses(rows)
}

func collectCourses(rows pgx.Rows) ([]domain.Course, error) {
	var courses []domain.Course
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(&c.ID, &c.Code, &c.Title, &c.Program, &c.Level, &c.Semester, &c.Lecturer); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}
