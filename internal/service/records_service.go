package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fassa-ttu/fassa-backend/internal/domain"
	"github.com/fassa-ttu/fassa-backend/internal/repository"
	"github.com/fassa-ttu/fassa-backend/pkg/events"
	"github.com/fassa-ttu/fassa-backend/pkg/logger"
)

type RecordsService interface {
	CreateCourse(ctx context.Context, caller domain.Role, req *domain.CourseRequest) (*domain.Course, error)
	GetCourse(ctx context.Context, caller domain.Role, id int64) (*domain.Course, error)
	UpdateCourse(ctx context.Context, caller domain.Role, id int64, req *domain.CourseRequest) (*domain.Course, error)
	DeleteCourse(ctx context.Context, caller domain.Role, id int64) error
	ListCourses(ctx context.Context, caller domain.Role, limit, offset int) ([]domain.Course, error)

	CreateTimetableEntry(ctx context.Context, caller domain.Role, req *domain.TimetableEntryRequest) (*domain.TimetableEntry, error)
	UpdateTimetableEntry(ctx context.Context, caller domain.Role, id int64, req *domain.TimetableEntryRequest) (*domain.TimetableEntry, error)
	DeleteTimetableEntry(ctx context.Context, caller domain.Role, id int64) error
	ListTimetable(ctx context.Context, caller domain.Role, courseID *int64) ([]domain.TimetableEntry, error)

	RegisterForCourse(ctx context.Context, caller domain.Role, accountID, courseID int64) (*domain.CourseRegistration, error)
	ListMyCourses(ctx context.Context, caller domain.Role, accountID int64) ([]domain.Course, error)
	ListMyTimetable(ctx context.Context, caller domain.Role, accountID int64) ([]domain.TimetableEntry, error)
}

type recordsService struct {
	courseRepo       repository.CourseRepository
	timetableRepo    repository.TimetableRepository
	registrationRepo repository.RegistrationRepository
	eventBus         events.Publisher
}

func NewRecordsService(
	courseRepo repository.CourseRepository,
	timetableRepo repository.TimetableRepository,
	registrationRepo repository.RegistrationRepository,
	eventBus events.Publisher,
) RecordsService {
	return &recordsService{
		courseRepo:       courseRepo,
		timetableRepo:    timetableRepo,
		registrationRepo: registrationRepo,
		eventBus:         eventBus,
	}
}

func (s *recordsService) CreateCourse(ctx context.Context, caller domain.Role, req *domain.CourseRequest) (*domain.Course, error) {
	if err := domain.CanWriteCatalog(caller); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.courseRepo.Create(ctx, req)
}

func (s *recordsService) GetCourse(ctx context.Context, caller domain.Role, id int64) (*domain.Course, error) {
	if err := domain.CanReadCatalog(caller); err != nil {
		return nil, err
	}
	course, err := s.courseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return nil, domain.ErrNotFound
	}
	return course, nil
}

func (s *recordsService) UpdateCourse(ctx context.Context, caller domain.Role, id int64, req *domain.CourseRequest) (*domain.Course, error) {
	if err := domain.CanWriteCatalog(caller); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	course, err := s.courseRepo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, domain.ErrNotFound
	}
	return course, nil
}

func (s *recordsService) DeleteCourse(ctx context.Context, caller domain.Role, id int64) error {
	if err := domain.CanWriteCatalog(caller); err != nil {
		return err
	}
	err := s.courseRepo.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func (s *recordsService) ListCourses(ctx context.Context, caller domain.Role, limit, offset int) ([]domain.Course, error) {
	if err := domain.CanReadCatalog(caller); err != nil {
		return nil, err
	}
	courses, err := s.courseRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (s *recordsService) CreateTimetableEntry(ctx context.Context, caller domain.Role, req *domain.TimetableEntryRequest) (*domain.TimetableEntry, error) {
	if err := domain.CanWriteCatalog(caller); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.FindByID(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return nil, domain.ErrNotFound
	}

	return s.timetableRepo.Create(ctx, req)
}

func (s *recordsService) UpdateTimetableEntry(ctx context.Context, caller domain.Role, id int64, req *domain.TimetableEntryRequest) (*domain.TimetableEntry, error) {
	if err := domain.CanWriteCatalog(caller); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entry, err := s.timetableRepo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrNotFound
	}
	return entry, nil
}

func (s *recordsService) DeleteTimetableEntry(ctx context.Context, caller domain.Role, id int64) error {
	if err := domain.CanWriteCatalog(caller); err != nil {
		return err
	}
	err := s.timetableRepo.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func (s *recordsService) ListTimetable(ctx context.Context, caller domain.Role, courseID *int64) ([]domain.TimetableEntry, error) {
	if err := domain.CanReadCatalog(caller); err != nil {
		return nil, err
	}
	entries, err := s.timetableRepo.List(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list timetable: %w", err)
	}
	return entries, nil
}

func (s *recordsService) RegisterForCourse(ctx context.Context, caller domain.Role, accountID, courseID int64) (*domain.CourseRegistration, error) {
	if err := domain.CanRegisterCourse(caller); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return nil, domain.ErrNotFound
	}

	// The (account, course) unique constraint is the real duplicate
	// guard; a concurrent double registration yields one Conflict.
	reg, err := s.registrationRepo.Create(ctx, accountID, courseID)
	if err != nil {
		return nil, err
	}

	if err := s.eventBus.Publish(ctx, events.CourseRegistered, events.CourseRegisteredEvent{
		AccountID:    accountID,
		CourseID:     courseID,
		CourseCode:   course.Code,
		RegisteredAt: reg.RegisteredAt,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "subject", events.CourseRegistered, "error", err)
	}

	return reg, nil
}

func (s *recordsService) ListMyCourses(ctx context.Context, caller domain.Role, accountID int64) ([]domain.Course, error) {
	if err := domain.CanRegisterCourse(caller); err != nil {
		return nil, err
	}
	courses, err := s.courseRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registered courses: %w", err)
	}
	return courses, nil
}

func (s *recordsService) ListMyTimetable(ctx context.Context, caller domain.Role, accountID int64) ([]domain.TimetableEntry, error) {
	if err := domain.CanRegisterCourse(caller); err != nil {
		return nil, err
	}
	entries, err := s.timetableRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list personal timetable: %w", err)
	}
	return entries, nil
}
