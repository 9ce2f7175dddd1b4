package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fassa-ttu/fassa-backend/internal/domain"
	"github.com/fassa-ttu/fassa-backend/internal/service"
)

// ---------- Mocks ----------

type mockCourseRepo struct {
	nextID  int64
	courses map[int64]*domain.Course
	byCode  map[string]int64
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{nextID: 1, courses: make(map[int64]*domain.Course), byCode: make(map[string]int64)}
}

func (m *mockCourseRepo) Create(_ context.Context, req *domain.CourseRequest) (*domain.Course, error) {
	if _, exists := m.byCode[req.Code]; exists {
		return nil, &domain.ConflictError{Field: "code"}
	}
	c := &domain.Course{
		ID:       m.nextID,
		Code:     req.Code,
		Title:    req.Title,
		Program:  req.Program,
		Level:    req.Level,
		Semester: req.Semester,
		Lecturer: req.Lecturer,
	}
	m.nextID++
	m.courses[c.ID] = c
	m.byCode[c.Code] = c.ID
	return c, nil
}

func (m *mockCourseRepo) FindByID(_ context.Context, id int64) (*domain.Course, error) {
	if c, ok := m.courses[id]; ok {
		copy := *c
		return &copy, nil
	}
	return nil, nil
}

func (m *mockCourseRepo) Update(_ context.Context, id int64, req *domain.CourseRequest) (*domain.Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, nil
	}
	delete(m.byCode, c.Code)
	c.Code = req.Code
	c.Title = req.Title
	c.Program = req.Program
	c.Level = req.Level
	c.Semester = req.Semester
	c.Lecturer = req.Lecturer
	m.byCode[c.Code] = id
	copy := *c
	return &copy, nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id int64) error {
	c, ok := m.courses[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(m.byCode, c.Code)
	delete(m.courses, id)
	return nil
}

func (m *mockCourseRepo) List(_ context.Context, _, _ int) ([]domain.Course, error) {
	var out []domain.Course
	for _, c := range m.courses {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCourseRepo) ListByAccount(_ context.Context, _ int64) ([]domain.Course, error) {
	return nil, nil
}

type mockTimetableRepo struct {
	nextID  int64
	entries map[int64]*domain.TimetableEntry
}

func newMockTimetableRepo() *mockTimetableRepo {
	return &mockTimetableRepo{nextID: 1, entries: make(map[int64]*domain.TimetableEntry)}
}

func (m *mockTimetableRepo) Create(_ context.Context, req *domain.TimetableEntryRequest) (*domain.TimetableEntry, error) {
	e := &domain.TimetableEntry{
		ID:        m.nextID,
		CourseID:  req.CourseID,
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Venue:     req.Venue,
	}
	m.nextID++
	m.entries[e.ID] = e
	return e, nil
}

func (m *mockTimetableRepo) FindByID(_ context.Context, id int64) (*domain.TimetableEntry, error) {
	if e, ok := m.entries[id]; ok {
		copy := *e
		return &copy, nil
	}
	return nil, nil
}

func (m *mockTimetableRepo) Update(_ context.Context, id int64, req *domain.TimetableEntryRequest) (*domain.TimetableEntry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	e.CourseID = req.CourseID
	e.DayOfWeek = req.DayOfWeek
	e.StartTime = req.StartTime
	e.EndTime = req.EndTime
	e.Venue = req.Venue
	copy := *e
	return &copy, nil
}

func (m *mockTimetableRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.entries[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.entries, id)
	return nil
}

func (m *mockTimetableRepo) List(_ context.Context, courseID *int64) ([]domain.TimetableEntry, error) {
	var out []domain.TimetableEntry
	for _, e := range m.entries {
		if courseID != nil && e.CourseID != *courseID {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (m *mockTimetableRepo) ListByAccount(_ context.Context, _ int64) ([]domain.TimetableEntry, error) {
	return nil, nil
}

type mockRegistrationRepo struct {
	nextID int64
	regs   map[int64]*domain.CourseRegistration
}

func newMockRegistrationRepo() *mockRegistrationRepo {
	return &mockRegistrationRepo{nextID: 1, regs: make(map[int64]*domain.CourseRegistration)}
}

func (m *mockRegistrationRepo) Create(_ context.Context, accountID, courseID int64) (*domain.CourseRegistration, error) {
	for _, r := range m.regs {
		if r.AccountID == accountID && r.CourseID == courseID {
			return nil, &domain.ConflictError{Field: "course"}
		}
	}
	reg := &domain.CourseRegistration{
		ID:           m.nextID,
		AccountID:    accountID,
		CourseID:     courseID,
		RegisteredAt: time.Now(),
	}
	m.nextID++
	m.regs[reg.ID] = reg
	return reg, nil
}

// ---------- Helpers ----------

type recordsFixture struct {
	svc     service.RecordsService
	courses *mockCourseRepo
	entries *mockTimetableRepo
	regs    *mockRegistrationRepo
	bus     *mockPublisher
}

func newRecordsFixture() *recordsFixture {
	f := &recordsFixture{
		courses: newMockCourseRepo(),
		entries: newMockTimetableRepo(),
		regs:    newMockRegistrationRepo(),
		bus:     &mockPublisher{},
	}
	f.svc = service.NewRecordsService(f.courses, f.entries, f.regs, f.bus)
	return f
}

func (f *recordsFixture) seedCourse(t *testing.T) *domain.Course {
	t.Helper()
	course, err := f.svc.CreateCourse(context.Background(), domain.RoleAdmin, &domain.CourseRequest{
		Code:  "BCICT101",
		Title: "Introduction to ICT",
	})
	if err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return course
}

// ---------- Tests ----------

func TestCreateCourse(t *testing.T) {
	f := newRecordsFixture()
	ctx := context.Background()

	// Students cannot write the catalog.
	_, err := f.svc.CreateCourse(ctx, domain.RoleStudent, &domain.CourseRequest{Code: "x", Title: "y"})
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	course, err := f.svc.CreateCourse(ctx, domain.RoleAdmin, &domain.CourseRequest{
		Code:  " bcict101 ",
		Title: "Introduction to ICT",
	})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if course.Code != "BCICT101" {
		t.Errorf("course code must be normalized to uppercase, got %q", course.Code)
	}

	// Duplicate code conflicts.
	_, err = f.svc.CreateCourse(ctx, domain.RoleSuperAdmin, &domain.CourseRequest{
		Code:  "BCICT101",
		Title: "Duplicate",
	})
	var ce *domain.ConflictError
	if !errors.As(err, &ce) || ce.Field != "code" {
		t.Errorf("expected code conflict, got %v", err)
	}
}

func TestCreateCourseValidation(t *testing.T) {
	f := newRecordsFixture()

	_, err := f.svc.CreateCourse(context.Background(), domain.RoleAdmin, &domain.CourseRequest{})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := ve.Fields["code"]; !ok {
		t.Errorf("expected code field error, got %v", ve.Fields)
	}
}

func TestDeleteCourseNotFound(t *testing.T) {
	f := newRecordsFixture()

	err := f.svc.DeleteCourse(context.Background(), domain.RoleAdmin, 99)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateTimetableEntry(t *testing.T) {
	f := newRecordsFixture()
	ctx := context.Background()
	course := f.seedCourse(t)

	entry, err := f.svc.CreateTimetableEntry(ctx, domain.RoleAdmin, &domain.TimetableEntryRequest{
		CourseID:  course.ID,
		DayOfWeek: 1,
		StartTime: "08:00",
		EndTime:   "10:00",
		Venue:     "LT1",
	})
	if err != nil {
		t.Fatalf("CreateTimetableEntry: %v", err)
	}
	if entry.DayOfWeek != 1 || entry.StartTime != "08:00" {
		t.Errorf("unexpected entry %+v", entry)
	}

	// Unknown course.
	_, err = f.svc.CreateTimetableEntry(ctx, domain.RoleAdmin, &domain.TimetableEntryRequest{
		CourseID:  999,
		DayOfWeek: 1,
		StartTime: "08:00",
		EndTime:   "10:00",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown course, got %v", err)
	}
}

func TestCreateTimetableEntryValidation(t *testing.T) {
	f := newRecordsFixture()
	course := f.seedCourse(t)

	tests := []struct {
		name  string
		req   domain.TimetableEntryRequest
		field string
	}{
		{
			name:  "day out of range",
			req:   domain.TimetableEntryRequest{CourseID: course.ID, DayOfWeek: 8, StartTime: "08:00", EndTime: "10:00"},
			field: "day_of_week",
		},
		{
			name:  "bad time format",
			req:   domain.TimetableEntryRequest{CourseID: course.ID, DayOfWeek: 2, StartTime: "8am", EndTime: "10:00"},
			field: "start_time",
		},
		{
			name:  "end before start",
			req:   domain.TimetableEntryRequest{CourseID: course.ID, DayOfWeek: 2, StartTime: "10:00", EndTime: "08:00"},
			field: "end_time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateTimetableEntry(context.Background(), domain.RoleAdmin, &tt.req)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := ve.Fields[tt.field]; !ok {
				t.Errorf("expected %s field error, got %v", tt.field, ve.Fields)
			}
		})
	}
}

func TestRegisterForCourse(t *testing.T) {
	f := newRecordsFixture()
	ctx := context.Background()
	course := f.seedCourse(t)

	// Only students register.
	_, err := f.svc.RegisterForCourse(ctx, domain.RoleAdmin, 1, course.ID)
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	// Unknown course.
	_, err = f.svc.RegisterForCourse(ctx, domain.RoleStudent, 1, 999)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	reg, err := f.svc.RegisterForCourse(ctx, domain.RoleStudent, 1, course.ID)
	if err != nil {
		t.Fatalf("RegisterForCourse: %v", err)
	}
	if reg.AccountID != 1 || reg.CourseID != course.ID {
		t.Errorf("unexpected registration %+v", reg)
	}
	if len(f.bus.subjects) != 1 || f.bus.subjects[0] != "registration.created" {
		t.Errorf("expected registration.created event, got %v", f.bus.subjects)
	}

	// Registering twice for the same course conflicts.
	_, err = f.svc.RegisterForCourse(ctx, domain.RoleStudent, 1, course.ID)
	var ce *domain.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestUpdateTimetableEntryNotFound(t *testing.T) {
	f := newRecordsFixture()

	_, err := f.svc.UpdateTimetableEntry(context.Background(), domain.RoleAdmin, 42, &domain.TimetableEntryRequest{
		CourseID:  1,
		DayOfWeek: 3,
		StartTime: "09:00",
		EndTime:   "11:00",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
