package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fassa-ttu/fassa-backend/internal/domain"
	"github.com/fassa-ttu/fassa-backend/internal/handlers"
	"github.com/fassa-ttu/fassa-backend/pkg/auth"
	"github.com/fassa-ttu/fassa-backend/pkg/config"
)

// ---------- Mocks ----------

// mockAccounts implements service.AccountService through optional
// function fields; unset methods fail the calling test.
type mockAccounts struct {
	registerFn func(*domain.RegisterStudentRequest) (*domain.Account, error)
	loginFn    func(*domain.LoginRequest) (*domain.LoginResponse, error)
	verifyFn   func(string) (*domain.Account, error)
	createFn   func(domain.Role, *domain.CreateAccountRequest) (*domain.Account, error)
	profileFn  func(int64) (*domain.Account, error)
	resetReqFn func(string) error
}

func (m *mockAccounts) RegisterStudent(_ context.Context, req *domain.RegisterStudentRequest) (*domain.Account, error) {
	return m.registerFn(req)
}

func (m *mockAccounts) VerifyAccount(_ context.Context, token string) (*domain.Account, error) {
	return m.verifyFn(token)
}

func (m *mockAccounts) CreateManagedAccount(_ context.Context, caller domain.Role, req *domain.CreateAccountRequest) (*domain.Account, error) {
	return m.createFn(caller, req)
}

func (m *mockAccounts) Login(_ context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	return m.loginFn(req)
}

func (m *mockAccounts) RefreshToken(context.Context, string) (*domain.LoginResponse, error) {
	return nil, domain.ErrInvalidCredentials
}

func (m *mockAccounts) GetProfile(_ context.Context, id int64) (*domain.Account, error) {
	return m.profileFn(id)
}

func (m *mockAccounts) UpdateProfile(context.Context, int64, *domain.UpdateProfileRequest) (*domain.Account, error) {
	return nil, domain.ErrNotFound
}

func (m *mockAccounts) ListAccounts(context.Context, domain.Role, int, int) ([]domain.Account, error) {
	return nil, nil
}

func (m *mockAccounts) GetAccount(context.Context, domain.Role, int64) (*domain.Account, error) {
	return nil, domain.ErrNotFound
}

func (m *mockAccounts) UpdateAccount(context.Context, domain.Role, int64, *domain.UpdateAccountRequest) (*domain.Account, error) {
	return nil, domain.ErrNotFound
}

func (m *mockAccounts) DeleteAccount(context.Context, domain.Role, int64) error {
	return domain.ErrNotFound
}

func (m *mockAccounts) RequestPasswordReset(_ context.Context, email string) error {
	return m.resetReqFn(email)
}

func (m *mockAccounts) ConfirmPasswordReset(context.Context, *domain.PasswordResetConfirmRequest) error {
	return domain.ErrNotFound
}

type mockRecords struct {
	createCourseFn func(domain.Role, *domain.CourseRequest) (*domain.Course, error)
	registerFn     func(domain.Role, int64, int64) (*domain.CourseRegistration, error)
}

func (m *mockRecords) CreateCourse(_ context.Context, caller domain.Role, req *domain.CourseRequest) (*domain.Course, error) {
	return m.createCourseFn(caller, req)
}

func (m *mockRecords) GetCourse(context.Context, domain.Role, int64) (*domain.Course, error) {
	return nil, domain.ErrNotFound
}

func (m *mockRecords) UpdateCourse(context.Context, domain.Role, int64, *domain.CourseRequest) (*domain.Course, error) {
	return nil, domain.ErrNotFound
}

func (m *mockRecords) DeleteCourse(context.Context, domain.Role, int64) error {
	return domain.ErrNotFound
}

func (m *mockRecords) ListCourses(context.Context, domain.Role, int, int) ([]domain.Course, error) {
	return nil, nil
}

func (m *mockRecords) CreateTimetableEntry(context.Context, domain.Role, *domain.TimetableEntryRequest) (*domain.TimetableEntry, error) {
	return nil, domain.ErrNotFound
}

func (m *mockRecords) UpdateTimetableEntry(context.Context, domain.Role, int64, *domain.TimetableEntryRequest) (*domain.TimetableEntry, error) {
	return nil, domain.ErrNotFound
}

func (m *mockRecords) DeleteTimetableEntry(context.Context, domain.Role, int64) error {
	return domain.ErrNotFound
}

func (m *mockRecords) ListTimetable(context.Context, domain.Role, *int64) ([]domain.TimetableEntry, error) {
	return nil, nil
}

func (m *mockRecords) RegisterForCourse(_ context.Context, caller domain.Role, accountID, courseID int64) (*domain.CourseRegistration, error) {
	return m.registerFn(caller, accountID, courseID)
}

func (m *mockRecords) ListMyCourses(context.Context, domain.Role, int64) ([]domain.Course, error) {
	return nil, nil
}

func (m *mockRecords) ListMyTimetable(context.Context, domain.Role, int64) ([]domain.TimetableEntry, error) {
	return nil, nil
}

type mockRateLimiter struct {
	allowed bool
	err     error
	calls   int
}

func (m *mockRateLimiter) CheckRateLimit(context.Context, string, int, time.Duration) (bool, error) {
	m.calls++
	return m.allowed, m.err
}

// ---------- Helpers ----------

func testHandlers(accounts *mockAccounts, records *mockRecords, limiter *mockRateLimiter) (*handlers.Handlers, *config.Config) {
	cfg := config.Load()
	if limiter == nil {
		limiter = &mockRateLimiter{allowed: true}
	}
	return handlers.New(accounts, records, limiter, cfg), cfg
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

// ---------- Tests ----------

func TestRegisterHandler(t *testing.T) {
	accounts := &mockAccounts{
		registerFn: func(req *domain.RegisterStudentRequest) (*domain.Account, error) {
			return &domain.Account{ID: 1, Email: req.Email, Role: domain.RoleStudent}, nil
		},
	}
	h, _ := testHandlers(accounts, &mockRecords{}, nil)

	rec := doJSON(t, h.Register, http.MethodPost, "/auth/register", map[string]string{
		"email":            "bcict22153@ttu.edu.gh",
		"full_name":        "Ama Mensah",
		"index_number":     "bcict22153",
		"password":         "secret1234",
		"confirm_password": "secret1234",
	}, "")

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["email"] != "bcict22153@ttu.edu.gh" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestRegisterHandlerValidationError(t *testing.T) {
	accounts := &mockAccounts{
		registerFn: func(*domain.RegisterStudentRequest) (*domain.Account, error) {
			return nil, domain.NewValidationError("email", "students must register with a valid TTU email")
		},
	}
	h, _ := testHandlers(accounts, &mockRecords{}, nil)

	rec := doJSON(t, h.Register, http.MethodPost, "/auth/register", map[string]string{}, "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["code"] != "INVALID_INPUT" {
		t.Errorf("expected INVALID_INPUT, got %v", body["code"])
	}
	fields, ok := body["fields"].(map[string]interface{})
	if !ok || fields["email"] == nil {
		t.Errorf("expected email field detail, got %v", body["fields"])
	}
}

func TestLoginHandlerBadCredentials(t *testing.T) {
	accounts := &mockAccounts{
		loginFn: func(*domain.LoginRequest) (*domain.LoginResponse, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h, _ := testHandlers(accounts, &mockRecords{}, nil)

	rec := doJSON(t, h.Login, http.MethodPost, "/auth/login", map[string]string{
		"email":    "ghost@ttu.edu.gh",
		"password": "wrong",
	}, "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["code"] != "AUTHENTICATION_FAILED" {
		t.Errorf("expected AUTHENTICATION_FAILED, got %v", body["code"])
	}
}

func TestPasswordResetRequestIsOpaque(t *testing.T) {
	accounts := &mockAccounts{
		resetReqFn: func(string) error { return nil },
	}
	h, _ := testHandlers(accounts, &mockRecords{}, nil)

	rec := doJSON(t, h.RequestPasswordReset, http.MethodPost, "/auth/password-reset/request", map[string]string{
		"email": "anyone@ttu.edu.gh",
	}, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["message"] != "If this email exists, a reset link will be sent." {
		t.Errorf("unexpected message %v", body["message"])
	}
}

func TestRequireAuth(t *testing.T) {
	h, cfg := testHandlers(&mockAccounts{}, &mockRecords{}, nil)

	protected := h.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// No header.
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without header, got %d", rec.Code)
	}

	// Garbage token.
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for garbage token, got %d", rec.Code)
	}

	// Refresh token used as access token.
	refresh, err := auth.NewAccessToken(1, "a@ttu.edu.gh", "refresh", "refresh", cfg.Auth.JWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for refresh token, got %d", rec.Code)
	}

	// Valid access token.
	access, err := auth.NewAccessToken(1, "a@ttu.edu.gh", "STUDENT", "", cfg.Auth.JWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for valid token, got %d", rec.Code)
	}
}

func TestCreateCourseForbidden(t *testing.T) {
	records := &mockRecords{
		createCourseFn: func(caller domain.Role, _ *domain.CourseRequest) (*domain.Course, error) {
			if caller != domain.RoleStudent {
				t.Errorf("expected STUDENT caller, got %s", caller)
			}
			return nil, domain.ErrPermissionDenied
		},
	}
	h, cfg := testHandlers(&mockAccounts{}, records, nil)

	token, err := auth.NewAccessToken(1, "a@ttu.edu.gh", "STUDENT", "", cfg.Auth.JWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Post("/courses", h.CreateCourse)
	})

	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(map[string]string{"code": "BCICT101", "title": "Intro"})
	req := httptest.NewRequest(http.MethodPost, "/courses", &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["code"] != "FORBIDDEN" {
		t.Errorf("expected FORBIDDEN, got %v", body["code"])
	}
}

func TestRegisterForCourseConflict(t *testing.T) {
	records := &mockRecords{
		registerFn: func(_ domain.Role, accountID, courseID int64) (*domain.CourseRegistration, error) {
			return nil, &domain.ConflictError{Field: "course"}
		},
	}
	h, cfg := testHandlers(&mockAccounts{}, records, nil)

	token, err := auth.NewAccessToken(7, "s@ttu.edu.gh", "STUDENT", "", cfg.Auth.JWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Post("/registrations", h.RegisterForCourse)
	})

	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(map[string]int{"course_id": 3})
	req := httptest.NewRequest(http.MethodPost, "/registrations", &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := &mockRateLimiter{allowed: false}
	h, _ := testHandlers(&mockAccounts{}, &mockRecords{}, limiter)

	handler := h.RateLimit("login", 10, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 when over the limit, got %d", rec.Code)
	}

	// Backend errors fail open.
	limiter.allowed = false
	limiter.err = context.DeadlineExceeded
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected fail-open 200 on limiter error, got %d", rec.Code)
	}
}
