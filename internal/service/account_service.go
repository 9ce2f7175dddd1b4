package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"

	"github.com/fassa-ttu/fassa-backend/internal/domain"
	"github.com/fassa-ttu/fassa-backend/internal/mailer"
	"github.com/fassa-ttu/fassa-backend/internal/repository"
	"github.com/fassa-ttu/fassa-backend/pkg/auth"
	"github.com/fassa-ttu/fassa-backend/pkg/config"
	"github.com/fassa-ttu/fassa-backend/pkg/events"
	"github.com/fassa-ttu/fassa-backend/pkg/logger"
)

type AccountService interface {
	RegisterStudent(ctx context.Context, req *domain.RegisterStudentRequest) (*domain.Account, error)
	VerifyAccount(ctx context.Context, token string) (*domain.Account, error)
	CreateManagedAccount(ctx context.Context, caller domain.Role, req *domain.CreateAccountRequest) (*domain.Account, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*domain.LoginResponse, error)
	GetProfile(ctx context.Context, accountID int64) (*domain.Account, error)
	UpdateProfile(ctx context.Context, accountID int64, req *domain.UpdateProfileRequest) (*domain.Account, error)
	ListAccounts(ctx context.Context, caller domain.Role, limit, offset int) ([]domain.Account, error)
	GetAccount(ctx context.Context, caller domain.Role, id int64) (*domain.Account, error)
	UpdateAccount(ctx context.Context, caller domain.Role, id int64, req *domain.UpdateAccountRequest) (*domain.Account, error)
	DeleteAccount(ctx context.Context, caller domain.Role, id int64) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, req *domain.PasswordResetConfirmRequest) error
}

type accountService struct {
	accountRepo repository.AccountRepository
	resetRepo   repository.ResetRepository
	mailer      mailer.Service
	eventBus    events.Publisher
	config      *config.Config
}

func NewAccountService(
	accountRepo repository.AccountRepository,
	resetRepo repository.ResetRepository,
	mailer mailer.Service,
	eventBus events.Publisher,
	config *config.Config,
) AccountService {
	return &accountService{
		accountRepo: accountRepo,
		resetRepo:   resetRepo,
		mailer:      mailer,
		eventBus:    eventBus,
		config:      config,
	}
}

func (s *accountService) RegisterStudent(ctx context.Context, req *domain.RegisterStudentRequest) (*domain.Account, error) {
	req.Normalize()
	if err := req.Validate(s.config.App.StudentEmailDomain); err != nil {
		return nil, err
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	indexNumber := req.IndexNumber
	account := &domain.Account{
		Email:             req.Email,
		FullName:          req.FullName,
		Role:              domain.RoleStudent,
		IndexNumber:       &indexNumber,
		Active:            false,
		Verified:          false,
		VerificationToken: uuid.NewString(),
		PasswordHash:      passwordHash,
	}

	// The email/index_number unique constraints decide concurrent
	// duplicates; a violation comes back as a ConflictError.
	created, err := s.accountRepo.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	// Account is committed; notification failure is non-fatal.
	verifyURL := fmt.Sprintf("%s/auth/verify/%s", s.config.App.BaseURL, created.VerificationToken)
	if err := s.mailer.SendVerificationEmail(created.Email, created.FullName, verifyURL); err != nil {
		logger.WarnContext(ctx, "Failed to send verification email", "error", err, "account_id", created.ID)
	}

	s.publish(ctx, events.AccountRegistered, events.AccountRegisteredEvent{
		AccountID:   created.ID,
		Email:       created.Email,
		IndexNumber: indexNumber,
		CreatedAt:   created.CreatedAt,
	})

	return created, nil
}

func (s *accountService) VerifyAccount(ctx context.Context, token string) (*domain.Account, error) {
	account, err := s.accountRepo.FindByVerificationToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}
	if account == nil {
		return nil, domain.ErrNotFound
	}

	// Second verification with the same token is a no-op success.
	if account.Verified {
		return account, nil
	}

	if err := s.accountRepo.MarkVerified(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("failed to mark account verified: %w", err)
	}
	account.Verified = true
	account.Active = true

	s.publish(ctx, events.AccountVerified, events.AccountVerifiedEvent{
		AccountID:  account.ID,
		Email:      account.Email,
		VerifiedAt: time.Now(),
	})

	return account, nil
}

func (s *accountService) CreateManagedAccount(ctx context.Context, caller domain.Role, req *domain.CreateAccountRequest) (*domain.Account, error) {
	if err := domain.CanCreateAccount(caller, req.Role); err != nil {
		return nil, err
	}

	req.Normalize()
	if err := req.Validate(s.config.App.StudentEmailDomain); err != nil {
		return nil, err
	}

	tempPassword, err := generateTemporaryPassword(s.config.App.TempPasswordLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate temporary password: %w", err)
	}

	passwordHash, err := argon2id.CreateHash(tempPassword, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &domain.Account{
		Email:             req.Email,
		FullName:          req.FullName,
		Role:              req.Role,
		Active:            true,
		Verified:          true,
		VerificationToken: uuid.NewString(),
		PasswordHash:      passwordHash,
	}
	if req.IndexNumber != "" {
		account.IndexNumber = &req.IndexNumber
	}
	if req.Position != "" {
		account.Position = &req.Position
	}

	created, err := s.accountRepo.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	loginURL := fmt.Sprintf("%s/auth/login", s.config.App.BaseURL)
	if err := s.mailer.SendAccountCreatedEmail(created.Email, created.FullName, roleText(created.Role), tempPassword, loginURL); err != nil {
		logger.WarnContext(ctx, "Failed to send account created email", "error", err, "account_id", created.ID)
	}

	s.publish(ctx, events.AccountCreated, events.AccountCreatedEvent{
		AccountID: created.ID,
		Email:     created.Email,
		Role:      string(created.Role),
		CreatedBy: string(caller),
		CreatedAt: created.CreatedAt,
	})

	return created, nil
}

func (s *accountService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	// Missing, inactive, and wrong-password all fail identically.
	if account == nil || !account.Active {
		return nil, domain.ErrInvalidCredentials
	}

	match, err := argon2id.ComparePasswordAndHash(req.Password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issueTokens(account)
}

func (s *accountService) RefreshToken(ctx context.Context, refreshToken string) (*domain.LoginResponse, error) {
	claims, err := auth.Parse(refreshToken, s.config.Auth.JWTSecret)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if claims.Role != "refresh" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.accountRepo.FindByID(ctx, claims.Sub)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil || !account.Active {
		return nil, domain.ErrInvalidCredentials
	}

	accessToken, err := auth.NewAccessToken(
		account.ID, account.Email, string(account.Role), scopeFor(account.Role),
		s.config.Auth.JWTSecret, s.config.Auth.AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &domain.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.Auth.AccessTokenTTL.Seconds()),
		Account:      account.ToProfile(),
	}, nil
}

func (s *accountService) GetProfile(ctx context.Context, accountID int64) (*domain.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, domain.ErrNotFound
	}
	return account, nil
}

func (s *accountService) UpdateProfile(ctx context.Context, accountID int64, req *domain.UpdateProfileRequest) (*domain.Account, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.accountRepo.Update(ctx, accountID, &domain.UpdateAccountRequest{FullName: req.FullName})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound
	}
	return updated, nil
}

func (s *accountService) ListAccounts(ctx context.Context, caller domain.Role, limit, offset int) ([]domain.Account, error) {
	if err := domain.CanListAccounts(caller); err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.List(ctx, domain.ManageableRoles(caller), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (s *accountService) GetAccount(ctx context.Context, caller domain.Role, id int64) (*domain.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, domain.ErrNotFound
	}
	if err := domain.CanManageAccount(caller, account.Role); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, caller domain.Role, id int64, req *domain.UpdateAccountRequest) (*domain.Account, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, domain.ErrNotFound
	}
	if err := domain.CanManageAccount(caller, account.Role); err != nil {
		return nil, err
	}
	if err := req.ValidateForRole(account.Role); err != nil {
		return nil, err
	}

	updated, err := s.accountRepo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, domain.ErrNotFound
	}
	return updated, nil
}

func (s *accountService) DeleteAccount(ctx context.Context, caller domain.Role, id int64) error {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return domain.ErrNotFound
	}
	if err := domain.CanManageAccount(caller, account.Role); err != nil {
		return err
	}

	if err := s.accountRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	s.publish(ctx, events.AccountDeleted, events.AccountDeletedEvent{
		AccountID: id,
		DeletedAt: time.Now(),
	})

	return nil
}

// RequestPasswordReset never reveals whether the email exists.
func (s *accountService) RequestPasswordReset(ctx context.Context, email string) error {
	// Accounts store emails lowercased; match the registration
	// normalization or a mixed-case request finds nothing.
	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil {
		return nil
	}

	if purged, err := s.resetRepo.DeleteExpired(ctx); err != nil {
		logger.WarnContext(ctx, "Failed to purge expired reset tokens", "error", err)
	} else if purged > 0 {
		logger.DebugContext(ctx, "Purged expired reset tokens", "count", purged)
	}

	reset, err := s.resetRepo.Create(ctx, account.ID, uuid.NewString(), time.Now().Add(s.config.Auth.PasswordResetTTL))
	if err != nil {
		return fmt.Errorf("failed to create reset request: %w", err)
	}

	resetURL := fmt.Sprintf("%s/auth/password-reset/confirm?token=%s", s.config.App.BaseURL, reset.Token)
	if err := s.mailer.SendPasswordResetEmail(account.Email, resetURL); err != nil {
		logger.WarnContext(ctx, "Failed to send password reset email", "error", err, "account_id", account.ID)
	}

	s.publish(ctx, events.PasswordResetRequested, events.PasswordResetRequestedEvent{
		AccountID:   account.ID,
		RequestedAt: reset.CreatedAt,
		ExpiresAt:   reset.ExpiresAt,
	})

	return nil
}

func (s *accountService) ConfirmPasswordReset(ctx context.Context, req *domain.PasswordResetConfirmRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	reset, err := s.resetRepo.FindByToken(ctx, req.Token)
	if err != nil {
		return fmt.Errorf("failed to look up reset token: %w", err)
	}
	if reset == nil {
		return domain.ErrNotFound
	}
	// An expired request stays in place until the lazy purge; only a
	// successful confirm consumes it.
	if reset.Expired(time.Now()) {
		return domain.ErrResetTokenExpired
	}

	passwordHash, err := argon2id.CreateHash(req.NewPassword, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.accountRepo.UpdatePassword(ctx, reset.AccountID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.resetRepo.Delete(ctx, reset.ID); err != nil {
		logger.WarnContext(ctx, "Failed to delete consumed reset token", "error", err, "reset_id", reset.ID)
	}

	s.publish(ctx, events.PasswordResetConfirmed, events.PasswordResetConfirmedEvent{
		AccountID:   reset.AccountID,
		ConfirmedAt: time.Now(),
	})

	return nil
}

func (s *accountService) issueTokens(account *domain.Account) (*domain.LoginResponse, error) {
	accessToken, err := auth.NewAccessToken(
		account.ID, account.Email, string(account.Role), scopeFor(account.Role),
		s.config.Auth.JWTSecret, s.config.Auth.AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	refreshToken, err := auth.NewAccessToken(
		account.ID, account.Email, "refresh", "refresh",
		s.config.Auth.JWTSecret, s.config.Auth.RefreshTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	return &domain.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.Auth.AccessTokenTTL.Seconds()),
		Account:      account.ToProfile(),
	}, nil
}

func (s *accountService) publish(ctx context.Context, subject string, payload any) {
	if err := s.eventBus.Publish(ctx, subject, payload); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}

func scopeFor(role domain.Role) string {
	switch role {
	case domain.RoleSuperAdmin:
		return "accounts:read accounts:write courses:read courses:write timetables:read timetables:write"
	case domain.RoleAdmin:
		return "accounts:read:students accounts:write:students courses:read courses:write timetables:read timetables:write"
	case domain.RoleStudent:
		return "profile:read:self profile:write:self courses:read timetables:read registrations:read:self registrations:write:self"
	}
	return ""
}

func roleText(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return "Faculty Admin"
	case domain.RoleSuperAdmin:
		return "Super Admin"
	default:
		return "Student"
	}
}

const tempPasswordChars = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"!#$%&*+-=?@_"

// generateTemporaryPassword draws length characters from letters,
// digits and punctuation using crypto/rand.
func generateTemporaryPassword(length int) (string, error) {
	if length < 10 {
		length = 10
	}
	out := make([]byte, length)
	max := big.NewInt(int64(len(tempPasswordChars)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = tempPasswordChars[n.Int64()]
	}
	return string(out), nil
}
