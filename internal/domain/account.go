package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

// Role is the closed set of FASSA account roles.
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

type Account struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	FullName          string    `json:"full_name"`
	Role              Role      `json:"role"`
	IndexNumber       *string   `json:"index_number,omitempty"`
	Position          *string   `json:"position,omitempty"`
	Active            bool      `json:"active"`
	Verified          bool      `json:"verified"`
	VerificationToken string    `json:"-"`
	PasswordHash      string    `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Profile is the account projection returned to clients.
type Profile struct {
	ID          int64   `json:"id"`
	Email       string  `json:"email"`
	FullName    string  `json:"full_name"`
	Role        Role    `json:"role"`
	IndexNumber *string `json:"index_number,omitempty"`
	Position    *string `json:"position,omitempty"`
	Active      bool    `json:"active"`
	Verified    bool    `json:"verified"`
}

func (a *Account) ToProfile() *Profile {
	return &Profile{
		ID:          a.ID,
		Email:       a.Email,
		FullName:    a.FullName,
		Role:        a.Role,
		IndexNumber: a.IndexNumber,
		Position:    a.Position,
		Active:      a.Active,
		Verified:    a.Verified,
	}
}

type RegisterStudentRequest struct {
	Email           string `json:"email"`
	FullName        string `json:"full_name"`
	IndexNumber     string `json:"index_number"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *RegisterStudentRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FullName = strings.TrimSpace(r.FullName)
	r.IndexNumber = strings.ToLower(strings.TrimSpace(r.IndexNumber))
}

// Validate checks self-registration input. studentDomain is the
// required email suffix for student accounts (e.g. "@ttu.edu.gh").
func (r *RegisterStudentRequest) Validate(studentDomain string) error {
	fields := map[string]string{}
	if r.Email == "" {
		fields["email"] = "email is required"
	} else if !isValidEmail(r.Email) {
		fields["email"] = "invalid email format"
	} else if !strings.HasSuffix(r.Email, studentDomain) {
		fields["email"] = "students must register with a valid TTU email (e.g., bcict22153" + studentDomain + ")"
	}
	if r.FullName == "" {
		fields["full_name"] = "full name is required"
	}
	if r.IndexNumber == "" {
		fields["index_number"] = "index number is required"
	}
	if msg := passwordStrength(r.Password); msg != "" {
		fields["password"] = msg
	} else if r.Password != r.ConfirmPassword {
		fields["password"] = "passwords do not match"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// CreateAccountRequest is role-scoped managed creation: SUPERADMIN may
// create students and admins, ADMIN only students. A temporary password
// is generated server-side and mailed to the new account.
type CreateAccountRequest struct {
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	Role        Role   `json:"role"`
	IndexNumber string `json:"index_number,omitempty"`
	Position    string `json:"position,omitempty"`
}

func (r *CreateAccountRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FullName = strings.TrimSpace(r.FullName)
	r.IndexNumber = strings.ToLower(strings.TrimSpace(r.IndexNumber))
	r.Position = strings.TrimSpace(r.Position)
}

func (r *CreateAccountRequest) Validate(studentDomain string) error {
	fields := map[string]string{}
	if r.Email == "" {
		fields["email"] = "email is required"
	} else if !isValidEmail(r.Email) {
		fields["email"] = "invalid email format"
	}
	if r.FullName == "" {
		fields["full_name"] = "full name is required"
	}

	switch r.Role {
	case RoleStudent:
		if r.IndexNumber == "" {
			fields["index_number"] = "index number is required for student accounts"
		}
		if r.Position != "" {
			fields["position"] = "students should not have a position"
		}
		if r.Email != "" && !strings.HasSuffix(r.Email, studentDomain) {
			fields["email"] = "students must use a valid TTU email (e.g., bcict22153" + studentDomain + ")"
		}
	case RoleAdmin:
		if r.Position == "" {
			fields["position"] = "position is required for admin accounts"
		}
		if r.IndexNumber != "" {
			fields["index_number"] = "admins should not have an index number"
		}
	case RoleSuperAdmin:
		if r.IndexNumber != "" {
			fields["index_number"] = "super admins should not have an index number"
		}
		if r.Position != "" {
			fields["position"] = "super admins should not have a position"
		}
	default:
		fields["role"] = "invalid role"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *LoginRequest) Validate() error {
	fields := map[string]string{}
	if r.Email == "" {
		fields["email"] = "email is required"
	}
	if r.Password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

type LoginResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	ExpiresIn    int64    `json:"expires_in"`
	Account      *Profile `json:"account"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	if r.FullName != nil && strings.TrimSpace(*r.FullName) == "" {
		return NewValidationError("full_name", "full name cannot be empty")
	}
	return nil
}

// UpdateAccountRequest is the administrative account patch.
type UpdateAccountRequest struct {
	FullName    *string `json:"full_name,omitempty"`
	IndexNumber *string `json:"index_number,omitempty"`
	Position    *string `json:"position,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

func (r *UpdateAccountRequest) Validate() error {
	if r.FullName != nil && strings.TrimSpace(*r.FullName) == "" {
		return NewValidationError("full_name", "full name cannot be empty")
	}
	return nil
}

// ValidateForRole enforces the role-specific field rules on a patch:
// students never carry a position, admins and super admins never carry
// an index number. It needs the target's role, so it runs after the
// account is loaded.
func (r *UpdateAccountRequest) ValidateForRole(role Role) error {
	fields := map[string]string{}
	switch role {
	case RoleStudent:
		if r.Position != nil {
			fields["position"] = "students should not have a position"
		}
	case RoleAdmin:
		if r.IndexNumber != nil {
			fields["index_number"] = "admins should not have an index number"
		}
	case RoleSuperAdmin:
		if r.IndexNumber != nil {
			fields["index_number"] = "super admins should not have an index number"
		}
		if r.Position != nil {
			fields["position"] = "super admins should not have a position"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

type PasswordResetRequest struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (p *PasswordResetRequest) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

type PasswordResetConfirmRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *PasswordResetConfirmRequest) Validate() error {
	fields := map[string]string{}
	if r.Token == "" {
		fields["token"] = "token is required"
	}
	if msg := passwordStrength(r.NewPassword); msg != "" {
		fields["new_password"] = msg
	} else if r.NewPassword != r.ConfirmPassword {
		fields["new_password"] = "passwords do not match"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func passwordStrength(password string) string {
	if len(password) < 8 {
		return "password must be at least 8 characters"
	}
	var hasLetter, hasDigit bool
	for _, c := range password {
		switch {
		case unicode.IsLetter(c):
			hasLetter = true
		case unicode.IsDigit(c):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return "password must contain both letters and digits"
	}
	return ""
}
