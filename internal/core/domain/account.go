package domain

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/arvik/support-analytics-backend/internal/core/errors"
)

// Account is the root tenant. Inboxes, agents and conversations all hang
// off an account.
type Account struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Inbox is a channel conversations arrive through (email, chat widget, ...).
type Inbox struct {
	ID          int64
	AccountID   int64
	Name        string
	ChannelType string
	CreatedAt   time.Time
}

// UserRole distinguishes agents from account administrators.
type UserRole string

const (
	RoleAgent UserRole = "agent"
	RoleAdmin UserRole = "admin"
)

// User is a member of an account. Agents get conversations assigned and are
// a valid report scope.
type User struct {
	ID           int64
	AccountID    int64
	FullName     string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// NewUser validates registration input and hashes the password.
func NewUser(fullName, email, password string, accountID int64, role UserRole) (*User, error) {
	validationErrors := apperrors.NewValidationErrors()

	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		validationErrors.Add("full_name", "full name is required")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		validationErrors.Add("email", "a valid email address is required")
	}

	if len(password) < 8 {
		validationErrors.Add("password", "password must be at least 8 characters")
	}

	if accountID <= 0 {
		validationErrors.Add("account_id", "account is required")
	}

	switch role {
	case RoleAgent, RoleAdmin:
	default:
		validationErrors.Add("role", "role must be agent or admin")
	}

	if validationErrors.HasErrors() {
		return nil, validationErrors
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &User{
		AccountID:    accountID,
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}, nil
}

// CheckPassword reports whether the plaintext password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
