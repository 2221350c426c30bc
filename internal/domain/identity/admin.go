package identity

import (
	"strings"

	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/storeadmin/backend/internal/domain/shared/valueobject"
)

// Admin is a dashboard operator. The document only stores the super admin
// flag; email and display name belong to the identity provider account with
// the same id.
type Admin struct {
	shared.BaseEntity
	SuperAdmin bool

	// Resolved from the identity provider
	Email       string
	DisplayName string
}

// NewAdminInput holds the fields of an admin account to create
type NewAdminInput struct {
	DisplayName string
	Email       string
	Password    string
	SuperAdmin  bool
}

// Validate applies the admin form rules
func (in NewAdminInput) Validate() error {
	if strings.TrimSpace(in.DisplayName) == "" {
		return shared.NewDomainError("INVALID_INPUT", "Display name is required")
	}
	if !valueobject.IsValidEmail(in.Email) {
		return shared.NewDomainError("INVALID_INPUT", "Invalid email")
	}
	return ValidatePassword(in.Password)
}

// ValidatePassword applies the password length rule
func ValidatePassword(password string) error {
	if !valueobject.IsValidPassword(password) {
		return shared.NewDomainError("INVALID_INPUT", "Password length should be more than 6 characters")
	}
	return nil
}

// ValidateCredentials applies the login form rules
func ValidateCredentials(email, password string) error {
	if !valueobject.IsValidEmail(email) {
		return shared.NewDomainError("INVALID_INPUT", "Invalid email")
	}
	return ValidatePassword(password)
}
