package identity

import (
	"github.com/storeadmin/backend/internal/domain/identity"
)

// LoginRequest contains the sign-in form
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult contains the session token of a successful sign-in.
// The token goes into the session cookie and never into a response body.
type LoginResult struct {
	SessionToken string
	Admin        SessionResponse
}

// Principal is the admin behind a verified session
type Principal struct {
	UID        string
	SuperAdmin bool
}

// SessionResponse describes the signed-in admin
type SessionResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	SuperAdmin  bool   `json:"superAdmin"`
}

// AdminResponse represents an admin in API responses
type AdminResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	SuperAdmin  bool   `json:"super_admin"`
}

// CreateAdminRequest contains the admin creation form
type CreateAdminRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	SuperAdmin  bool   `json:"super_admin"`
}

// UpdateAdminRequest changes the super admin flag
type UpdateAdminRequest struct {
	SuperAdmin *bool `json:"super_admin" binding:"required"`
}

// ChangePasswordRequest contains a new password
type ChangePasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// UserListFilter represents the query of a customer listing
type UserListFilter struct {
	Search     string `form:"search"`
	OnlineOnly bool   `form:"online"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// UserResponse represents a customer in API responses
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	ImageURL string `json:"image_url"`
	Online   bool   `json:"online"`
}

// ToAdminResponse converts an admin to its response
func ToAdminResponse(a *identity.Admin) AdminResponse {
	return AdminResponse{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		SuperAdmin:  a.SuperAdmin,
	}
}

// ToUserResponse converts a customer to its response
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Phone:    u.Phone,
		ImageURL: u.ImageURL,
		Online:   u.Online,
	}
}
