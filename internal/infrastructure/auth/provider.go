package auth

import (
	"context"
	"errors"
	"time"
)

// Identity provider errors
var (
	ErrEmailExists      = errors.New("email already exists")
	ErrIdentityNotFound = errors.New("identity not found")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrSignInFailed     = errors.New("sign-in failed")
	ErrInvalidSession   = errors.New("invalid session")
)

// Identity is an account of the identity provider
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	Disabled    bool
}

// NewIdentity holds the fields of an account to create
type NewIdentity struct {
	Email       string
	Password    string
	DisplayName string
}

// SignIn is the result of a password sign-in. IDToken is short lived and
// only good for CreateSession.
type SignIn struct {
	UID     string
	IDToken string
}

// Session is a verified session token
type Session struct {
	UID       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IdentityProvider manages admin accounts and their sessions
type IdentityProvider interface {
	// CreateUser returns ErrEmailExists when the email is taken
	CreateUser(ctx context.Context, in NewIdentity) (*Identity, error)
	GetUser(ctx context.Context, uid string) (*Identity, error)
	GetUserByEmail(ctx context.Context, email string) (*Identity, error)
	DeleteUser(ctx context.Context, uid string) error
	UpdatePassword(ctx context.Context, uid, password string) error

	// SignInWithPassword returns ErrInvalidPassword for a wrong password and
	// ErrIdentityNotFound or ErrSignInFailed otherwise
	SignInWithPassword(ctx context.Context, email, password string) (*SignIn, error)
	CreateSession(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
	// VerifySession returns ErrInvalidSession for expired, malformed or revoked tokens
	VerifySession(ctx context.Context, token string) (*Session, error)
	// RevokeSessions invalidates every session issued to uid so far
	RevokeSessions(ctx context.Context, uid string) error
}
