package identity

import (
	"context"
	"errors"
	"time"

	"github.com/storeadmin/backend/internal/domain/identity"
	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/storeadmin/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Sign-in failures shown on the login form
var (
	ErrWrongPassword = shared.NewDomainError("UNAUTHORIZED", "Invalid email or password")
	ErrLoginFailed   = shared.NewDomainError("UNAUTHORIZED", "Logged In Failed")
	ErrNoSession     = shared.NewDomainError("UNAUTHORIZED", "Please sign in")
)

// sessionRevoker is implemented by providers that can revoke one session token
type sessionRevoker interface {
	RevokeSession(ctx context.Context, token string) error
}

// AuthService handles admin sign-in and session verification
type AuthService struct {
	provider   auth.IdentityProvider
	adminRepo  identity.AdminRepository
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	provider auth.IdentityProvider,
	adminRepo identity.AdminRepository,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		provider:   provider,
		adminRepo:  adminRepo,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Login signs in with email and password and opens a session. A valid
// account without an admin document is signed out again and rejected with
// "Access Denied".
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := identity.ValidateCredentials(req.Email, req.Password); err != nil {
		return nil, err
	}

	signIn, err := s.provider.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Warn("Sign-in failed", zap.String("email", req.Email), zap.Error(err))
		if errors.Is(err, auth.ErrInvalidPassword) {
			return nil, ErrWrongPassword
		}
		return nil, ErrLoginFailed
	}

	token, err := s.provider.CreateSession(ctx, signIn.IDToken, s.sessionTTL)
	if err != nil {
		s.logger.Error("Failed to create session", zap.String("uid", signIn.UID), zap.Error(err))
		return nil, ErrLoginFailed
	}

	admin, err := s.adminRepo.FindByID(ctx, signIn.UID)
	if errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("Sign-in without admin record", zap.String("uid", signIn.UID))
		s.signOut(ctx, signIn.UID, token)
		return nil, shared.ErrAccessDenied
	}
	if err != nil {
		s.signOut(ctx, signIn.UID, token)
		return nil, err
	}

	ident, err := s.provider.GetUser(ctx, signIn.UID)
	if err != nil {
		s.logger.Warn("Failed to load identity", zap.String("uid", signIn.UID), zap.Error(err))
		ident = &auth.Identity{UID: signIn.UID, Email: req.Email}
	}

	s.logger.Info("Admin signed in", zap.String("uid", signIn.UID))
	return &LoginResult{
		SessionToken: token,
		Admin: SessionResponse{
			ID:          signIn.UID,
			Email:       ident.Email,
			DisplayName: ident.DisplayName,
			SuperAdmin:  admin.SuperAdmin,
		},
	}, nil
}

// signOut revokes the session just created. Providers without single
// session revocation revoke every session of the account.
func (s *AuthService) signOut(ctx context.Context, uid, token string) {
	var err error
	if r, ok := s.provider.(sessionRevoker); ok {
		err = r.RevokeSession(ctx, token)
	} else {
		err = s.provider.RevokeSessions(ctx, uid)
	}
	if err != nil {
		s.logger.Error("Failed to revoke session", zap.String("uid", uid), zap.Error(err))
	}
}

// Logout revokes the session token. An invalid token is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	session, err := s.provider.VerifySession(ctx, token)
	if err != nil {
		return nil
	}
	if r, ok := s.provider.(sessionRevoker); ok {
		return r.RevokeSession(ctx, token)
	}
	return s.provider.RevokeSessions(ctx, session.UID)
}

// Authenticate verifies a session token and loads the admin record.
// Sessions of accounts whose admin document was removed are rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	session, err := s.provider.VerifySession(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidSession) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	admin, err := s.adminRepo.FindByID(ctx, session.UID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.ErrAccessDenied
	}
	if err != nil {
		return nil, err
	}
	return &Principal{UID: session.UID, SuperAdmin: admin.SuperAdmin}, nil
}

// Me returns the signed-in admin
func (s *AuthService) Me(ctx context.Context, principal Principal) (*SessionResponse, error) {
	resp := &SessionResponse{ID: principal.UID, SuperAdmin: principal.SuperAdmin}
	ident, err := s.provider.GetUser(ctx, principal.UID)
	if err != nil {
		if errors.Is(err, auth.ErrIdentityNotFound) {
			return resp, nil
		}
		return nil, err
	}
	resp.Email = ident.Email
	resp.DisplayName = ident.DisplayName
	return resp, nil
}
