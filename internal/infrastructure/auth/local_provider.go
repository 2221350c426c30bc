package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Credential is an account row of the local identity store
type Credential struct {
	UID          string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CredentialStore persists local accounts
type CredentialStore interface {
	// Create returns ErrEmailExists when the email is taken
	Create(ctx context.Context, cred *Credential) error
	// FindByUID and FindByEmail return ErrIdentityNotFound for unknown accounts
	FindByUID(ctx context.Context, uid string) (*Credential, error)
	FindByEmail(ctx context.Context, email string) (*Credential, error)
	UpdatePasswordHash(ctx context.Context, uid, hash string) error
	Delete(ctx context.Context, uid string) error
}

// LocalProvider is an IdentityProvider backed by a credential table,
// bcrypt password hashes and HS256 session tokens.
type LocalProvider struct {
	store   CredentialStore
	tokens  *TokenService
	revoked RevocationList
	cost    int
	logger  *zap.Logger
}

// LocalProviderOption configures a LocalProvider
type LocalProviderOption func(*LocalProvider)

// WithBcryptCost overrides bcrypt.DefaultCost
func WithBcryptCost(cost int) LocalProviderOption {
	return func(p *LocalProvider) {
		p.cost = cost
	}
}

// NewLocalProvider creates a local identity provider
func NewLocalProvider(store CredentialStore, tokens *TokenService, revoked RevocationList, logger *zap.Logger, opts ...LocalProviderOption) *LocalProvider {
	p := &LocalProvider{
		store:   store,
		tokens:  tokens,
		revoked: revoked,
		cost:    bcrypt.DefaultCost,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *LocalProvider) CreateUser(ctx context.Context, in NewIdentity) (*Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	cred := &Credential{
		UID:          uuid.NewString(),
		Email:        normalizeEmail(in.Email),
		DisplayName:  strings.TrimSpace(in.DisplayName),
		PasswordHash: string(hash),
	}
	if err := p.store.Create(ctx, cred); err != nil {
		return nil, err
	}
	return toIdentity(cred), nil
}

func (p *LocalProvider) GetUser(ctx context.Context, uid string) (*Identity, error) {
	cred, err := p.store.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return toIdentity(cred), nil
}

func (p *LocalProvider) GetUserByEmail(ctx context.Context, email string) (*Identity, error) {
	cred, err := p.store.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return toIdentity(cred), nil
}

func (p *LocalProvider) DeleteUser(ctx context.Context, uid string) error {
	if err := p.store.Delete(ctx, uid); err != nil {
		return err
	}
	return p.revoked.RevokeUser(ctx, uid, p.tokens.SessionExpiration())
}

func (p *LocalProvider) UpdatePassword(ctx context.Context, uid, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return p.store.UpdatePasswordHash(ctx, uid, string(hash))
}

func (p *LocalProvider) SignInWithPassword(ctx context.Context, email, password string) (*SignIn, error) {
	cred, err := p.store.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidPassword
		}
		return nil, fmt.Errorf("%w: %v", ErrSignInFailed, err)
	}

	idToken, _, err := p.tokens.Issue(TokenTypeID, cred.UID, cred.Email, IDTokenExpiration)
	if err != nil {
		return nil, fmt.Errorf("failed to issue id token: %w", err)
	}
	return &SignIn{UID: cred.UID, IDToken: idToken}, nil
}

// CreateSession exchanges an id token for a session token valid for expiresIn
func (p *LocalProvider) CreateSession(ctx context.Context, idToken string, expiresIn time.Duration) (string, error) {
	claims, err := p.tokens.Validate(idToken, TokenTypeID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if expiresIn <= 0 {
		expiresIn = p.tokens.SessionExpiration()
	}
	session, _, err := p.tokens.Issue(TokenTypeSession, claims.UID, claims.Email, expiresIn)
	if err != nil {
		return "", fmt.Errorf("failed to issue session token: %w", err)
	}
	return session, nil
}

func (p *LocalProvider) VerifySession(ctx context.Context, token string) (*Session, error) {
	claims, err := p.tokens.Validate(token, TokenTypeSession)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	revoked, err := p.revoked.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if !revoked {
		revoked, err = p.revoked.IsUserRevoked(ctx, claims.UID, claims.IssuedAtTime())
		if err != nil {
			return nil, err
		}
	}
	if revoked {
		return nil, fmt.Errorf("%w: session revoked", ErrInvalidSession)
	}

	return &Session{
		UID:       claims.UID,
		IssuedAt:  claims.IssuedAtTime(),
		ExpiresAt: claims.ExpiresAtTime(),
	}, nil
}

func (p *LocalProvider) RevokeSessions(ctx context.Context, uid string) error {
	p.logger.Info("Revoking sessions", zap.String("uid", uid))
	return p.revoked.RevokeUser(ctx, uid, p.tokens.SessionExpiration())
}

// RevokeSession revokes a single session token, used on logout.
// Invalid tokens are ignored.
func (p *LocalProvider) RevokeSession(ctx context.Context, token string) error {
	claims, err := p.tokens.Validate(token, TokenTypeSession)
	if err != nil {
		return nil
	}
	return p.revoked.RevokeToken(ctx, claims.ID, claims.RemainingTTL())
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toIdentity(c *Credential) *Identity {
	return &Identity{UID: c.UID, Email: c.Email, DisplayName: c.DisplayName}
}

var _ IdentityProvider = (*LocalProvider)(nil)
