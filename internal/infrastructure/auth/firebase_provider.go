package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/storeadmin/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// FirebaseProvider is an IdentityProvider backed by Firebase Authentication.
// Account management goes through the Admin SDK; password sign-in goes
// through the Identity Toolkit REST API with the project's web API key.
type FirebaseProvider struct {
	client  *fbauth.Client
	toolkit *identitytoolkit.RelyingpartyService
	timeout time.Duration
	logger  *zap.Logger
}

// NewFirebaseProvider creates the Admin SDK and Identity Toolkit clients
func NewFirebaseProvider(ctx context.Context, cfg *config.IdentityConfig, logger *zap.Logger) (*FirebaseProvider, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth: %w", err)
	}

	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize identity toolkit: %w", err)
	}

	return &FirebaseProvider{
		client:  client,
		toolkit: svc.Relyingparty,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

func (p *FirebaseProvider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

func (p *FirebaseProvider) CreateUser(ctx context.Context, in NewIdentity) (*Identity, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	params := (&fbauth.UserToCreate{}).
		Email(in.Email).
		Password(in.Password).
		DisplayName(in.DisplayName)
	rec, err := p.client.CreateUser(ctx, params)
	if err != nil {
		return nil, mapFirebaseError(err)
	}
	return fromUserRecord(rec), nil
}

func (p *FirebaseProvider) GetUser(ctx context.Context, uid string) (*Identity, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	rec, err := p.client.GetUser(ctx, uid)
	if err != nil {
		return nil, mapFirebaseError(err)
	}
	return fromUserRecord(rec), nil
}

func (p *FirebaseProvider) GetUserByEmail(ctx context.Context, email string) (*Identity, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	rec, err := p.client.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, mapFirebaseError(err)
	}
	return fromUserRecord(rec), nil
}

func (p *FirebaseProvider) DeleteUser(ctx context.Context, uid string) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return mapFirebaseError(p.client.DeleteUser(ctx, uid))
}

func (p *FirebaseProvider) UpdatePassword(ctx context.Context, uid, password string) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	_, err := p.client.UpdateUser(ctx, uid, (&fbauth.UserToUpdate{}).Password(password))
	return mapFirebaseError(err)
}

func (p *FirebaseProvider) SignInWithPassword(ctx context.Context, email, password string) (*SignIn, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	resp, err := p.toolkit.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapSignInError(err)
	}
	return &SignIn{UID: resp.LocalId, IDToken: resp.IdToken}, nil
}

func (p *FirebaseProvider) CreateSession(ctx context.Context, idToken string, expiresIn time.Duration) (string, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	cookie, err := p.client.SessionCookie(ctx, idToken, expiresIn)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return cookie, nil
}

func (p *FirebaseProvider) VerifySession(ctx context.Context, token string) (*Session, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	t, err := p.client.VerifySessionCookieAndCheckRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return &Session{
		UID:       t.UID,
		IssuedAt:  time.Unix(t.IssuedAt, 0),
		ExpiresAt: time.Unix(t.Expires, 0),
	}, nil
}

func (p *FirebaseProvider) RevokeSessions(ctx context.Context, uid string) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	p.logger.Info("Revoking refresh tokens", zap.String("uid", uid))
	return mapFirebaseError(p.client.RevokeRefreshTokens(ctx, uid))
}

func fromUserRecord(rec *fbauth.UserRecord) *Identity {
	return &Identity{
		UID:         rec.UID,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		Disabled:    rec.Disabled,
	}
}

func mapFirebaseError(err error) error {
	switch {
	case err == nil:
		return nil
	case fbauth.IsEmailAlreadyExists(err):
		return fmt.Errorf("%w: %v", ErrEmailExists, err)
	case fbauth.IsUserNotFound(err):
		return fmt.Errorf("%w: %v", ErrIdentityNotFound, err)
	}
	return err
}

// mapSignInError classifies Identity Toolkit error messages such as
// "INVALID_PASSWORD" or "EMAIL_NOT_FOUND"
func mapSignInError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("%w: %v", ErrSignInFailed, err)
	}
	code := gerr.Message
	for _, item := range gerr.Errors {
		code += " " + item.Message
	}
	switch {
	case strings.Contains(code, "INVALID_PASSWORD"), strings.Contains(code, "INVALID_LOGIN_CREDENTIALS"):
		return ErrInvalidPassword
	case strings.Contains(code, "EMAIL_NOT_FOUND"):
		return ErrIdentityNotFound
	}
	return fmt.Errorf("%w: %v", ErrSignInFailed, err)
}

var _ IdentityProvider = (*FirebaseProvider)(nil)
