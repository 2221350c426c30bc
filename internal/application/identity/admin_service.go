package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/storeadmin/backend/internal/domain/identity"
	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/storeadmin/backend/internal/infrastructure/auth"
	"github.com/storeadmin/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrSuperAdminRequired rejects privileged admin operations of regular admins
var ErrSuperAdminRequired = shared.NewDomainError("FORBIDDEN", "Only super admins can manage admin accounts")

const identityLookupConcurrency = 8

// AdminService handles admin account operations. Accounts live in the
// identity provider; the admin document only marks them as admins.
type AdminService struct {
	provider  auth.IdentityProvider
	adminRepo identity.AdminRepository
	logger    *zap.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(provider auth.IdentityProvider, adminRepo identity.AdminRepository, logger *zap.Logger) *AdminService {
	return &AdminService{
		provider:  provider,
		adminRepo: adminRepo,
		logger:    logger,
	}
}

// List returns every admin with display name and email from the identity provider
func (s *AdminService) List(ctx context.Context) ([]AdminResponse, error) {
	admins, err := s.adminRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(identityLookupConcurrency)
	for i := range admins {
		a := &admins[i]
		g.Go(func() error {
			return s.resolve(gctx, a)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]AdminResponse, len(admins))
	for i := range admins {
		out[i] = ToAdminResponse(&admins[i])
	}
	return out, nil
}

// GetByID returns one admin
func (s *AdminService) GetByID(ctx context.Context, id string) (*AdminResponse, error) {
	admin, err := s.adminRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.resolve(ctx, admin); err != nil {
		return nil, err
	}
	resp := ToAdminResponse(admin)
	return &resp, nil
}

// resolve copies email and display name from the identity account.
// A missing account leaves both empty.
func (s *AdminService) resolve(ctx context.Context, admin *identity.Admin) error {
	ident, err := s.provider.GetUser(ctx, admin.ID)
	if errors.Is(err, auth.ErrIdentityNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load identity %s: %w", admin.ID, err)
	}
	admin.Email = ident.Email
	admin.DisplayName = ident.DisplayName
	return nil
}

// Create creates the identity account and the admin document. An email that
// already has an account reuses that account.
func (s *AdminService) Create(ctx context.Context, actor Principal, req CreateAdminRequest) (*AdminResponse, error) {
	if !actor.SuperAdmin {
		return nil, ErrSuperAdminRequired
	}
	in := identity.NewAdminInput{
		DisplayName: strings.TrimSpace(req.DisplayName),
		Email:       strings.TrimSpace(req.Email),
		Password:    req.Password,
		SuperAdmin:  req.SuperAdmin,
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "admin", "create", telemetry.SpanAttrAdminID, actor.UID)
	defer span.End()

	ident, err := s.provider.CreateUser(ctx, auth.NewIdentity{
		Email:       in.Email,
		Password:    in.Password,
		DisplayName: in.DisplayName,
	})
	if errors.Is(err, auth.ErrEmailExists) {
		s.logger.Info("Email already registered, reusing account", zap.String("email", in.Email))
		ident, err = s.provider.GetUserByEmail(ctx, in.Email)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	admin := &identity.Admin{
		BaseEntity:  shared.BaseEntity{ID: ident.UID},
		SuperAdmin:  in.SuperAdmin,
		Email:       ident.Email,
		DisplayName: ident.DisplayName,
	}
	if err := s.adminRepo.Save(ctx, admin); err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewPartialFailure(
			fmt.Sprintf("Account %s created but the admin record could not be saved", ident.UID), err)
	}

	resp := ToAdminResponse(admin)
	return &resp, nil
}

// UpdateSuperAdmin sets the super admin flag
func (s *AdminService) UpdateSuperAdmin(ctx context.Context, actor Principal, id string, superAdmin bool) (*AdminResponse, error) {
	if !actor.SuperAdmin {
		return nil, ErrSuperAdminRequired
	}
	admin, err := s.adminRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	admin.SuperAdmin = superAdmin
	if err := s.adminRepo.Save(ctx, admin); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// ChangePassword sets a new password on the admin's account
func (s *AdminService) ChangePassword(ctx context.Context, actor Principal, id, password string) error {
	if !actor.SuperAdmin {
		return ErrSuperAdminRequired
	}
	if err := identity.ValidatePassword(password); err != nil {
		return err
	}
	if _, err := s.adminRepo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.provider.UpdatePassword(ctx, id, password); err != nil {
		if errors.Is(err, auth.ErrIdentityNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes the identity account and then the admin document
func (s *AdminService) Delete(ctx context.Context, actor Principal, id string) error {
	if !actor.SuperAdmin {
		return ErrSuperAdminRequired
	}
	if _, err := s.adminRepo.FindByID(ctx, id); err != nil {
		return err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "admin", "delete", telemetry.SpanAttrAdminID, id)
	defer span.End()

	if err := s.provider.DeleteUser(ctx, id); err != nil && !errors.Is(err, auth.ErrIdentityNotFound) {
		telemetry.RecordError(span, err)
		return err
	}
	if err := s.adminRepo.Delete(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		return shared.NewPartialFailure("Account deleted but the admin record could not be removed", err)
	}
	return nil
}
