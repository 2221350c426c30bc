package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/storeadmin/backend/internal/infrastructure/auth"
	"gorm.io/gorm"
)

// CredentialModel is the table of local admin accounts
type CredentialModel struct {
	UID          string    `gorm:"type:varchar(36);primaryKey"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	DisplayName  string    `gorm:"type:varchar(200)"`
	PasswordHash string    `gorm:"type:varchar(100);not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CredentialModel) TableName() string {
	return "admin_credentials"
}

func (m *CredentialModel) toCredential() *auth.Credential {
	return &auth.Credential{
		UID:          m.UID,
		Email:        m.Email,
		DisplayName:  m.DisplayName,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// GormCredentialRepository implements auth.CredentialStore using GORM
type GormCredentialRepository struct {
	db *gorm.DB
}

// NewGormCredentialRepository creates a new GormCredentialRepository
func NewGormCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

// Create inserts a credential; a taken email maps to auth.ErrEmailExists
func (r *GormCredentialRepository) Create(ctx context.Context, cred *auth.Credential) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&CredentialModel{}).Where("email = ?", cred.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return auth.ErrEmailExists
	}

	model := &CredentialModel{
		UID:          cred.UID,
		Email:        cred.Email,
		DisplayName:  cred.DisplayName,
		PasswordHash: cred.PasswordHash,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return auth.ErrEmailExists
		}
		return err
	}
	cred.CreatedAt = model.CreatedAt
	cred.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByUID finds a credential by account id
func (r *GormCredentialRepository) FindByUID(ctx context.Context, uid string) (*auth.Credential, error) {
	return r.findOne(ctx, "uid = ?", uid)
}

// FindByEmail finds a credential by normalized email
func (r *GormCredentialRepository) FindByEmail(ctx context.Context, email string) (*auth.Credential, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *GormCredentialRepository) findOne(ctx context.Context, query string, arg any) (*auth.Credential, error) {
	var model CredentialModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrIdentityNotFound
		}
		return nil, err
	}
	return model.toCredential(), nil
}

// UpdatePasswordHash replaces the stored hash
func (r *GormCredentialRepository) UpdatePasswordHash(ctx context.Context, uid, hash string) error {
	result := r.db.WithContext(ctx).Model(&CredentialModel{}).
		Where("uid = ?", uid).
		Updates(map[string]any{"password_hash": hash, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return auth.ErrIdentityNotFound
	}
	return nil
}

// Delete removes a credential. Deleting an unknown account is an error.
func (r *GormCredentialRepository) Delete(ctx context.Context, uid string) error {
	result := r.db.WithContext(ctx).Where("uid = ?", uid).Delete(&CredentialModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return auth.ErrIdentityNotFound
	}
	return nil
}

var _ auth.CredentialStore = (*GormCredentialRepository)(nil)
