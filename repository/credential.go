package repository

import (
	"errors"
	"strings"
	"time"
	"webauthn_ms/domain"

	"gorm.io/gorm"
)

// ErrDuplicateCredentialID is returned by Insert when the credential id is
// already registered, detected through the UNIQUE constraint so two racing
// inserts resolve to exactly one winner.
var ErrDuplicateCredentialID = errors.New("credential id already exists")

// UserKeyCount is the aggregate row for the users-with-keys listing.
type UserKeyCount struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	KeysCount int64  `json:"keys_count"`
}

type ICredentialRepository interface {
	FindByCredentialID(db *gorm.DB, credentialID []byte) (*domain.WebAuthnCredential, error)
	FindByUser(db *gorm.DB, userID uint) ([]domain.WebAuthnCredential, error)
	Insert(db *gorm.DB, entity *domain.WebAuthnCredential) error
	UpdateSignCount(db *gorm.DB, credentialID []byte, signCount uint32, lastUsedAt *time.Time) error
	DeleteOwned(db *gorm.DB, userID uint, id uint) error
	UsersWithKeys(db *gorm.DB) ([]UserKeyCount, error)
}

type CredentialRepository struct {
}

func NewCredentialRepository() ICredentialRepository {
	return &CredentialRepository{}
}

func (r *CredentialRepository) FindByCredentialID(db *gorm.DB, credentialID []byte) (*domain.WebAuthnCredential, error) {
	var credential domain.WebAuthnCredential
	err := db.Where("credential_id = ?", credentialID).First(&credential).Error
	if err != nil {
		return nil, err
	}
	return &credential, nil
}

func (r *CredentialRepository) FindByUser(db *gorm.DB, userID uint) ([]domain.WebAuthnCredential, error) {
	var credentials []domain.WebAuthnCredential
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&credentials).Error
	if err != nil {
		return nil, err
	}
	return credentials, nil
}

func (r *CredentialRepository) Insert(db *gorm.DB, entity *domain.WebAuthnCredential) error {
	if err := db.Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateCredentialID
		}
		return err
	}
	return nil
}

func (r *CredentialRepository) UpdateSignCount(db *gorm.DB, credentialID []byte, signCount uint32, lastUsedAt *time.Time) error {
	return db.Model(&domain.WebAuthnCredential{}).
		Where("credential_id = ?", credentialID).
		Updates(map[string]interface{}{
			"sign_count":   signCount,
			"last_used_at": lastUsedAt,
		}).Error
}

func (r *CredentialRepository) DeleteOwned(db *gorm.DB, userID uint, id uint) error {
	result := db.Where("id = ? AND user_id = ?", id, userID).Delete(&domain.WebAuthnCredential{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CredentialRepository) UsersWithKeys(db *gorm.DB) ([]UserKeyCount, error) {
	var rows []UserKeyCount
	err := db.Model(&domain.WebAuthnCredential{}).
		Select("users.username, users.first_name, users.last_name, count(webauthn_credentials.id) as keys_count").
		Joins("JOIN users ON users.id = webauthn_credentials.user_id").
		Group("users.username, users.first_name, users.last_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
