package repository

import (
	"webauthn_ms/domain"

	"gorm.io/gorm"
)

type IUserRepository interface {
	GetByID(db *gorm.DB, id uint) (*domain.User, error)
	GetByIDWithCredentials(db *gorm.DB, id uint) (*domain.User, error)
	GetByUsername(db *gorm.DB, username string) (*domain.User, error)
	GetByUsernameWithCredentials(db *gorm.DB, username string) (*domain.User, error)
	Create(db *gorm.DB, entity *domain.User) (*domain.User, error)
}

type UserRepository struct {
}

func NewUserRepository() IUserRepository {
	return &UserRepository{}
}

func (u *UserRepository) GetByID(db *gorm.DB, id uint) (*domain.User, error) {
	var user domain.User
	err := db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserRepository) GetByIDWithCredentials(db *gorm.DB, id uint) (*domain.User, error) {
	var user domain.User
	err := db.Preload("Credentials").First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserRepository) GetByUsername(db *gorm.DB, username string) (*domain.User, error) {
	var user domain.User
	err := db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserRepository) GetByUsernameWithCredentials(db *gorm.DB, username string) (*domain.User, error) {
	var user domain.User
	err := db.Preload("Credentials").Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserRepository) Create(db *gorm.DB, entity *domain.User) (*domain.User, error) {
	return entity, db.Create(entity).Error
}
