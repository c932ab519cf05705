package services

import (
	"context"
	"webauthn_ms/domain"
	"webauthn_ms/dtos/request"
	"webauthn_ms/dtos/response"
	"webauthn_ms/repository"
	"webauthn_ms/util"

	"gorm.io/gorm"
)

// IAuthService is the surrounding application's password login. It exists so
// users can sign in before they have enrolled a passkey; the WebAuthn
// ceremonies are the interesting path.
type IAuthService interface {
	Login(ctx context.Context, req *request.LoginRequest) (*domain.User, *response.Tokens, error)
}

type AuthService struct {
	db       *gorm.DB
	userRepo repository.IUserRepository
	jwt      IJWTService
}

func NewAuthService(db *gorm.DB, userRepo repository.IUserRepository, jwt IJWTService) IAuthService {
	return &AuthService{db: db, userRepo: userRepo, jwt: jwt}
}

func (as *AuthService) Login(ctx context.Context, req *request.LoginRequest) (*domain.User, *response.Tokens, error) {
	user, err := as.userRepo.GetByUsername(as.db.WithContext(ctx), req.Username)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !util.VerifyPassword(req.Password, user.Password) {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := as.jwt.GenerateTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}
