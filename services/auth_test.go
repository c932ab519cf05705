package services

import (
	"context"
	"testing"
	"time"
	"webauthn_ms/domain"
	"webauthn_ms/dtos/request"
	"webauthn_ms/util"

	"github.com/stretchr/testify/assert"
)

func TestLogin(t *testing.T) {
	hash, err := util.HashPassword("correct-horse")
	assert.NoError(t, err)

	user := &domain.User{Id: 1, Username: "petrov", Password: hash, Role: domain.RoleTeacher}
	jwtService := NewJWTService([]byte("test-secret"), "webauthn_ms", time.Hour, 24*time.Hour)
	authService := NewAuthService(setupGormDB(t), newFakeUserRepo(user), jwtService)

	gotUser, tokens, err := authService.Login(context.Background(), &request.LoginRequest{
		Username: "petrov",
		Password: "correct-horse",
	})
	assert.NoError(t, err)
	assert.Equal(t, "petrov", gotUser.Username)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := util.HashPassword("correct-horse")
	assert.NoError(t, err)

	user := &domain.User{Id: 1, Username: "petrov", Password: hash}
	jwtService := NewJWTService([]byte("test-secret"), "webauthn_ms", time.Hour, 24*time.Hour)
	authService := NewAuthService(setupGormDB(t), newFakeUserRepo(user), jwtService)

	_, _, err = authService.Login(context.Background(), &request.LoginRequest{
		Username: "petrov",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUserIsIndistinguishable(t *testing.T) {
	jwtService := NewJWTService([]byte("test-secret"), "webauthn_ms", time.Hour, 24*time.Hour)
	authService := NewAuthService(setupGormDB(t), newFakeUserRepo(), jwtService)

	_, _, err := authService.Login(context.Background(), &request.LoginRequest{
		Username: "nobody",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
