package domain

import (
	"context"
	"errors"
)

type RegisterRequest struct {
	Username  string
	Email     string
	Password  string
	Password2 string
}

type LoginRequest struct {
	Username string
	Password string
}

// Identity is a user together with the role in effect for this request.
type Identity struct {
	User User
	Role Role
}

type Service interface {
	Register(context.Context, RegisterRequest) (Identity, error)
	Login(context.Context, LoginRequest) (Identity, error)
	GetByID(context.Context, string) (Identity, error)
	ProfileOf(context.Context, string) (*UserProfile, error)
}

var (
	ErrInvalidUsername    = errors.New("invalid_username")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidPassword    = errors.New("invalid_password")
	ErrPasswordMismatch   = errors.New("password_mismatch")
	ErrInvalidID          = errors.New("invalid_id")
	ErrUserExists         = errors.New("user_exists")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrNotFound           = errors.New("not_found")
)
