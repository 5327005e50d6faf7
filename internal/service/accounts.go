// Package service holds the account, dashboard, and consultation logic behind
// the HTTP handlers. Every failure it returns is an *apperr.Error.
package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/kalafo-api/internal/apperr"
	"github.com/hongminglow/kalafo-api/internal/auth"
	"github.com/hongminglow/kalafo-api/internal/models"
	"github.com/hongminglow/kalafo-api/internal/storage"
)

// Registration is the input accepted when creating an account.
type Registration struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// Accounts registers users and authenticates them.
type Accounts struct {
	users  storage.UserStore
	hasher auth.PasswordHasher
	tokens *auth.TokenManager
}

// NewAccounts constructs the account service.
func NewAccounts(users storage.UserStore, hasher auth.PasswordHasher, tokens *auth.TokenManager) *Accounts {
	return &Accounts{users: users, hasher: hasher, tokens: tokens}
}

// Register validates in, hashes the password, and stores a new active user.
// Stored fields are kept exactly as supplied.
func (a *Accounts) Register(ctx context.Context, in Registration) (models.User, error) {
	if blank(in.Email) || blank(in.Password) || blank(in.FirstName) || blank(in.LastName) || blank(in.Role) {
		return models.User{}, apperr.Validation("missing_fields", "email, password, first_name, last_name and role are required")
	}
	role := models.Role(in.Role)
	if !role.Valid() {
		return models.User{}, apperr.Validation("invalid_role", "role must be one of admin, doctor, patient")
	}

	hash, err := a.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return models.User{}, apperr.Validation("password_too_long", "password must be at most 72 bytes")
		}
		return models.User{}, apperr.Internal("failed to hash password", err)
	}

	created, err := a.users.CreateUser(ctx, models.User{
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.User{}, apperr.Conflict("email_taken", "email already registered")
		}
		return models.User{}, apperr.Internal("failed to create user", err)
	}
	return created, nil
}

// Login verifies credentials and issues a session token. Unknown emails and
// wrong passwords produce the same error; the active flag is checked last.
func (a *Accounts) Login(ctx context.Context, email, password string) (string, models.User, error) {
	if blank(email) || blank(password) {
		return "", models.User{}, apperr.Validation("missing_fields", "email and password required")
	}

	invalid := apperr.Authentication("invalid_credentials", "invalid email or password")
	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", models.User{}, invalid
		}
		return "", models.User{}, apperr.Internal("failed to fetch user", err)
	}
	ok, err := a.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return "", models.User{}, apperr.Internal("failed to verify password", err)
	}
	if !ok {
		return "", models.User{}, invalid
	}
	if !user.IsActive {
		return "", models.User{}, apperr.Authentication("account_deactivated", "account is deactivated")
	}

	token, err := a.tokens.Generate(user)
	if err != nil {
		return "", models.User{}, apperr.Internal("failed to generate token", err)
	}
	return token, user, nil
}

// List returns every user.
func (a *Accounts) List(ctx context.Context) ([]models.User, error) {
	users, err := a.users.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list users", err)
	}
	return users, nil
}

// SetActive activates or deactivates an account.
func (a *Accounts) SetActive(ctx context.Context, id int64, active bool) (models.User, error) {
	user, err := a.users.SetUserActive(ctx, id, active)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, apperr.NotFound("user_not_found", "user not found")
		}
		return models.User{}, apperr.Internal("failed to update user", err)
	}
	return user, nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
