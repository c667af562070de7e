package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

// UserService registers, authenticates and removes accounts.
type UserService struct {
	store  *storage.Store
	tokens *auth.TokenIssuer
	logger *log.Logger
}

func NewUserService(store *storage.Store, tokens *auth.TokenIssuer, logger *log.Logger) *UserService {
	return &UserService{
		store:  store,
		tokens: tokens,
		logger: logger.WithComponent(log.ComponentUser),
	}
}

// Registration is the input of Register.
type Registration struct {
	Username string
	Email    string
	Password string
}

func (r *Registration) normalize() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)

	if len(r.Username) < minUsernameLen {
		return core.NewValidationError("username", "must be at least %d characters", minUsernameLen)
	}
	addr, err := mail.ParseAddress(r.Email)
	if err != nil || addr.Address != r.Email {
		return core.NewValidationError("email", "value is not a valid email address")
	}
	if len(r.Password) < minPasswordLen {
		return core.NewValidationError("password", "must be at least %d characters", minPasswordLen)
	}
	return nil
}

// Register creates an account. Duplicate usernames or emails yield
// core.ErrUsernameTaken or core.ErrEmailTaken.
func (s *UserService) Register(ctx context.Context, r Registration) (core.User, error) {
	if err := r.normalize(); err != nil {
		return core.User{}, err
	}

	hash, err := auth.HashPassword(r.Password)
	if err != nil {
		return core.User{}, err
	}

	var u core.User
	err = s.store.InTx(ctx, func(tx *storage.Tx) error {
		if _, err := tx.UserByUsername(ctx, r.Username); err == nil {
			return core.ErrUsernameTaken
		} else if !errors.Is(err, core.ErrNotFound) {
			return err
		}
		if _, err := tx.UserByEmail(ctx, r.Email); err == nil {
			return core.ErrEmailTaken
		} else if !errors.Is(err, core.ErrNotFound) {
			return err
		}

		u, err = tx.CreateUser(ctx, core.User{Username: r.Username, Email: r.Email, PasswordHash: hash})
		return err
	})
	if err != nil {
		return core.User{}, err
	}

	s.logger.InfoContext(ctx, "User registered", log.FieldUserID, u.ID, log.FieldUsername, u.Username)
	return u, nil
}

// Login checks the credentials and issues a bearer token.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	var u core.User
	err := s.store.InTx(ctx, func(tx *storage.Tx) (err error) {
		u, err = auth.Authenticate(ctx, tx, username, password)
		return err
	})
	if err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(u.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// ResolveUser loads the user named by a token subject.
func (s *UserService) ResolveUser(ctx context.Context, username string) (core.User, error) {
	var u core.User
	err := s.store.InTx(ctx, func(tx *storage.Tx) (err error) {
		u, err = tx.UserByUsername(ctx, username)
		return err
	})
	return u, err
}

// Delete removes the account and, by cascade, all of its records.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	err := s.store.InTx(ctx, func(tx *storage.Tx) error {
		return tx.DeleteUser(ctx, userID)
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "User deleted", log.FieldUserID, userID)
	return nil
}
