package auth

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

// UserLookup finds a user by unique username.
type UserLookup interface {
	UserByUsername(ctx context.Context, username string) (core.User, error)
}

// dummyHash keeps the work done for unknown usernames comparable to a real check.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3l5r0JY0sP5C0p0GWX0Nf6a"

// Authenticate verifies username and password against the stored hash and
// returns core.ErrInvalidCredentials when either is wrong.
func Authenticate(ctx context.Context, users UserLookup, username, password string) (core.User, error) {
	u, err := users.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			CheckPassword(dummyHash, password)
			return core.User{}, core.ErrInvalidCredentials
		}
		return core.User{}, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return core.User{}, core.ErrInvalidCredentials
	}
	return u, nil
}
