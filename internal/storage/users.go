package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/core"
)

const userColumns = "id, username, email, password_hash"

func scanUser(row interface{ Scan(...any) error }) (core.User, error) {
	var u core.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, core.ErrNotFound
		}
		return core.User{}, err
	}
	return u, nil
}

// CreateUser inserts u and returns it with its new id. Duplicate usernames or
// emails map to core.ErrUsernameTaken and core.ErrEmailTaken.
func (t *Tx) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	id, err := t.insert(ctx,
		"INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)",
		u.Username, u.Email, u.PasswordHash)
	if err != nil {
		if t.d.isUniqueViolation(err) {
			if strings.Contains(err.Error(), "email") {
				return core.User{}, core.ErrEmailTaken
			}
			return core.User{}, core.ErrUsernameTaken
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	u.ID = id
	return u, nil
}

func (t *Tx) UserByID(ctx context.Context, id int64) (core.User, error) {
	u, err := scanUser(t.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return core.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, err
}

func (t *Tx) UserByUsername(ctx context.Context, username string) (core.User, error) {
	u, err := scanUser(t.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username))
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return core.User{}, fmt.Errorf("get user %q: %w", username, err)
	}
	return u, err
}

func (t *Tx) UserByEmail(ctx context.Context, email string) (core.User, error) {
	u, err := scanUser(t.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email))
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return core.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, err
}

// DeleteUser removes the user; owned expenses and income go with it.
func (t *Tx) DeleteUser(ctx context.Context, id int64) error {
	res, err := t.exec(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return affectedOne(res)
}
