package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/kostumi/internal/lifecycle"
	"github.com/erazemk/kostumi/internal/model"
)

const userColumns = `id, username, password_hash, role, created_at, deleted_at FROM users`

func scanUser(s scanner, u *model.User) error {
	return s.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.DeletedAt)
}

// CreateUser creates an operator account.
func CreateUser(ctx context.Context, db *sql.DB, username, passwordHash, role string) (*model.User, error) {
	if username == "" {
		return nil, lifecycle.Reject(lifecycle.CodeInvalid, "username is required")
	}
	if !model.ValidRole(role) {
		return nil, lifecycle.Reject(lifecycle.CodeInvalid, "unknown role %q", role)
	}

	existing, err := GetUserByUsername(ctx, db, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, lifecycle.Reject(lifecycle.CodeConflict, "username %q is taken", username)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)`,
		username, passwordHash, role,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user %q: %w", username, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID, or nil if there is none.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	u := &model.User{}
	err := scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` WHERE id = ?`, id), u)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}
	return u, nil
}

// GetUserByUsername returns a user by username. Deleted users are returned too
// so that login can refuse them explicitly.
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*model.User, error) {
	u := &model.User{}
	err := scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` WHERE username = ?`, username), u)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", username, err)
	}
	return u, nil
}

// ListUsers returns the active users.
func ListUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+userColumns+` WHERE deleted_at IS NULL ORDER BY username`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// updateActiveUser runs an UPDATE against one active user and reports a
// not_found rejection when no row matched.
func updateActiveUser(ctx context.Context, db *sql.DB, id int64, set string, arg any) error {
	args := []any{id}
	if arg != nil {
		args = []any{arg, id}
	}
	result, err := db.ExecContext(ctx,
		`UPDATE users SET `+set+` WHERE id = ? AND deleted_at IS NULL`, args...,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return lifecycle.NotFound("user %d not found", id)
	}
	return nil
}

// UpdateUser changes a user's role.
func UpdateUser(ctx context.Context, db *sql.DB, id int64, role string) error {
	if !model.ValidRole(role) {
		return lifecycle.Reject(lifecycle.CodeInvalid, "unknown role %q", role)
	}
	if err := updateActiveUser(ctx, db, id, `role = ?`, role); err != nil {
		return fmt.Errorf("updating role of user %d: %w", id, err)
	}
	return nil
}

// UpdateUserPassword replaces a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	if err := updateActiveUser(ctx, db, id, `password_hash = ?`, passwordHash); err != nil {
		return fmt.Errorf("updating password of user %d: %w", id, err)
	}
	return nil
}

// DeleteUser soft-deletes a user. Movements keep naming the user as responsible.
func DeleteUser(ctx context.Context, db *sql.DB, id int64) error {
	if err := updateActiveUser(ctx, db, id, `deleted_at = CURRENT_TIMESTAMP`, nil); err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	return nil
}
