package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

const userColumns = "id, email, password_hash, first_name, last_name, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (s *SQLiteStore) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}

	taken, err := s.exists(ctx, "SELECT 1 FROM users WHERE email = ?", u.Email)
	if err != nil {
		return core.User{}, err
	}
	if taken {
		return core.User{}, fmt.Errorf("email %q: %w", u.Email, ErrConflict)
	}

	ts := now()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, first_name, last_name, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		u.Email, u.PasswordHash, u.FirstName, u.LastName, ts, ts)
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}

	u.ID, err = res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user id: %w", err)
	}
	u.CreatedAt, u.UpdatedAt = ts, ts

	slog.InfoContext(ctx, "User created", "id", u.ID, "email", u.Email)
	return u, nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (core.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) GetUserWithAccounts(ctx context.Context, id int64) (core.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return core.User{}, err
	}
	accounts, err := s.ListAccountsByUser(ctx, id)
	if err != nil {
		return core.User{}, err
	}
	u.Accounts = accounts
	return u, nil
}

func (s *SQLiteStore) GetUserWithCategories(ctx context.Context, id int64) (core.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return core.User{}, err
	}
	categories, err := s.ListCategoriesByUser(ctx, id)
	if err != nil {
		return core.User{}, err
	}
	u.Categories = categories
	return u, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]core.User, error) {
	return s.queryUsers(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
}

func (s *SQLiteStore) SearchUsersByName(ctx context.Context, name string) ([]core.User, error) {
	pattern := "%" + name + "%"
	return s.queryUsers(ctx,
		"SELECT "+userColumns+" FROM users WHERE first_name LIKE ? OR last_name LIKE ? ORDER BY id",
		pattern, pattern)
}

func (s *SQLiteStore) queryUsers(ctx context.Context, query string, args ...any) ([]core.User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) UpdateUser(ctx context.Context, id int64, upd core.UserUpdate) (core.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return core.User{}, err
	}

	if upd.Email != nil && *upd.Email != u.Email {
		taken, err := s.exists(ctx, "SELECT 1 FROM users WHERE email = ? AND id != ?", *upd.Email, id)
		if err != nil {
			return core.User{}, err
		}
		if taken {
			return core.User{}, fmt.Errorf("email %q: %w", *upd.Email, ErrConflict)
		}
		u.Email = *upd.Email
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}

	u.UpdatedAt = now()
	_, err = s.db.ExecContext(ctx,
		"UPDATE users SET email = ?, first_name = ?, last_name = ?, updated_at = ? WHERE id = ?",
		u.Email, u.FirstName, u.LastName, u.UpdatedAt, id)
	if err != nil {
		return core.User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}

	// Accounts, categories and, transitively, transactions go with the user.
	slog.InfoContext(ctx, "User deleted", "id", id)
	return nil
}
