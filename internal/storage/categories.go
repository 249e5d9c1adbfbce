package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

const categoryColumns = "id, user_id, name, type, color, icon, created_at"

func scanCategory(row rowScanner) (core.Category, error) {
	var c core.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Color, &c.Icon, &c.CreatedAt)
	if err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func (s *SQLiteStore) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.Normalize()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	userExists, err := s.exists(ctx, "SELECT 1 FROM users WHERE id = ?", c.UserID)
	if err != nil {
		return core.Category{}, err
	}
	if !userExists {
		return core.Category{}, fmt.Errorf("user %d: %w", c.UserID, ErrRefNotFound)
	}

	taken, err := s.exists(ctx, "SELECT 1 FROM categories WHERE user_id = ? AND name = ?", c.UserID, c.Name)
	if err != nil {
		return core.Category{}, err
	}
	if taken {
		return core.Category{}, fmt.Errorf("category name %q: %w", c.Name, ErrConflict)
	}

	ts := now()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (user_id, name, type, color, icon, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		c.UserID, c.Name, c.Type, c.Color, c.Icon, ts)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}

	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	c.CreatedAt = ts

	slog.InfoContext(ctx, "Category created", "id", c.ID, "user_id", c.UserID, "name", c.Name, "type", c.Type)
	return c, nil
}

func (s *SQLiteStore) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) GetCategoryWithTransactions(ctx context.Context, id int64) (core.Category, error) {
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	txs, err := s.queryTransactions(ctx,
		transactionSelect+" WHERE t.category_id = ? ORDER BY t.transaction_date DESC, t.id DESC", id)
	if err != nil {
		return core.Category{}, err
	}
	c.Transactions = txs
	return c, nil
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.queryCategories(ctx, "SELECT "+categoryColumns+" FROM categories ORDER BY id")
}

func (s *SQLiteStore) ListCategoriesByUser(ctx context.Context, userID int64) ([]core.Category, error) {
	return s.queryCategories(ctx, "SELECT "+categoryColumns+" FROM categories WHERE user_id = ? ORDER BY id", userID)
}

func (s *SQLiteStore) ListCategoriesByType(ctx context.Context, userID int64, t core.CategoryType) ([]core.Category, error) {
	return s.queryCategories(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE user_id = ? AND type = ? ORDER BY id", userID, t)
}

func (s *SQLiteStore) SearchCategoriesByName(ctx context.Context, userID int64, name string) ([]core.Category, error) {
	return s.queryCategories(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE user_id = ? AND name LIKE ? ORDER BY id",
		userID, "%"+name+"%")
}

func (s *SQLiteStore) CountCategoriesByType(ctx context.Context, userID int64, t core.CategoryType) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE user_id = ? AND type = ?", userID, t).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) queryCategories(ctx context.Context, query string, args ...any) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *SQLiteStore) UpdateCategory(ctx context.Context, id int64, upd core.CategoryUpdate) (core.Category, error) {
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}

	if upd.Name != nil && *upd.Name != c.Name {
		taken, err := s.exists(ctx,
			"SELECT 1 FROM categories WHERE user_id = ? AND name = ? AND id != ?", c.UserID, *upd.Name, id)
		if err != nil {
			return core.Category{}, err
		}
		if taken {
			return core.Category{}, fmt.Errorf("category name %q: %w", *upd.Name, ErrConflict)
		}
		c.Name = *upd.Name
	}
	if upd.Type != nil {
		c.Type = *upd.Type
	}
	if upd.Color != nil {
		c.Color = *upd.Color
	}
	if upd.Icon != nil {
		c.Icon = *upd.Icon
	}
	c.Normalize()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, type = ?, color = ?, icon = ? WHERE id = ?",
		c.Name, c.Type, c.Color, c.Icon, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category %d: %w", id, ErrNotFound)
	}

	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}
