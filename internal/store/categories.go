package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/notespace-app/notespace/internal/models"
)

// ListCategories returns the user's categories ordered by name, each with
// the number of notes currently attached to it.
func (s *Store) ListCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT c.id, c.user_id, c.name, c.description, c.color, c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM notes n WHERE n.category_id = c.id) AS note_count
		FROM categories c
		WHERE c.user_id = ?
		ORDER BY c.name ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.Color,
			&c.CreatedAt, &c.UpdatedAt, &c.NoteCount); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	err := s.conn.QueryRowContext(ctx,
		`SELECT c.id, c.user_id, c.name, c.description, c.color, c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM notes n WHERE n.category_id = c.id) AS note_count
		FROM categories c WHERE c.id = ?`, id).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.Color, &c.CreatedAt, &c.UpdatedAt, &c.NoteCount)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// categoryNameTaken reports whether the user already has a category with
// this name, excluding excludeID (0 to exclude nothing). Name comparison is
// case-sensitive.
func (s *Store) categoryNameTaken(ctx context.Context, userID int64, name string, excludeID int64) (bool, error) {
	var count int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE user_id = ? AND name = ? AND id != ?`,
		userID, name, excludeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateCategory inserts a new category. Returns ErrDuplicate when the user
// already has a category with the same name; the UNIQUE(user_id, name)
// index backstops the check against concurrent creates.
func (s *Store) CreateCategory(ctx context.Context, userID int64, name string, description, color *string) (*models.Category, error) {
	taken, err := s.categoryNameTaken(ctx, userID, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicate
	}

	now := time.Now().UTC()
	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, description, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, name, description, color, now, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetCategory(ctx, id)
}

// CategoryUpdate carries a partial category update. Nil fields are left
// untouched except Description and Color, which follow SetDescription and
// SetColor so they can be cleared explicitly.
type CategoryUpdate struct {
	Name           *string
	Description    *string
	SetDescription bool
	Color          *string
	SetColor       bool
}

// UpdateCategory applies a partial update. A rename to a name already used
// by another of the owner's categories returns ErrDuplicate.
func (s *Store) UpdateCategory(ctx context.Context, id int64, upd CategoryUpdate) (*models.Category, error) {
	current, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil && *upd.Name != current.Name {
		taken, err := s.categoryNameTaken(ctx, current.UserID, *upd.Name, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrDuplicate
		}
	}

	set := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}
	if upd.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.SetDescription {
		set = append(set, "description = ?")
		args = append(args, upd.Description)
	}
	if upd.SetColor {
		set = append(set, "color = ?")
		args = append(args, upd.Color)
	}

	args = append(args, id)
	query := "UPDATE categories SET " + strings.Join(set, ", ") + " WHERE id = ?"
	if _, err := s.conn.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}
	return s.GetCategory(ctx, id)
}

// DeleteCategory removes a category. Its notes are detached, never deleted:
// their category_id is set to NULL in the same transaction.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE notes SET category_id = NULL WHERE category_id = ?`, id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}
