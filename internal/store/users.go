package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/notespace-app/notespace/internal/models"
)

// CreateUser inserts a new user. Returns ErrDuplicate when the email is
// already registered; the UNIQUE index on email backstops the check.
func (s *Store) CreateUser(ctx context.Context, name, email, hashedPassword string) (*models.User, error) {
	var exists int
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists > 0 {
		return nil, ErrDuplicate
	}

	now := time.Now().UTC()
	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (name, email, password, created_at) VALUES (?, ?, ?, ?)`,
		name, email, hashedPassword, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &models.User{ID: id, Name: name, Email: email, Password: hashedPassword, CreatedAt: now}, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password, image, created_at FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Image, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password, image, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Image, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetUserImage updates the avatar URL of a user.
func (s *Store) SetUserImage(ctx context.Context, userID int64, url string) error {
	res, err := s.conn.ExecContext(ctx, `UPDATE users SET image = ? WHERE id = ?`, url, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats holds the public instance counters shown on the landing page.
type Stats struct {
	Users       int64 `json:"users"`
	Notes       int64 `json:"notes"`
	PublicNotes int64 `json:"publicNotes"`
}

func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	var st Stats
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&st.Users); err != nil {
		return nil, err
	}
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&st.Notes); err != nil {
		return nil, err
	}
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes WHERE is_public = ?`, true).Scan(&st.PublicNotes); err != nil {
		return nil, err
	}
	return &st, nil
}
