package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/notespace-app/notespace/internal/models"
)

// NoteFilter describes one listing query. Nil fields are not filtered on.
// All set fields are combined with AND. UserID scopes the query to an
// owner; leaving it nil is only valid together with IsPublic=true.
type NoteFilter struct {
	UserID     *int64
	Search     string
	CategoryID *int64
	IsPublic   *bool
	IsPinned   *bool
}

// predicate builds the WHERE clause for the filter. The pinned flag is
// excluded when includePinned is false so the pinned/unpinned split queries
// can append their own is_pinned condition.
func (f NoteFilter) predicate(includePinned bool) ([]string, []interface{}) {
	where := []string{"1 = 1"}
	args := []interface{}{}

	if f.UserID != nil {
		where = append(where, "n.user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.Search != "" {
		where = append(where, "(LOWER(n.title) LIKE ? OR LOWER(n.content) LIKE ?)")
		term := "%" + strings.ToLower(f.Search) + "%"
		args = append(args, term, term)
	}
	if f.CategoryID != nil {
		where = append(where, "n.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.IsPublic != nil {
		where = append(where, "n.is_public = ?")
		args = append(args, *f.IsPublic)
	}
	if includePinned && f.IsPinned != nil {
		where = append(where, "n.is_pinned = ?")
		args = append(args, *f.IsPinned)
	}

	return where, args
}

// NotePage is one page of a filtered listing. Total counts the whole
// filtered set independent of the page; PinnedNotes is unbounded and
// excluded from the paginated Notes slice.
type NotePage struct {
	Notes       []models.Note
	PinnedNotes []models.Note
	Total       int
}

const noteColumns = `n.id, n.user_id, n.category_id, n.title, n.content,
	n.is_public, n.is_pinned, n.created_at, n.updated_at,
	c.id, c.name, c.color, u.name`

// noteOrder keeps pagination stable: ties on updated_at break by id.
const noteOrder = "ORDER BY n.updated_at DESC, n.id ASC"

// ListNotes returns one page of notes matching the filter, plus all pinned
// notes under the same predicate. Pages are 1-based; out-of-range pages
// yield an empty slice with Total still correct.
func (s *Store) ListNotes(ctx context.Context, f NoteFilter, page, perPage int) (*NotePage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 9
	}
	offset := (page - 1) * perPage

	fullWhere, fullArgs := f.predicate(true)
	var total int
	err := s.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notes n WHERE "+strings.Join(fullWhere, " AND "), fullArgs...).
		Scan(&total)
	if err != nil {
		return nil, err
	}

	where, args := f.predicate(false)
	whereClause := strings.Join(where, " AND ")

	pinned, err := s.selectNotes(ctx,
		whereClause+" AND n.is_pinned = ?", append(append([]interface{}{}, args...), true), "")
	if err != nil {
		return nil, err
	}

	notes, err := s.selectNotes(ctx,
		whereClause+" AND n.is_pinned = ?",
		append(append(append([]interface{}{}, args...), false), perPage, offset),
		"LIMIT ? OFFSET ?")
	if err != nil {
		return nil, err
	}

	return &NotePage{Notes: notes, PinnedNotes: pinned, Total: total}, nil
}

// ListNotesFlat returns one page matching the filter without the pinned
// split. Used by the public listing and category views, where pinning has
// no special display.
func (s *Store) ListNotesFlat(ctx context.Context, f NoteFilter, page, perPage int) ([]models.Note, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 9
	}

	where, args := f.predicate(true)
	whereClause := strings.Join(where, " AND ")

	var total int
	err := s.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notes n WHERE "+whereClause, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	notes, err := s.selectNotes(ctx, whereClause,
		append(append([]interface{}{}, args...), perPage, (page-1)*perPage),
		"LIMIT ? OFFSET ?")
	if err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

func (s *Store) selectNotes(ctx context.Context, whereClause string, args []interface{}, limitClause string) ([]models.Note, error) {
	query := "SELECT " + noteColumns + ` FROM notes n
		LEFT JOIN categories c ON c.id = n.category_id
		LEFT JOIN users u ON u.id = n.user_id
		WHERE ` + whereClause + " " + noteOrder + " " + limitClause
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNote(row rowScanner) (*models.Note, error) {
	var n models.Note
	var catID sql.NullInt64
	var catName, author sql.NullString
	var catColor *string
	err := row.Scan(&n.ID, &n.UserID, &n.CategoryID, &n.Title, &n.Content,
		&n.IsPublic, &n.IsPinned, &n.CreatedAt, &n.UpdatedAt,
		&catID, &catName, &catColor, &author)
	if err != nil {
		return nil, err
	}
	if catID.Valid {
		n.Category = &models.CategoryRef{ID: catID.Int64, Name: catName.String, Color: catColor}
	}
	n.Author = author.String
	return &n, nil
}

// GetNote fetches a single note with its category and author. Visibility is
// the caller's concern; this returns private notes too.
func (s *Store) GetNote(ctx context.Context, id int64) (*models.Note, error) {
	row := s.conn.QueryRowContext(ctx,
		"SELECT "+noteColumns+` FROM notes n
		LEFT JOIN categories c ON c.id = n.category_id
		LEFT JOIN users u ON u.id = n.user_id
		WHERE n.id = ?`, id)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

type CreateNoteParams struct {
	Title      string
	Content    string
	IsPublic   bool
	IsPinned   bool
	CategoryID *int64
}

func (s *Store) CreateNote(ctx context.Context, userID int64, p CreateNoteParams) (*models.Note, error) {
	now := time.Now().UTC()
	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO notes (user_id, category_id, title, content, is_public, is_pinned, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, p.CategoryID, p.Title, p.Content, p.IsPublic, p.IsPinned, now, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetNote(ctx, id)
}

// NoteUpdate carries a partial update. Nil fields are left untouched.
// SetCategory distinguishes "detach the category" (true with nil CategoryID)
// from "leave it alone" (false).
type NoteUpdate struct {
	Title       *string
	Content     *string
	IsPublic    *bool
	IsPinned    *bool
	CategoryID  *int64
	SetCategory bool
}

// UpdateNote applies a partial update. The owner column is never part of
// the SET clause: a note's owner is immutable.
func (s *Store) UpdateNote(ctx context.Context, id int64, upd NoteUpdate) (*models.Note, error) {
	set := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}

	if upd.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Content != nil {
		set = append(set, "content = ?")
		args = append(args, *upd.Content)
	}
	if upd.IsPublic != nil {
		set = append(set, "is_public = ?")
		args = append(args, *upd.IsPublic)
	}
	if upd.IsPinned != nil {
		set = append(set, "is_pinned = ?")
		args = append(args, *upd.IsPinned)
	}
	if upd.SetCategory {
		set = append(set, "category_id = ?")
		args = append(args, upd.CategoryID)
	}

	args = append(args, id)
	res, err := s.conn.ExecContext(ctx,
		"UPDATE notes SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetNote(ctx, id)
}

func (s *Store) DeleteNote(ctx context.Context, id int64) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleNotePublic flips the is_public flag and returns the updated note.
func (s *Store) ToggleNotePublic(ctx context.Context, id int64) (*models.Note, error) {
	n, err := s.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	flipped := !n.IsPublic
	return s.UpdateNote(ctx, id, NoteUpdate{IsPublic: &flipped})
}

// ToggleNotePinned flips the is_pinned flag and returns the updated note.
func (s *Store) ToggleNotePinned(ctx context.Context, id int64) (*models.Note, error) {
	n, err := s.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	flipped := !n.IsPinned
	return s.UpdateNote(ctx, id, NoteUpdate{IsPinned: &flipped})
}

// AddNoteViews adds delta to the persisted view counter for a note.
func (s *Store) AddNoteViews(ctx context.Context, noteID, delta int64) error {
	var query string
	if s.driver == "mysql" {
		query = `INSERT INTO note_views (note_id, count) VALUES (?, ?)
			ON DUPLICATE KEY UPDATE count = count + VALUES(count)`
	} else {
		query = `INSERT INTO note_views (note_id, count) VALUES (?, ?)
			ON CONFLICT(note_id) DO UPDATE SET count = count + excluded.count`
	}
	_, err := s.conn.ExecContext(ctx, query, noteID, delta)
	return err
}

// GetNoteViews returns the persisted view counter; missing rows count as 0.
func (s *Store) GetNoteViews(ctx context.Context, noteID int64) (int64, error) {
	var count int64
	err := s.conn.QueryRowContext(ctx, `SELECT count FROM note_views WHERE note_id = ?`, noteID).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}
