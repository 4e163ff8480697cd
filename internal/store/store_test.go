package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/notespace-app/notespace/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *Store, email string) int64 {
	t.Helper()
	u, err := s.CreateUser(context.Background(), "Test User", email, "hashed")
	require.NoError(t, err)
	return u.ID
}

func createTestNote(t *testing.T, s *Store, userID int64, p CreateNoteParams) *models.Note {
	t.Helper()
	n, err := s.CreateNote(context.Background(), userID, p)
	require.NoError(t, err)
	return n
}

// setUpdatedAt pins a note's updated_at so ordering tests do not depend on
// wall-clock resolution.
func setUpdatedAt(t *testing.T, s *Store, noteID int64, ts time.Time) {
	t.Helper()
	_, err := s.conn.Exec(`UPDATE notes SET updated_at = ? WHERE id = ?`, ts, noteID)
	require.NoError(t, err)
}

func ptr[T any](v T) *T {
	return &v
}
