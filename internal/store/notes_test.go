package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListNotesOwnershipScoping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, s, "alice@example.com")
	bob := createTestUser(t, s, "bob@example.com")

	createTestNote(t, s, alice, CreateNoteParams{Title: "Alice private", Content: "a"})
	createTestNote(t, s, alice, CreateNoteParams{Title: "Alice public", Content: "a", IsPublic: true})
	createTestNote(t, s, bob, CreateNoteParams{Title: "Bob private", Content: "b"})
	createTestNote(t, s, bob, CreateNoteParams{Title: "Bob public", Content: "b", IsPublic: true})

	page, err := s.ListNotes(ctx, NoteFilter{UserID: &alice}, 1, 9)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	for _, n := range page.Notes {
		assert.Equal(t, alice, n.UserID)
	}

	t.Run("public scope never returns private notes", func(t *testing.T) {
		notes, total, err := s.ListNotesFlat(ctx, NoteFilter{IsPublic: ptr(true)}, 1, 9)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		for _, n := range notes {
			assert.True(t, n.IsPublic)
		}
	})
}

func TestListNotesPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice@example.com")

	for i := 0; i < 10; i++ {
		createTestNote(t, s, alice, CreateNoteParams{Title: fmt.Sprintf("note %d", i), Content: "body"})
	}

	page1, err := s.ListNotes(ctx, NoteFilter{UserID: &alice}, 1, 9)
	require.NoError(t, err)
	assert.Len(t, page1.Notes, 9)
	assert.Equal(t, 10, page1.Total)

	page2, err := s.ListNotes(ctx, NoteFilter{UserID: &alice}, 2, 9)
	require.NoError(t, err)
	assert.Len(t, page2.Notes, 1)
	assert.Equal(t, 10, page2.Total, "total must not depend on the page")

	t.Run("page beyond the last is empty with total unchanged", func(t *testing.T) {
		page9, err := s.ListNotes(ctx, NoteFilter{UserID: &alice}, 9, 9)
		require.NoError(t, err)
		assert.Empty(t, page9.Notes)
		assert.Equal(t, 10, page9.Total)
	})

	t.Run("page below 1 falls back to page 1", func(t *testing.T) {
		page, err := s.ListNotes(ctx, NoteFilter{UserID: &alice}, -3, 9)
		require.NoError(t, err)
		assert.Len(t, page.Notes, 9)
	})
}

func TestListNotesPinnedSplit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice@example.com")

	for i := 0; i < 3; i++ {
		createTestNote(t, s, alice, CreateNoteParams{Title: fmt.Sprintf("pinned %d", i), Content: "p", IsPinned: true})
	}
	for i := 0; i < 5; i++ {
		createTestNote(t, s, alice, CreateNoteParams{Title: fmt.Sprintf("plain %d", i), Content: "u"})
	}

	page, err := s.ListNotes(ctx, NoteFilter{UserID: &alice}, 1, 9)
	require.NoError(t, err)

	assert.Equal(t, 8, page.Total)
	assert.Len(t, page.PinnedNotes, 3)
	assert.Len(t, page.Notes, 5)
	for _, n := range page.Notes {
		assert.False(t, n.IsPinned, "pinned notes must not appear in the paginated section")
	}
	for _, n := range page.PinnedNotes {
		assert.True(t, n.IsPinned)
	}
}

func TestListNotesSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice@example.com")
	bob := createTestUser(t, s, "bob@example.com")

	createTestNote(t, s, alice, CreateNoteParams{Title: "Meeting agenda", Content: "quarterly plan"})
	createTestNote(t, s, alice, CreateNoteParams{Title: "Groceries", Content: "prep for the MEETING"})
	createTestNote(t, s, alice, CreateNoteParams{Title: "Recipes", Content: "pasta"})
	createTestNote(t, s, bob, CreateNoteParams{Title: "Bob meeting", Content: "other"})

	page, err := s.ListNotes(ctx, NoteFilter{UserID: &alice, Search: "meeting"}, 1, 9)
	require.NoError(t, err)

	require.Equal(t, 2, page.Total, "search must match title or content, case-insensitively")
	titles := []string{page.Notes[0].Title, page.Notes[1].Title}
	assert.ElementsMatch(t, []string{"Meeting agenda", "Groceries"}, titles)
}

func TestListNotesOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice@example.com")

	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	older := createTestNote(t, s, alice, CreateNoteParams{Title: "older", Content: "x"})
	newer := createTestNote(t, s, alice, CreateNoteParams{Title: "newer", Content: "x"})
	tieA := createTestNote(t, s, alice, CreateNoteParams{Title: "tie a", Content: "x"})
	tieB := createTestNote(t, s, alice, CreateNoteParams{Title: "tie b", Content: "x"})

	setUpdatedAt(t, s, older.ID, base)
	setUpdatedAt(t, s, newer.ID, base.Add(10*time.Minute))
	setUpdatedAt(t, s, tieA.ID, base.Add(5*time.Minute))
	setUpdatedAt(t, s, tieB.ID, base.Add(5*time.Minute))

	page, err := s.ListNotes(ctx, NoteFilter{UserID: &alice}, 1, 9)
	require.NoError(t, err)
	require.Len(t, page.Notes, 4)

	assert.Equal(t, "newer", page.Notes[0].Title)
	assert.Equal(t, "tie a", page.Notes[1].Title, "equal updated_at must break ties by id ascending")
	assert.Equal(t, "tie b", page.Notes[2].Title)
	assert.Equal(t, "older", page.Notes[3].Title)
}

func TestListNotesCategoryFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice@example.com")

	cat, err := s.CreateCategory(ctx, alice, "Work", nil, nil)
	require.NoError(t, err)

	createTestNote(t, s, alice, CreateNoteParams{Title: "in category", Content: "x", CategoryID: &cat.ID})
	createTestNote(t, s, alice, CreateNoteParams{Title: "uncategorized", Content: "x"})

	page, err := s.ListNotes(ctx, NoteFilter{UserID: &alice, CategoryID: &cat.ID}, 1, 9)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "in category", page.Notes[0].Title)
	require.NotNil(t, page.Notes[0].Category)
	assert.Equal(t, "Work", page.Notes[0].Category.Name)

	t.Run("unknown category matches nothing", func(t *testing.T) {
		page, err := s.ListNotes(ctx, NoteFilter{UserID: &alice, CategoryID: ptr(int64(424242))}, 1, 9)
		require.NoError(t, err)
		assert.Equal(t, 0, page.Total)
		assert.Empty(t, page.Notes)
	})
}

func TestTogglePublicIsAnIdempotentPair(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice@example.com")
	note := createTestNote(t, s, alice, CreateNoteParams{Title: "n", Content: "c"})

	once, err := s.ToggleNotePublic(ctx, note.ID)
	require.NoError(t, err)
	assert.True(t, once.IsPublic)

	twice, err := s.ToggleNotePublic(ctx, once.ID)
	require.NoError(t, err)
	assert.Equal(t, note.IsPublic, twice.IsPublic, "toggling twice must restore the original state")
}

func TestUpdateNote(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice@example.com")

	cat, err := s.CreateCategory(ctx, alice, "Work", nil, nil)
	require.NoError(t, err)
	note := createTestNote(t, s, alice, CreateNoteParams{Title: "before", Content: "body", CategoryID: &cat.ID})

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		updated, err := s.UpdateNote(ctx, note.ID, NoteUpdate{Title: ptr("after")})
		require.NoError(t, err)
		assert.Equal(t, "after", updated.Title)
		assert.Equal(t, "body", updated.Content)
		assert.Equal(t, alice, updated.UserID)
		require.NotNil(t, updated.CategoryID)
	})

	t.Run("detach category", func(t *testing.T) {
		updated, err := s.UpdateNote(ctx, note.ID, NoteUpdate{SetCategory: true})
		require.NoError(t, err)
		assert.Nil(t, updated.CategoryID)
		assert.Nil(t, updated.Category)
	})

	t.Run("missing note is ErrNotFound", func(t *testing.T) {
		_, err := s.UpdateNote(ctx, 424242, NoteUpdate{Title: ptr("x")})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteNote(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice@example.com")
	note := createTestNote(t, s, alice, CreateNoteParams{Title: "n", Content: "c"})

	require.NoError(t, s.DeleteNote(ctx, note.ID))

	_, err := s.GetNote(ctx, note.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteNote(ctx, note.ID), ErrNotFound)
}

func TestNoteViews(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice@example.com")
	note := createTestNote(t, s, alice, CreateNoteParams{Title: "n", Content: "c", IsPublic: true})

	count, err := s.GetNoteViews(ctx, note.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, s.AddNoteViews(ctx, note.ID, 1))
	require.NoError(t, s.AddNoteViews(ctx, note.ID, 4))

	count, err = s.GetNoteViews(ctx, note.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)
}
