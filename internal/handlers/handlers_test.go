package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	"github.com/notespace-app/notespace/internal/auth"
	"github.com/notespace-app/notespace/internal/handlers"
	"github.com/notespace-app/notespace/internal/store"
	"github.com/notespace-app/notespace/internal/views"
)

type env struct {
	router http.Handler
	store  *store.Store
}

// newEnv builds the full API against an in-memory database, with uploads,
// Redis and AI left unconfigured.
func newEnv(t *testing.T) *env {
	return newEnvWithAI(t, nil)
}

func newEnvWithAI(t *testing.T, ai *openai.Client) *env {
	t.Helper()

	st, err := store.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	log := zerolog.Nop()
	h := handlers.New(st, views.New(nil, st, log), nil, ai, log)
	jwtService := auth.NewJWTService("test-secret")
	a := handlers.NewAuthHandlers(h, jwtService)

	return &env{router: handlers.NewRouter(h, a, jwtService), store: st}
}

func (e *env) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), "body: %s", rec.Body.String())
}

// signup registers a user and returns a session token.
func (e *env) signup(t *testing.T, name, email string) string {
	t.Helper()

	rec := e.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "register: %s", rec.Body.String())

	rec = e.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code, "login: %s", rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

type noteJSON struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"userId"`
	CategoryID *int64 `json:"categoryId"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	IsPublic   bool   `json:"isPublic"`
	IsPinned   bool   `json:"isPinned"`
	Views      int64  `json:"views"`
}

type notesPageJSON struct {
	Notes       []noteJSON `json:"notes"`
	PinnedNotes []noteJSON `json:"pinnedNotes"`
	Total       int        `json:"total"`
	Page        int        `json:"page"`
	PerPage     int        `json:"perPage"`
	TotalPages  int        `json:"totalPages"`
}

func (e *env) createNote(t *testing.T, token string, body map[string]interface{}) noteJSON {
	t.Helper()
	rec := e.request(t, http.MethodPost, "/api/notes", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, "create note: %s", rec.Body.String())
	var n noteJSON
	decode(t, rec, &n)
	return n
}
