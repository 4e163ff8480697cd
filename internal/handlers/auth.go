package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/notespace-app/notespace/internal/auth"
	"github.com/notespace-app/notespace/internal/store"
)

type AuthHandlers struct {
	*Handlers
	jwt *auth.JWTService
}

func NewAuthHandlers(h *Handlers, jwtService *auth.JWTService) *AuthHandlers {
	return &AuthHandlers{Handlers: h, jwt: jwtService}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" {
		a.error(w, "Name is required", http.StatusBadRequest)
		return
	}
	if !strings.Contains(req.Email, "@") {
		a.error(w, "Invalid email address", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 6 {
		a.error(w, "Password must be at least 6 characters", http.StatusBadRequest)
		return
	}

	hashedPass, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		a.serverError(w, r, err)
		return
	}

	user, err := a.store.CreateUser(r.Context(), req.Name, req.Email, string(hashedPass))
	if err == store.ErrDuplicate {
		a.error(w, "User with this email already exists", http.StatusConflict)
		return
	}
	if err != nil {
		a.serverError(w, r, err)
		return
	}

	a.respond(w, map[string]interface{}{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	}, http.StatusCreated)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		a.error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := a.store.GetUserByEmail(r.Context(), req.Email)
	if err == store.ErrNotFound {
		a.error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		a.serverError(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		a.error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	token, err := a.jwt.GenerateToken(user.ID)
	if err != nil {
		a.serverError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		Expires:  time.Now().Add(auth.TokenTTL),
	})

	a.respond(w, map[string]interface{}{"user": user, "token": token}, http.StatusOK)
}

func (a *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		HttpOnly: true,
		Path:     "/",
		MaxAge:   -1,
	})
	a.respond(w, map[string]bool{"success": true}, http.StatusOK)
}

// Session returns the current user, or {"user": null} for anonymous
// callers. Clients resolve the session here once instead of re-deriving it
// per page.
func (a *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromContext(r.Context())
	if userID == 0 {
		a.respond(w, map[string]interface{}{"user": nil}, http.StatusOK)
		return
	}

	user, err := a.store.GetUser(r.Context(), userID)
	if err == store.ErrNotFound {
		a.respond(w, map[string]interface{}{"user": nil}, http.StatusOK)
		return
	}
	if err != nil {
		a.serverError(w, r, err)
		return
	}

	a.respond(w, map[string]interface{}{"user": user}, http.StatusOK)
}
