package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/soundjury/soundjury/internal/ctxkeys"
	"github.com/soundjury/soundjury/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{
		auth: auth,
	}
}

// Signup registers a participant and signs them in.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Country string `json:"country"`
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Name == "" {
		respondError(w, http.StatusUnprocessableEntity, "Email and name are required")
		return
	}

	user, err := h.auth.Signup(req.Email, req.Name, req.Country)
	if err != nil {
		slog.Error("failed to sign up user", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to sign up")
		return
	}

	token, err := h.auth.GenerateJWT(user.ID)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "Failed to sign up")
		return
	}
	h.auth.SetJWTCookie(w, token)

	respondJSON(w, http.StatusCreated, map[string]string{"id": user.ID})
}

// Me returns the current actor.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	respondJSON(w, http.StatusOK, map[string]string{
		"id":    user.ID,
		"email": user.Email,
	})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.ClearJWTCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
