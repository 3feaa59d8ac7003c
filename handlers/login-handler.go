package handlers

import (
	"net/http"
	"time"

	"dashboard-project/backend/dashboard-service/models"
	"dashboard-project/backend/dashboard-service/services"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string      `json:"access_token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

type LoginHandler struct {
	Auth *services.AuthService
}

// Funkcija za prijavu korisnika
func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      session.Profile,
	})
}

func (h *LoginHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	h.Auth.SignOut(session.ID)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the profile of the signed-in user, reread from the store.
func (h *LoginHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	profile, err := h.Auth.RefreshProfile(r.Context(), session)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
