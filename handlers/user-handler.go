package handlers

import (
	"net/http"

	"dashboard-project/backend/dashboard-service/models"
	"dashboard-project/backend/dashboard-service/services"

	"github.com/gorilla/mux"
)

type UserHandler struct {
	UserService *services.UserService
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.UserService.List(r.Context()))
}

// UpdateProfile cuva profil prijavljenog korisnika.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	var in services.ProfileInput
	if !decodeJSON(w, r, &in) {
		return
	}
	user, err := h.UserService.UpdateProfile(r.Context(), session, in)
	if err != nil {
		writeWriteError(w, "Failed to update profile", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	var in services.UserInput
	if !decodeJSON(w, r, &in) {
		return
	}
	user, err := h.UserService.CreateUser(r.Context(), session, in)
	if err != nil {
		writeWriteError(w, "Failed to create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	var in services.UserInput
	if !decodeJSON(w, r, &in) {
		return
	}
	user, err := h.UserService.UpdateUser(r.Context(), session, models.ID(mux.Vars(r)["id"]), in)
	if err != nil {
		writeWriteError(w, "Failed to update user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	if err := h.UserService.DeleteUser(r.Context(), session, models.ID(mux.Vars(r)["id"])); err != nil {
		writeWriteError(w, "Failed to delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
