package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"dashboard-project/backend/dashboard-service/logging"
	"dashboard-project/backend/dashboard-service/middleware"
	"dashboard-project/backend/dashboard-service/models"
	"dashboard-project/backend/dashboard-service/permissions"
	"dashboard-project/backend/dashboard-service/repositories"
	"dashboard-project/backend/dashboard-service/services"

	"github.com/sony/gobreaker"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Logger.Errorf("Event ID: RESPONSE_ENCODE_FAILED, Description: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrNotConfirmed), errors.Is(err, permissions.ErrNotPermitted):
		return http.StatusForbidden
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return http.StatusServiceUnavailable
	}
	var backendErr *repositories.BackendError
	if errors.As(err, &backendErr) {
		if services.IsAuthorizationError(err) {
			return http.StatusForbidden
		}
		if backendErr.Status >= 400 && backendErr.Status < 500 {
			return backendErr.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeServiceError answers a failed read or lookup with the error text.
func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

// writeWriteError answers a failed save or delete with the message shown to
// the user, hint included.
func writeWriteError(w http.ResponseWriter, prefix string, err error) {
	writeError(w, statusFor(err), services.DescribeWriteError(prefix, err))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request data")
		return false
	}
	return true
}

func currentSession(w http.ResponseWriter, r *http.Request) (models.Session, bool) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, services.ErrSessionExpired.Error())
	}
	return session, ok
}
