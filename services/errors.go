package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"dashboard-project/backend/dashboard-service/permissions"
	"dashboard-project/backend/dashboard-service/repositories"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrForbidden          = errors.New("you do not have permission to perform this action")
	ErrNotConfirmed       = errors.New("write not confirmed")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionExpired     = errors.New("session expired")
)

const permissionHint = "check that you have permission to modify this record"

// Codes the record store uses for "no visible row" and "insufficient
// privilege".
var authorizationCodes = map[string]bool{
	"PGRST116": true,
	"42501":    true,
}

func notConfirmed(entity string) error {
	return fmt.Errorf("%w: you do not have permission to modify this %s", ErrNotConfirmed, entity)
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// IsAuthorizationError reports whether err looks like the record store or
// this service refusing the caller.
func IsAuthorizationError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotConfirmed) || errors.Is(err, permissions.ErrNotPermitted) {
		return true
	}
	var backendErr *repositories.BackendError
	if errors.As(err, &backendErr) {
		if authorizationCodes[backendErr.Code] {
			return true
		}
		if backendErr.Status == http.StatusUnauthorized || backendErr.Status == http.StatusForbidden {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "permission") || strings.Contains(msg, "policy")
}

// DescribeWriteError builds the message shown to the user after a failed
// write. Backend errors contribute message, details or hint, in that order.
func DescribeWriteError(prefix string, err error) string {
	detail := "unknown error"
	var backendErr *repositories.BackendError
	switch {
	case errors.As(err, &backendErr):
		for _, candidate := range []string{backendErr.Message, backendErr.Details, backendErr.Hint} {
			if candidate != "" {
				detail = candidate
				break
			}
		}
	case err != nil && err.Error() != "":
		detail = err.Error()
	}

	msg := prefix + ": " + detail
	if IsAuthorizationError(err) {
		msg += " (" + permissionHint + ")"
	}
	return msg
}
