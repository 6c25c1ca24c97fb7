package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	applog "kaleido/internal/log"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Login processes sign-in submissions and establishes a session.
func Login(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "handling login request", "method", r.Method)

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if sessionManager == nil || database == nil {
		applog.Debug(r.Context(), "authentication dependencies unavailable", "hasSession", sessionManager != nil, "hasDatabase", database != nil)
		writeError(w, http.StatusServiceUnavailable, "authentication not available")
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		applog.Debug(r.Context(), "failed to decode login payload", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		applog.Debug(r.Context(), "login payload missing credentials", "emailPresent", email != "")
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := authenticate(r, email, req.Password)
	if err != nil {
		if errors.Is(err, errInvalidCredentials) {
			applog.Debug(r.Context(), "authentication failed", "email", strings.ToLower(email))
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "unable to sign in")
		return
	}

	applog.Debug(r.Context(), "authentication succeeded", "email", user.Email)
	writeJSON(w, http.StatusOK, userResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}
