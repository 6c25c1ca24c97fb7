package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	applog "kaleido/internal/log"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup processes new registrations and signs the user in.
func Signup(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "handling signup request", "method", r.Method)

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if sessionManager == nil || database == nil {
		applog.Debug(r.Context(), "registration dependencies unavailable", "hasSession", sessionManager != nil, "hasDatabase", database != nil)
		writeError(w, http.StatusServiceUnavailable, "registration not available")
		return
	}

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		applog.Debug(r.Context(), "failed to decode signup payload", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		applog.Debug(r.Context(), "invalid signup email", "email", email)
		writeError(w, http.StatusBadRequest, "a valid email address is required")
		return
	}
	if len(req.Password) < 8 {
		applog.Debug(r.Context(), "password too short for signup", "length", len(req.Password))
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters long")
		return
	}

	if _, err := findUserByEmail(r, email); err == nil {
		applog.Debug(r.Context(), "signup attempted with existing email", "email", strings.ToLower(email))
		writeError(w, http.StatusConflict, "an account with that email already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		applog.Error(r.Context(), "failed to check existing user", "error", err)
		writeError(w, http.StatusInternalServerError, "unable to create account")
		return
	}

	user, err := createUser(r, email, req.Name, req.Password)
	if err != nil {
		applog.Error(r.Context(), "failed to create user", "error", err)
		writeError(w, http.StatusInternalServerError, "unable to create account")
		return
	}

	applog.Debug(r.Context(), "user created via signup", "userID", user.ID, "email", user.Email)

	if err := establishSession(r, user); err != nil {
		applog.Error(r.Context(), "failed to establish session after signup", "error", err)
		writeError(w, http.StatusInternalServerError, "account created but sign-in failed")
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}
