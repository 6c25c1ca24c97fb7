package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	applog "kaleido/internal/log"
	"kaleido/internal/validate"
	"kaleido/models"
)

const shareTokenLifetime = 30 * 24 * time.Hour

type dashboardRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Layout      json.RawMessage `json:"layout"`
}

type dashboardResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Layout      json.RawMessage `json:"layout,omitempty"`
	IsPublic    bool            `json:"isPublic"`
	PublicToken string          `json:"publicToken,omitempty"`
	ExpiresAt   *time.Time      `json:"publicTokenExpiresAt,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func dashboardToResponse(d *models.Dashboard, includeShare bool) dashboardResponse {
	resp := dashboardResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		IsPublic:    d.IsPublic,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.Layout != "" {
		resp.Layout = json.RawMessage(d.Layout)
	}
	if includeShare && d.ShareActive(time.Now()) {
		resp.PublicToken = d.PublicToken
		resp.ExpiresAt = d.PublicTokenExpiresAt
	}
	return resp
}

// Dashboards routes /api/dashboards and /api/dashboards/{id}[/share].
func Dashboards(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/dashboards"), "/")

	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			listDashboards(w, r)
		case http.MethodPost:
			createDashboard(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	parts := strings.Split(rest, "/")
	id, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		writeError(w, http.StatusNotFound, "dashboard not found")
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			getDashboard(w, r, uint(id))
		case http.MethodPut:
			updateDashboard(w, r, uint(id))
		case http.MethodDelete:
			deleteDashboard(w, r, uint(id))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if len(parts) == 2 && parts[1] == "share" {
		switch r.Method {
		case http.MethodPost:
			shareDashboard(w, r, uint(id))
		case http.MethodDelete:
			unshareDashboard(w, r, uint(id))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	writeError(w, http.StatusNotFound, "dashboard not found")
}

func ownedDashboard(r *http.Request, id uint) (*models.Dashboard, error) {
	ownerID, ok := currentUserID(r)
	if !ok {
		return nil, errInvalidCredentials
	}
	dashboard := &models.Dashboard{}
	err := database.WithContext(r.Context()).Where("id = ? AND owner_id = ?", id, ownerID).First(dashboard).Error
	if err != nil {
		return nil, err
	}
	return dashboard, nil
}

func listDashboards(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dashboards []models.Dashboard
	err := database.WithContext(r.Context()).Where("owner_id = ?", ownerID).Order("updated_at DESC").Find(&dashboards).Error
	if err != nil {
		applog.Error(r.Context(), "failed to list dashboards", "error", err)
		writeError(w, http.StatusInternalServerError, "unable to load dashboards")
		return
	}

	applog.Debug(r.Context(), "listing dashboards", "ownerID", ownerID, "count", len(dashboards))

	responses := make([]dashboardResponse, 0, len(dashboards))
	for i := range dashboards {
		resp := dashboardToResponse(&dashboards[i], true)
		resp.Layout = nil
		responses = append(responses, resp)
	}
	writeJSON(w, http.StatusOK, responses)
}

func createDashboard(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req dashboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validate.IsValidDatasetName(req.Name) {
		applog.Debug(r.Context(), "rejecting dashboard name", "name", req.Name)
		writeError(w, http.StatusBadRequest, "dashboard name must be between 3 and 255 characters")
		return
	}

	dashboard := &models.Dashboard{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Layout:      string(req.Layout),
		OwnerID:     ownerID,
	}
	if err := database.WithContext(r.Context()).Create(dashboard).Error; err != nil {
		applog.Error(r.Context(), "failed to create dashboard", "error", err)
		writeError(w, http.StatusInternalServerError, "unable to create dashboard")
		return
	}

	applog.Debug(r.Context(), "dashboard created", "dashboardID", dashboard.ID, "ownerID", ownerID)
	writeJSON(w, http.StatusCreated, dashboardToResponse(dashboard, true))
}

func getDashboard(w http.ResponseWriter, r *http.Request, id uint) {
	dashboard, err := ownedDashboard(r, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, errInvalidCredentials) {
			writeError(w, http.StatusNotFound, "dashboard not found")
			return
		}
		applog.Error(r.Context(), "failed to load dashboard", "error", err, "dashboardID", id)
		writeError(w, http.StatusInternalServerError, "unable to load dashboard")
		return
	}
	writeJSON(w, http.StatusOK, dashboardToResponse(dashboard, true))
}

func updateDashboard(w http.ResponseWriter, r *http.Request, id uint) {
	dashboard, err := ownedDashboard(r, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, errInvalidCredentials) {
			writeError(w, http.StatusNotFound, "dashboard not found")
			return
		}
		applog.Error(r.Context(), "failed to load dashboard for update", "error", err, "dashboardID", id)
		writeError(w, http.StatusInternalServerError, "unable to update dashboard")
		return
	}

	var req dashboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validate.IsValidDatasetName(req.Name) {
		writeError(w, http.StatusBadRequest, "dashboard name must be between 3 and 255 characters")
		return
	}

	dashboard.Name = strings.TrimSpace(req.Name)
	dashboard.Description = req.Description
	if req.Layout != nil {
		dashboard.Layout = string(req.Layout)
	}
	if err := database.WithContext(r.Context()).Save(dashboard).Error; err != nil {
		applog.Error(r.Context(), "failed to save dashboard", "error", err, "dashboardID", id)
		writeError(w, http.StatusInternalServerError, "unable to update dashboard")
		return
	}

	applog.Debug(r.Context(), "dashboard updated", "dashboardID", dashboard.ID)
	writeJSON(w, http.StatusOK, dashboardToResponse(dashboard, true))
}

func deleteDashboard(w http.ResponseWriter, r *http.Request, id uint) {
	dashboard, err := ownedDashboard(r, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, errInvalidCredentials) {
			writeError(w, http.StatusNotFound, "dashboard not found")
			return
		}
		applog.Error(r.Context(), "failed to load dashboard for deletion", "error", err, "dashboardID", id)
		writeError(w, http.StatusInternalServerError, "unable to delete dashboard")
		return
	}

	if err := database.WithContext(r.Context()).Delete(dashboard).Error; err != nil {
		applog.Error(r.Context(), "failed to delete dashboard", "error", err, "dashboardID", id)
		writeError(w, http.StatusInternalServerError, "unable to delete dashboard")
		return
	}

	applog.Debug(r.Context(), "dashboard deleted", "dashboardID", id)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func shareDashboard(w http.ResponseWriter, r *http.Request, id uint) {
	dashboard, err := ownedDashboard(r, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, errInvalidCredentials) {
			writeError(w, http.StatusNotFound, "dashboard not found")
			return
		}
		applog.Error(r.Context(), "failed to load dashboard for sharing", "error", err, "dashboardID", id)
		writeError(w, http.StatusInternalServerError, "unable to share dashboard")
		return
	}

	// Re-sharing rotates the token.
	expires := time.Now().Add(shareTokenLifetime)
	dashboard.IsPublic = true
	dashboard.PublicToken = uuid.NewString()
	dashboard.PublicTokenExpiresAt = &expires
	if err := database.WithContext(r.Context()).Save(dashboard).Error; err != nil {
		applog.Error(r.Context(), "failed to persist share token", "error", err, "dashboardID", id)
		writeError(w, http.StatusInternalServerError, "unable to share dashboard")
		return
	}

	applog.Debug(r.Context(), "dashboard shared", "dashboardID", id, "expires", expires)
	writeJSON(w, http.StatusOK, dashboardToResponse(dashboard, true))
}

func unshareDashboard(w http.ResponseWriter, r *http.Request, id uint) {
	dashboard, err := ownedDashboard(r, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, errInvalidCredentials) {
			writeError(w, http.StatusNotFound, "dashboard not found")
			return
		}
		applog.Error(r.Context(), "failed to load dashboard for unsharing", "error", err, "dashboardID", id)
		writeError(w, http.StatusInternalServerError, "unable to revoke sharing")
		return
	}

	dashboard.IsPublic = false
	dashboard.PublicToken = ""
	dashboard.PublicTokenExpiresAt = nil
	err = database.WithContext(r.Context()).Model(dashboard).
		Select("is_public", "public_token", "public_token_expires_at").
		Updates(map[string]interface{}{"is_public": false, "public_token": "", "public_token_expires_at": nil}).Error
	if err != nil {
		applog.Error(r.Context(), "failed to revoke share token", "error", err, "dashboardID", id)
		writeError(w, http.StatusInternalServerError, "unable to revoke sharing")
		return
	}

	applog.Debug(r.Context(), "dashboard sharing revoked", "dashboardID", id)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// PublicDashboard serves GET /api/dashboards/public/{token} without
// authentication.
func PublicDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	token := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/dashboards/public"), "/")
	if token == "" {
		writeError(w, http.StatusNotFound, "dashboard not found")
		return
	}

	dashboard := &models.Dashboard{}
	err := database.WithContext(r.Context()).Where("public_token = ?", token).First(dashboard).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "dashboard not found")
			return
		}
		applog.Error(r.Context(), "failed to load public dashboard", "error", err)
		writeError(w, http.StatusInternalServerError, "unable to load dashboard")
		return
	}

	if !dashboard.ShareActive(time.Now()) {
		applog.Debug(r.Context(), "rejecting expired or revoked share token", "dashboardID", dashboard.ID)
		writeError(w, http.StatusNotFound, "dashboard not found")
		return
	}

	err = database.WithContext(r.Context()).Model(dashboard).
		UpdateColumn("public_access_count", gorm.Expr("public_access_count + 1")).Error
	if err != nil {
		applog.Error(r.Context(), "failed to record public access", "error", err, "dashboardID", dashboard.ID)
	}

	applog.Debug(r.Context(), "serving public dashboard", "dashboardID", dashboard.ID)
	writeJSON(w, http.StatusOK, dashboardToResponse(dashboard, false))
}
