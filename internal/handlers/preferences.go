package handlers

import (
	"encoding/json"
	"net/http"

	applog "kaleido/internal/log"
	"kaleido/internal/theme"
)

// themePreferenceResponse is the wire shape for the theme preference
// endpoints. CustomColors is present only when the stored theme is custom.
type themePreferenceResponse struct {
	Theme        theme.Name    `json:"theme"`
	CustomColors *theme.Colors `json:"customColors,omitempty"`
}

// ThemePreference serves GET and PUT for the signed-in user's theme
// preference.
func ThemePreference(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		getThemePreference(w, r)
	case http.MethodPut:
		putThemePreference(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func getThemePreference(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "loading theme preference")

	user, err := loadCurrentUser(r)
	if err != nil {
		applog.Error(r.Context(), "failed to load user for theme preference", "error", err)
		writeError(w, http.StatusInternalServerError, "unable to load preferences")
		return
	}

	resp := themePreferenceResponse{Theme: theme.Normalize(user.ThemePreference)}
	if !theme.Known(resp.Theme) {
		applog.Debug(r.Context(), "stored theme unknown, serving default", "stored", user.ThemePreference)
		resp.Theme = theme.DefaultName
	}

	if resp.Theme == theme.Custom && user.CustomThemeColors != "" {
		colors := &theme.Colors{}
		if err := json.Unmarshal([]byte(user.CustomThemeColors), colors); err != nil {
			applog.Debug(r.Context(), "stored custom palette unparsable, serving default", "error", err)
			resp.Theme = theme.DefaultName
		} else {
			resp.CustomColors = colors
		}
	}

	applog.Debug(r.Context(), "serving theme preference", "userID", user.ID, "theme", resp.Theme)
	writeJSON(w, http.StatusOK, resp)
}

func putThemePreference(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "updating theme preference")

	var req themePreferenceResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		applog.Debug(r.Context(), "failed to decode theme preference payload", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := theme.Normalize(string(req.Theme))
	if !theme.Known(name) {
		applog.Debug(r.Context(), "rejecting unknown theme", "theme", req.Theme)
		writeError(w, http.StatusBadRequest, "unknown theme")
		return
	}

	customJSON := ""
	if name == theme.Custom {
		if req.CustomColors == nil {
			writeError(w, http.StatusBadRequest, "custom theme requires customColors")
			return
		}
		if err := req.CustomColors.Validate(); err != nil {
			applog.Debug(r.Context(), "rejecting invalid custom palette", "error", err)
			writeError(w, http.StatusBadRequest, "invalid custom theme colors")
			return
		}
		encoded, err := json.Marshal(req.CustomColors)
		if err != nil {
			applog.Error(r.Context(), "failed to encode custom palette", "error", err)
			writeError(w, http.StatusInternalServerError, "unable to save preferences")
			return
		}
		customJSON = string(encoded)
	}

	user, err := loadCurrentUser(r)
	if err != nil {
		applog.Error(r.Context(), "failed to load user for theme update", "error", err)
		writeError(w, http.StatusInternalServerError, "unable to save preferences")
		return
	}

	user.ThemePreference = string(name)
	user.CustomThemeColors = customJSON
	if err := database.WithContext(r.Context()).Model(user).Select("theme_preference", "custom_theme_colors").Updates(user).Error; err != nil {
		applog.Error(r.Context(), "failed to persist theme preference", "error", err)
		writeError(w, http.StatusInternalServerError, "unable to save preferences")
		return
	}

	applog.Debug(r.Context(), "theme preference saved", "userID", user.ID, "theme", name, "hasCustom", customJSON != "")

	resp := themePreferenceResponse{Theme: name}
	if customJSON != "" {
		resp.CustomColors = req.CustomColors
	}
	writeJSON(w, http.StatusOK, resp)
}
