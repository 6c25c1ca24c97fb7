package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"

	"kaleido/internal/theme"
	"kaleido/models"
)

// seedSignedInUser persists a user and returns a request factory whose
// requests carry that user's session.
func seedSignedInUser(t *testing.T, sm *scs.SessionManager, user *models.User) func(method, target, body string) *http.Request {
	t.Helper()
	if err := database.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return func(method, target, body string) *http.Request {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, target, nil)
		} else {
			req = httptest.NewRequest(method, target, strings.NewReader(body))
		}
		ctx, err := sm.Load(req.Context(), "")
		if err != nil {
			t.Fatalf("failed to load session context: %v", err)
		}
		req = req.WithContext(ctx)
		sm.Put(req.Context(), sessionAuthenticatedKey, true)
		sm.Put(req.Context(), sessionUserIDKey, int(user.ID))
		return req
	}
}

func validPalette(t *testing.T) theme.Colors {
	t.Helper()
	preset, ok := theme.Preset(theme.Ocean)
	if !ok {
		t.Fatal("ocean preset missing from catalog")
	}
	colors := preset.Colors
	colors.BgPrimary = "#101828"
	return colors
}

func TestGetThemePreferenceDefaults(t *testing.T) {
	sm, smCleanup := withTestSessionManager(t)
	t.Cleanup(smCleanup)
	_, dbCleanup := withTestDatabase(t)
	t.Cleanup(dbCleanup)

	newRequest := seedSignedInUser(t, sm, &models.User{Email: "fresh@example.com", PasswordHash: "x"})

	w := httptest.NewRecorder()
	ThemePreference(w, newRequest(http.MethodGet, "/api/preferences/theme", ""))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp themePreferenceResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Theme != theme.Light {
		t.Fatalf("expected default light theme, got %q", resp.Theme)
	}
	if resp.CustomColors != nil {
		t.Fatal("expected no custom colors for a preset theme")
	}
}

func TestPutThemePreferencePreset(t *testing.T) {
	sm, smCleanup := withTestSessionManager(t)
	t.Cleanup(smCleanup)
	db, dbCleanup := withTestDatabase(t)
	t.Cleanup(dbCleanup)

	user := &models.User{Email: "switcher@example.com", PasswordHash: "x", ThemePreference: "custom", CustomThemeColors: `{"bgPrimary":"#000000"}`}
	newRequest := seedSignedInUser(t, sm, user)

	w := httptest.NewRecorder()
	ThemePreference(w, newRequest(http.MethodPut, "/api/preferences/theme", `{"theme":"Dark"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	stored := &models.User{}
	if err := db.First(stored, user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if stored.ThemePreference != "dark" {
		t.Fatalf("expected normalized dark preference, got %q", stored.ThemePreference)
	}
	if stored.CustomThemeColors != "" {
		t.Fatalf("expected custom palette cleared on preset switch, got %q", stored.CustomThemeColors)
	}
}

func TestPutThemePreferenceCustom(t *testing.T) {
	sm, smCleanup := withTestSessionManager(t)
	t.Cleanup(smCleanup)
	db, dbCleanup := withTestDatabase(t)
	t.Cleanup(dbCleanup)

	user := &models.User{Email: "painter@example.com", PasswordHash: "x"}
	newRequest := seedSignedInUser(t, sm, user)

	palette := validPalette(t)
	payload, err := json.Marshal(themePreferenceResponse{Theme: theme.Custom, CustomColors: &palette})
	if err != nil {
		t.Fatalf("failed to encode payload: %v", err)
	}

	w := httptest.NewRecorder()
	ThemePreference(w, newRequest(http.MethodPut, "/api/preferences/theme", string(payload)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	stored := &models.User{}
	if err := db.First(stored, user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if stored.ThemePreference != "custom" {
		t.Fatalf("expected custom preference, got %q", stored.ThemePreference)
	}
	roundTrip := theme.Colors{}
	if err := json.Unmarshal([]byte(stored.CustomThemeColors), &roundTrip); err != nil {
		t.Fatalf("stored palette should be valid JSON: %v", err)
	}
	if roundTrip.BgPrimary != "#101828" {
		t.Fatalf("unexpected stored background %q", roundTrip.BgPrimary)
	}

	// And a follow-up GET serves it back.
	w = httptest.NewRecorder()
	ThemePreference(w, newRequest(http.MethodGet, "/api/preferences/theme", ""))
	var resp themePreferenceResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Theme != theme.Custom || resp.CustomColors == nil || resp.CustomColors.BgPrimary != "#101828" {
		t.Fatalf("unexpected round-trip preference: %+v", resp)
	}
}

func TestPutThemePreferenceRejections(t *testing.T) {
	sm, smCleanup := withTestSessionManager(t)
	t.Cleanup(smCleanup)
	_, dbCleanup := withTestDatabase(t)
	t.Cleanup(dbCleanup)

	newRequest := seedSignedInUser(t, sm, &models.User{Email: "strict@example.com", PasswordHash: "x"})

	tests := []struct {
		name string
		body string
	}{
		{"unknown theme", `{"theme":"neon"}`},
		{"custom without palette", `{"theme":"custom"}`},
		{"custom with malformed color", `{"theme":"custom","customColors":{"bgPrimary":"#zzzzzz"}}`},
		{"garbage body", `{{{`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ThemePreference(w, newRequest(http.MethodPut, "/api/preferences/theme", tt.body))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestGetThemePreferenceRecoversFromBadStoredPalette(t *testing.T) {
	sm, smCleanup := withTestSessionManager(t)
	t.Cleanup(smCleanup)
	_, dbCleanup := withTestDatabase(t)
	t.Cleanup(dbCleanup)

	user := &models.User{Email: "corrupt@example.com", PasswordHash: "x", ThemePreference: "custom", CustomThemeColors: "{not json"}
	newRequest := seedSignedInUser(t, sm, user)

	w := httptest.NewRecorder()
	ThemePreference(w, newRequest(http.MethodGet, "/api/preferences/theme", ""))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp themePreferenceResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Theme != theme.Light {
		t.Fatalf("expected fallback to light, got %q", resp.Theme)
	}
}

func TestThemePreferenceRejectsDelete(t *testing.T) {
	w := httptest.NewRecorder()
	ThemePreference(w, httptest.NewRequest(http.MethodDelete, "/api/preferences/theme", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}
