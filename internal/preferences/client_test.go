package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"kaleido/internal/theme"
)

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Fatal("expected error for empty base URL")
	}

	client, err := NewClient(ClientConfig{BaseURL: "http://localhost:8080/"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if client.baseURL != "http://localhost:8080" {
		t.Fatalf("base URL not normalized: %q", client.baseURL)
	}
}

func TestClientFetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/preferences/theme" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(Preference{Theme: theme.Sunset}); err != nil {
			t.Errorf("failed to encode response: %v", err)
		}
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	pref, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if pref.Theme != theme.Sunset {
		t.Fatalf("fetched theme = %q, want sunset", pref.Theme)
	}
}

func TestClientFetchUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if _, err := client.Fetch(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	srv.Close()
	if _, err := client.Fetch(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable after connection refusal, got %v", err)
	}
}

func TestClientSave(t *testing.T) {
	t.Parallel()

	var received Preference
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("unexpected method %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	colors := darkCustomColors()
	if err := client.Save(context.Background(), Preference{Theme: theme.Custom, CustomColors: &colors}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if received.Theme != theme.Custom || received.CustomColors == nil {
		t.Fatalf("server received %+v, want custom preference with palette", received)
	}
	if received.CustomColors.BgPrimary != colors.BgPrimary {
		t.Fatal("custom palette did not round-trip")
	}
}

func TestClientSaveUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no session", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if err := client.Save(context.Background(), Preference{Theme: theme.Dark}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
