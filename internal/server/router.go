package server

import (
	"context"
	"net/http"

	"kaleido/internal/handlers"
	applog "kaleido/internal/log"
)

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	mux.HandleFunc("/healthz", handlers.Health)
	applog.Debug(context.Background(), "route registered", "path", "/healthz")
	mux.HandleFunc("/login", handlers.Login)
	applog.Debug(context.Background(), "route registered", "path", "/login")
	mux.HandleFunc("/signup", handlers.Signup)
	applog.Debug(context.Background(), "route registered", "path", "/signup")
	mux.HandleFunc("/logout", handlers.Logout)
	applog.Debug(context.Background(), "route registered", "path", "/logout")
	mux.Handle("/api/preferences/theme", handlers.RequireAuthentication(http.HandlerFunc(handlers.ThemePreference)))
	applog.Debug(context.Background(), "route registered", "path", "/api/preferences/theme", "protected", true)
	// The longer public prefix takes precedence over the protected
	// dashboard routes, so share links work without a session.
	mux.HandleFunc("/api/dashboards/public/", handlers.PublicDashboard)
	applog.Debug(context.Background(), "route registered", "path", "/api/dashboards/public/")
	mux.Handle("/api/dashboards", handlers.RequireAuthentication(http.HandlerFunc(handlers.Dashboards)))
	mux.Handle("/api/dashboards/", handlers.RequireAuthentication(http.HandlerFunc(handlers.Dashboards)))
	applog.Debug(context.Background(), "route registered", "path", "/api/dashboards", "protected", true)
	return mux
}
