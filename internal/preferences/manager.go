// Package preferences holds the process-wide theme preference state: it
// reconciles the remote preference store, the local fallback cache, and the
// live system appearance signal, and exposes the resolved theme to
// consumers.
package preferences

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	applog "kaleido/internal/log"
	"kaleido/internal/theme"
)

const saveTimeout = 10 * time.Second

// Preference is the persisted pair: a theme selection plus the custom
// palette carried alongside it when the selection is "custom".
type Preference struct {
	Theme        theme.Name    `json:"theme"`
	CustomColors *theme.Colors `json:"customColors,omitempty"`
}

// Store is the remote preference store. Both operations may fail freely;
// the manager degrades to local state in either case.
type Store interface {
	Fetch(ctx context.Context) (Preference, error)
	Save(ctx context.Context, pref Preference) error
}

// Cache is the local key-value fallback. Read is consulted once at startup
// when the store is unreachable; Write runs on every reflection as a
// write-through backup. An empty customJSON clears any stored palette.
type Cache interface {
	Read() (themeName, customJSON string, err error)
	Write(themeName, customJSON string) error
}

// Scheme exposes the system dark-mode signal. Subscribe returns a cancel
// function; callbacks stop after cancel returns.
type Scheme interface {
	Dark() bool
	Subscribe(fn func(dark bool)) (cancel func())
}

// ModeSink receives the active theme name and resolved dark flag, the
// document-level presentation attributes styling consumers read.
type ModeSink interface {
	ApplyMode(name theme.Name, dark bool)
}

// Notifier is the non-blocking side channel for persistence failures.
type Notifier interface {
	Notify(message string)
}

// Config wires the manager's collaborators. Every field is optional; a nil
// collaborator disables that concern rather than failing.
type Config struct {
	Store    Store
	Cache    Cache
	Scheme   Scheme
	Sink     ModeSink
	Notifier Notifier
}

// Manager is the single writer of the (theme, custom palette) pair. All
// state transitions are serialized behind one mutex; reflection (resolve,
// apply mode, cache write-through) completes synchronously within the
// transition that triggered it.
type Manager struct {
	store    Store
	cache    Cache
	scheme   Scheme
	sink     ModeSink
	notifier Notifier

	mu          sync.Mutex
	ready       bool
	name        theme.Name
	custom      *theme.Colors
	resolved    theme.Theme
	unsubscribe func()

	saves sync.WaitGroup
}

// New builds a Manager in the Loading state with the default theme staged.
func New(cfg Config) *Manager {
	return &Manager{
		store:    cfg.Store,
		cache:    cfg.Cache,
		scheme:   cfg.Scheme,
		sink:     cfg.Sink,
		notifier: cfg.Notifier,
		name:     theme.DefaultName,
	}
}

// Load performs the one-time initialization: fetch the preference from the
// remote store, falling back to the local cache and finally the process
// default. Load never fails; the manager is Ready afterward regardless of
// outcome. Subsequent calls are no-ops.
func (m *Manager) Load(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ready {
		return
	}

	var pref Preference
	if m.store == nil {
		pref = m.cachedPreference(ctx)
	} else if fetched, err := m.store.Fetch(ctx); err != nil {
		applog.Warn(ctx, "preference store unreachable, using local cache", "error", err)
		pref = m.cachedPreference(ctx)
	} else {
		pref = sanitize(fetched)
	}

	m.name = pref.Theme
	m.custom = pref.CustomColors
	m.ready = true
	m.reflectLocked(ctx)
	applog.Debug(ctx, "theme preferences loaded", "theme", m.name, "dark", m.resolved.IsDark)
}

// sanitize guards against a store handing back an unknown selector or a
// custom selection without a usable palette.
func sanitize(pref Preference) Preference {
	name := theme.Normalize(string(pref.Theme))
	if !theme.Known(name) {
		return Preference{Theme: theme.DefaultName}
	}
	if name == theme.Custom {
		if pref.CustomColors == nil || pref.CustomColors.Validate() != nil {
			return Preference{Theme: theme.DefaultName}
		}
		return Preference{Theme: name, CustomColors: pref.CustomColors}
	}
	return Preference{Theme: name}
}

func (m *Manager) cachedPreference(ctx context.Context) Preference {
	if m.cache == nil {
		return Preference{Theme: theme.DefaultName}
	}

	rawName, customJSON, err := m.cache.Read()
	if err != nil {
		applog.Warn(ctx, "preference cache unreadable, using default theme", "error", err)
		return Preference{Theme: theme.DefaultName}
	}

	name := theme.Normalize(rawName)
	if !theme.Known(name) {
		return Preference{Theme: theme.DefaultName}
	}

	if name == theme.Custom {
		var colors theme.Colors
		if err := json.Unmarshal([]byte(customJSON), &colors); err != nil || colors.Validate() != nil {
			applog.Warn(ctx, "cached custom palette unparsable, using default theme", "error", err)
			return Preference{Theme: theme.DefaultName}
		}
		return Preference{Theme: name, CustomColors: &colors}
	}

	return Preference{Theme: name}
}

// SetTheme applies a user-initiated change. The local state update and its
// reflection are synchronous; persistence to the remote store happens in
// the background and never rolls the local change back. A failed save
// surfaces through the Notifier exactly once.
func (m *Manager) SetTheme(ctx context.Context, name theme.Name, custom *theme.Colors) {
	m.mu.Lock()

	m.name = name
	if name == theme.Custom {
		if custom != nil {
			clone := *custom
			m.custom = &clone
		}
	} else {
		m.custom = nil
	}

	m.reflectLocked(ctx)
	pref := Preference{Theme: m.name, CustomColors: m.custom}
	m.mu.Unlock()

	applog.Debug(ctx, "theme changed", "theme", name)

	if m.store == nil {
		return
	}

	m.saves.Add(1)
	go func() {
		defer m.saves.Done()
		saveCtx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := m.store.Save(saveCtx, pref); err != nil {
			applog.Warn(saveCtx, "failed to persist theme preference", "error", err, "theme", pref.Theme)
			if m.notifier != nil {
				m.notifier.Notify("Theme preference could not be saved to the server; your selection is kept locally.")
			}
		}
	}()
}

// reflectLocked recomputes the resolved theme from the current state and
// propagates it: mode sink first, then the unconditional cache
// write-through, then subscription housekeeping. Callers hold m.mu.
func (m *Manager) reflectLocked(ctx context.Context) {
	m.resolved = theme.Resolve(m.name, m.custom, m.systemDark)

	if m.sink != nil {
		m.sink.ApplyMode(m.name, m.resolved.IsDark)
	}

	if m.cache != nil {
		customJSON := ""
		if m.name == theme.Custom && m.custom != nil {
			if encoded, err := json.Marshal(m.custom); err == nil {
				customJSON = string(encoded)
			}
		}
		if err := m.cache.Write(string(m.name), customJSON); err != nil {
			applog.Warn(ctx, "failed to write preference cache", "error", err)
		}
	}

	m.syncSubscriptionLocked()
}

func (m *Manager) systemDark() bool {
	if m.scheme == nil {
		return false
	}
	return m.scheme.Dark()
}

// syncSubscriptionLocked keeps the system-signal subscription alive exactly
// while the selection is "auto". Callers hold m.mu.
func (m *Manager) syncSubscriptionLocked() {
	if m.scheme == nil {
		return
	}
	if m.name == theme.Auto && m.unsubscribe == nil {
		m.unsubscribe = m.scheme.Subscribe(m.onSystemChange)
		return
	}
	if m.name != theme.Auto && m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// onSystemChange re-runs reflection when the system preference flips while
// in auto mode. The stored state is unchanged; only the resolution moves.
func (m *Manager) onSystemChange(bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ready || m.name != theme.Auto {
		return
	}
	m.reflectLocked(context.Background())
}

// Ready reports whether initialization has completed.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

// Current returns the active selection and a copy of the custom palette,
// if any.
func (m *Manager) Current() (theme.Name, *theme.Colors) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.custom == nil {
		return m.name, nil
	}
	clone := *m.custom
	return m.name, &clone
}

// Resolved returns the currently resolved theme.
func (m *Manager) Resolved() theme.Theme {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolved
}

// ChartColors returns the chart series palette for the current resolution.
func (m *Manager) ChartColors() [5]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return theme.DefaultChartColors(m.name, m.custom, m.systemDark)
}

// Close tears down the system-signal subscription and waits for any
// in-flight background saves to finish.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.mu.Unlock()
	m.saves.Wait()
}
