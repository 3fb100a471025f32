// Package settings persists the small set of user preferences: theme and
// the daily-reminder schedule state.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"readtrack/internal/common"
	"readtrack/internal/kvstore"
)

// Theme names.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

const (
	themePrefix        = "theme:"
	notificationPrefix = "notifications:"
)

// Default reminder time, 8 PM device-local.
const (
	DefaultReminderHour   = 20
	DefaultReminderMinute = 0
)

// NotificationPrefs is the persisted daily-reminder schedule state.
type NotificationPrefs struct {
	Enabled bool `json:"enabled"`
	Hour    int  `json:"hour"`
	Minute  int  `json:"minute"`
}

// Service reads and writes preferences in the key-value store. It is an
// explicitly constructed instance; nothing here is process-global.
type Service struct {
	kv kvstore.Store
}

// New creates a settings service on top of kv.
func New(kv kvstore.Store) *Service {
	return &Service{kv: kv}
}

// Theme returns the user's theme, defaulting to dark when never set.
func (s *Service) Theme(ctx context.Context, userID string) (string, error) {
	data, err := s.kv.Get(ctx, themePrefix+userID)
	if errors.Is(err, kvstore.ErrNotFound) {
		return ThemeDark, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read theme: %w", err)
	}
	return string(data), nil
}

// SetTheme stores the user's theme. Only the known theme names are accepted.
func (s *Service) SetTheme(ctx context.Context, userID, theme string) error {
	if theme != ThemeDark && theme != ThemeLight {
		return fmt.Errorf("%w: unknown theme %q", common.ErrInvalidInput, theme)
	}
	if err := s.kv.Set(ctx, themePrefix+userID, []byte(theme)); err != nil {
		return fmt.Errorf("failed to store theme: %w", err)
	}
	return nil
}

// ToggleTheme flips between dark and light and returns the new theme.
func (s *Service) ToggleTheme(ctx context.Context, userID string) (string, error) {
	current, err := s.Theme(ctx, userID)
	if err != nil {
		return "", err
	}
	next := ThemeDark
	if current == ThemeDark {
		next = ThemeLight
	}
	if err := s.SetTheme(ctx, userID, next); err != nil {
		return "", err
	}
	return next, nil
}

// Notifications returns the reminder schedule state, with the default
// schedule when never set.
func (s *Service) Notifications(ctx context.Context, userID string) (NotificationPrefs, error) {
	prefs := NotificationPrefs{
		Hour:   DefaultReminderHour,
		Minute: DefaultReminderMinute,
	}

	data, err := s.kv.Get(ctx, notificationPrefix+userID)
	if errors.Is(err, kvstore.ErrNotFound) {
		return prefs, nil
	}
	if err != nil {
		return NotificationPrefs{}, fmt.Errorf("failed to read notification prefs: %w", err)
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return NotificationPrefs{}, fmt.Errorf("failed to unmarshal notification prefs: %w", err)
	}
	return prefs, nil
}

// SetNotifications stores the reminder schedule state.
func (s *Service) SetNotifications(ctx context.Context, userID string, prefs NotificationPrefs) error {
	if prefs.Hour < 0 || prefs.Hour > 23 || prefs.Minute < 0 || prefs.Minute > 59 {
		return fmt.Errorf("%w: reminder time %02d:%02d is not a valid time of day",
			common.ErrInvalidInput, prefs.Hour, prefs.Minute)
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal notification prefs: %w", err)
	}
	if err := s.kv.Set(ctx, notificationPrefix+userID, data); err != nil {
		return fmt.Errorf("failed to store notification prefs: %w", err)
	}
	return nil
}
