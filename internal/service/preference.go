package service

import (
	"context"
	"log/slog"

	domainerrors "github.com/visitgevgelija/guide-server/internal/errors"
	"github.com/visitgevgelija/guide-server/internal/preferences"
)

// PreferencesView is what a device sees. Persisted is false when the values
// came from, or only reached, memory because storage failed.
type PreferencesView struct {
	preferences.Preferences
	Persisted bool `json:"persisted"`
}

// PreferenceService exposes device preferences.
type PreferenceService struct {
	prefs  *preferences.Service
	logger *slog.Logger
}

// NewPreferenceService creates a preference service.
func NewPreferenceService(prefs *preferences.Service, logger *slog.Logger) *PreferenceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreferenceService{prefs: prefs, logger: logger}
}

// Get returns the device's preferences, falling back to defaults.
func (s *PreferenceService) Get(ctx context.Context, deviceID string) (PreferencesView, error) {
	device, err := parseDevice(deviceID)
	if err != nil {
		return PreferencesView{}, err
	}
	p, err := s.prefs.Get(ctx, device)
	return s.view(device, p, err)
}

// Update applies patch. Invalid values are a VALIDATION error; a storage
// failure is reported through Persisted.
func (s *PreferenceService) Update(ctx context.Context, deviceID string, patch preferences.Patch) (PreferencesView, error) {
	device, err := parseDevice(deviceID)
	if err != nil {
		return PreferencesView{}, err
	}
	p, err := s.prefs.Update(ctx, device, patch)
	return s.view(device, p, err)
}

func (s *PreferenceService) view(device string, p preferences.Preferences, err error) (PreferencesView, error) {
	if err == nil {
		return PreferencesView{Preferences: p, Persisted: true}, nil
	}
	if domainerrors.Is(err, preferences.ErrPersist) {
		s.logger.Warn("preferences served from memory", "device_id", device, "error", err)
		return PreferencesView{Preferences: p}, nil
	}
	return PreferencesView{}, err
}
