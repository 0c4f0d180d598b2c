// Package preferences persists a device's language and mobile view mode.
package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/visitgevgelija/guide-server/internal/i18n"
	"github.com/visitgevgelija/guide-server/internal/store"
	"github.com/visitgevgelija/guide-server/internal/validation"
)

// EventChanged is published to a device after an update.
const EventChanged = "preferences.changed"

// View modes.
const (
	ViewModeApp = "app"
	ViewModeWeb = "web"
)

// ErrPersist means a preference could not be read or written; defaults or
// the in-request values were used instead.
var ErrPersist = errors.New("preferences: storage unavailable")

// Preferences are the per-device UI settings.
type Preferences struct {
	Language i18n.Language `json:"appLanguage"`
	ViewMode string        `json:"mobileViewMode"`
}

// Defaults returns the preferences of a device that never chose anything.
func Defaults() Preferences {
	return Preferences{Language: i18n.DefaultLanguage, ViewMode: ViewModeApp}
}

// Patch is a partial update; nil fields are left alone.
type Patch struct {
	Language *string `json:"appLanguage,omitempty" validate:"omitempty,lang"`
	ViewMode *string `json:"mobileViewMode,omitempty" validate:"omitempty,viewmode"`
}

// Publisher delivers device-scoped events.
type Publisher interface {
	Publish(deviceID, eventType string, data any)
}

// Service reads and writes preferences.
type Service struct {
	kv        store.KV
	validator *validation.Validator
	publisher Publisher
	logger    *slog.Logger
}

// NewService creates a preferences service. publisher may be nil.
func NewService(kv store.KV, v *validation.Validator, publisher Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{kv: kv, validator: v, publisher: publisher, logger: logger}
}

// Get returns the stored preferences, falling back to defaults per key.
// Unreadable or invalid values degrade to the default and are reported
// through the ErrPersist-wrapped error alongside usable preferences.
func (s *Service) Get(ctx context.Context, deviceID string) (Preferences, error) {
	prefs := Defaults()
	var errs []error

	if lang, err := s.read(ctx, deviceID, store.KeyAppLanguage); err != nil {
		errs = append(errs, err)
	} else if l := i18n.Language(lang); lang != "" && l.Valid() {
		prefs.Language = l
	}

	if mode, err := s.read(ctx, deviceID, store.KeyMobileViewMode); err != nil {
		errs = append(errs, err)
	} else if mode == ViewModeApp || mode == ViewModeWeb {
		prefs.ViewMode = mode
	}

	if len(errs) > 0 {
		err := fmt.Errorf("%w: %w", ErrPersist, errors.Join(errs...))
		s.logger.Warn("preferences degraded to defaults", "device_id", deviceID, "error", err)
		return prefs, err
	}
	return prefs, nil
}

// Update validates patch and persists the keys it sets. It returns the
// resulting preferences; a persistence failure is returned wrapped in
// ErrPersist together with the preferences the device asked for.
func (s *Service) Update(ctx context.Context, deviceID string, patch Patch) (Preferences, error) {
	if err := s.validator.Validate(patch); err != nil {
		return Preferences{}, err
	}

	current, _ := s.Get(ctx, deviceID)

	var errs []error
	if patch.Language != nil {
		current.Language = i18n.Language(*patch.Language)
		errs = append(errs, s.write(ctx, deviceID, store.KeyAppLanguage, *patch.Language))
	}
	if patch.ViewMode != nil {
		current.ViewMode = *patch.ViewMode
		errs = append(errs, s.write(ctx, deviceID, store.KeyMobileViewMode, *patch.ViewMode))
	}

	if err := errors.Join(errs...); err != nil {
		s.logger.Warn("preferences not persisted", "device_id", deviceID, "error", err)
		return current, fmt.Errorf("%w: %w", ErrPersist, err)
	}

	if s.publisher != nil && (patch.Language != nil || patch.ViewMode != nil) {
		s.publisher.Publish(deviceID, EventChanged, current)
	}
	return current, nil
}

// read returns "" for a missing key. Values are JSON strings, as the web
// client writes them.
func (s *Service) read(ctx context.Context, deviceID, key string) (string, error) {
	data, err := s.kv.Get(ctx, store.DeviceKey(deviceID, key))
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		// Older clients stored the bare string.
		return string(data), nil
	}
	return v, nil
}

func (s *Service) write(ctx context.Context, deviceID, key, value string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, store.DeviceKey(deviceID, key), data)
}
