package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/visitgevgelija/guide-server/internal/preferences"
	"github.com/visitgevgelija/guide-server/internal/service"
)

func (s *Server) registerPreferenceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getPreferences",
		Method:      http.MethodGet,
		Path:        "/api/v1/preferences",
		Summary:     "Get preferences",
		Description: "Returns the device's language and mobile view mode, defaulting to mk and app",
		Tags:        []string{"Preferences"},
	}, s.handleGetPreferences)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePreferences",
		Method:      http.MethodPatch,
		Path:        "/api/v1/preferences",
		Summary:     "Update preferences",
		Description: "Sets any of appLanguage and mobileViewMode",
		Tags:        []string{"Preferences"},
		Middlewares: huma.Middlewares{s.rateLimited(s.mutationLimiter)},
	}, s.handleUpdatePreferences)
}

// GetPreferencesInput identifies the device.
type GetPreferencesInput struct {
	DeviceID string `header:"X-Device-ID" doc:"Device id from POST /api/v1/devices"`
}

// UpdatePreferencesRequest is the PATCH body. Omitted fields are unchanged.
type UpdatePreferencesRequest struct {
	Language *string `json:"appLanguage,omitempty" doc:"mk, en, sr or el"`
	ViewMode *string `json:"mobileViewMode,omitempty" doc:"app or web"`
}

// UpdatePreferencesInput contains the device and the patch.
type UpdatePreferencesInput struct {
	DeviceID string `header:"X-Device-ID" doc:"Device id from POST /api/v1/devices"`
	Body     UpdatePreferencesRequest
}

// PreferencesOutput wraps the preferences for Huma.
type PreferencesOutput struct {
	Body service.PreferencesView
}

func (s *Server) handleGetPreferences(ctx context.Context, input *GetPreferencesInput) (*PreferencesOutput, error) {
	view, err := s.services.Preference.Get(ctx, input.DeviceID)
	if err != nil {
		return nil, err
	}
	return &PreferencesOutput{Body: view}, nil
}

func (s *Server) handleUpdatePreferences(ctx context.Context, input *UpdatePreferencesInput) (*PreferencesOutput, error) {
	view, err := s.services.Preference.Update(ctx, input.DeviceID, preferences.Patch{
		Language: input.Body.Language,
		ViewMode: input.Body.ViewMode,
	})
	if err != nil {
		return nil, err
	}
	return &PreferencesOutput{Body: view}, nil
}
