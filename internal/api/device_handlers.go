package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/visitgevgelija/guide-server/internal/id"
	"github.com/visitgevgelija/guide-server/internal/maps"
)

func (s *Server) registerDeviceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createDevice",
		Method:        http.MethodPost,
		Path:          "/api/v1/devices",
		Summary:       "Create device",
		Description:   "Mints a device id. Send it as X-Device-ID on favorites and preferences requests.",
		Tags:          []string{"Devices"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   huma.Middlewares{s.rateLimited(s.mutationLimiter)},
	}, s.handleCreateDevice)
}

func (s *Server) registerMapsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getDirections",
		Method:      http.MethodGet,
		Path:        "/api/v1/maps/directions",
		Summary:     "Directions link",
		Description: "Turns a Google Maps embed (iframe snippet or URL) into a link that opens the map",
		Tags:        []string{"Maps"},
	}, s.handleGetDirections)
}

// DeviceResponse carries a new device id.
type DeviceResponse struct {
	DeviceID string `json:"deviceId" doc:"Version 4 UUID"`
}

// DeviceOutput wraps the device response for Huma.
type DeviceOutput struct {
	Body DeviceResponse
}

// DirectionsInput carries the embed string of a listing.
type DirectionsInput struct {
	Embed string `query:"embed" required:"true" maxLength:"4096" doc:"Google Maps iframe snippet or embed URL"`
}

// DirectionsResponse is the resolved maps link.
type DirectionsResponse struct {
	URL string `json:"url"`
}

// DirectionsOutput wraps the directions response for Huma.
type DirectionsOutput struct {
	Body DirectionsResponse
}

func (s *Server) handleCreateDevice(_ context.Context, _ *struct{}) (*DeviceOutput, error) {
	return &DeviceOutput{Body: DeviceResponse{DeviceID: id.NewDeviceID()}}, nil
}

func (s *Server) handleGetDirections(_ context.Context, input *DirectionsInput) (*DirectionsOutput, error) {
	u, err := maps.DirectionsURL(input.Embed)
	if err != nil {
		return nil, err
	}
	return &DirectionsOutput{Body: DirectionsResponse{URL: u}}, nil
}
