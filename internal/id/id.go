// Package id generates identifiers: UUIDs for devices and short prefixed
// NanoIDs for transient server-side handles such as event stream clients.
package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generate creates a prefixed NanoID, e.g. "sse-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// NewDeviceID mints a random (version 4) device UUID.
func NewDeviceID() string {
	return uuid.NewString()
}

// ParseDeviceID canonicalizes a client-supplied device id. Only version 4
// UUIDs are accepted, since those are the only ones NewDeviceID hands out.
func ParseDeviceID(raw string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid device id: %w", err)
	}
	if u.Version() != 4 {
		return "", fmt.Errorf("invalid device id: version %d", u.Version())
	}
	return u.String(), nil
}
