package store

import "strings"

// Keys held in each device namespace. The names match what the web client
// keeps in browser local storage, so exported data round-trips.
const (
	KeyFavoriteItems  = "favoriteItems"
	KeyAppLanguage    = "appLanguage"
	KeyMobileViewMode = "mobileViewMode"
)

const devicePrefix = "device:"

// DeviceKey namespaces name under deviceID:
//
//	device:<deviceID>:<name>
func DeviceKey(deviceID, name string) string {
	var b strings.Builder
	b.Grow(len(devicePrefix) + len(deviceID) + 1 + len(name))
	b.WriteString(devicePrefix)
	b.WriteString(deviceID)
	b.WriteByte(':')
	b.WriteString(name)
	return b.String()
}
