// Package maps turns the Google Maps embeds stored on listings into links
// that open the map itself.
package maps

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	domainerrors "github.com/visitgevgelija/guide-server/internal/errors"
)

const searchURL = "https://www.google.com/maps/search/?api=1&query="

// coordsPattern finds the longitude and latitude in an embed's pb parameter.
var coordsPattern = regexp.MustCompile(`!2d(-?\d+(?:\.\d+)?)!3d(-?\d+(?:\.\d+)?)`)

// googleHost matches google.com and the country forms google.mk,
// google.com.mk and google.co.uk, optionally under maps.
var googleHost = regexp.MustCompile(`^(maps\.)?google\.(com|[a-z]{2}|com\.[a-z]{2}|co\.[a-z]{2})$`)

// DirectionsURL converts an embed, either an <iframe> snippet or the bare
// embed URL, into a Google Maps URL a browser or phone can open.
func DirectionsURL(embed string) (string, error) {
	raw := strings.TrimSpace(embed)
	if raw == "" {
		return "", domainerrors.Validation("map embed is empty")
	}

	if strings.Contains(raw, "<") {
		src, ok := iframeSrc(raw)
		if !ok {
			return "", domainerrors.Validation("map embed has no iframe src")
		}
		raw = src
	}

	u, err := url.Parse(raw)
	if err != nil || !isGoogleMaps(u) {
		return "", domainerrors.Validationf("not a Google Maps URL: %q", raw)
	}

	q := u.Query()
	if m := coordsPattern.FindStringSubmatch(q.Get("pb")); m != nil {
		return searchURL + m[2] + "," + m[1], nil
	}
	if place := q.Get("q"); place != "" {
		return searchURL + url.QueryEscape(place), nil
	}

	u.Scheme = "https"
	u.Path = strings.Replace(u.Path, "/embed", "", 1)
	return u.String(), nil
}

func isGoogleMaps(u *url.URL) bool {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	m := googleHost.FindStringSubmatch(host)
	if m == nil {
		return false
	}
	return m[1] != "" || strings.HasPrefix(u.Path, "/maps")
}

// iframeSrc returns the src attribute of the first iframe in fragment.
func iframeSrc(fragment string) (string, bool) {
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", false
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "iframe" {
				continue
			}
			for _, attr := range tok.Attr {
				if attr.Key == "src" && attr.Val != "" {
					return attr.Val, true
				}
			}
			return "", false
		}
	}
}
