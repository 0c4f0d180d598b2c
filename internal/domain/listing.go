// Package domain contains the catalog entities shared by the guide services.
package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMissingID is returned when a dataset record has no usable id.
var ErrMissingID = errors.New("listing has no id")

// PackageTier is a listing's paid-visibility level.
type PackageTier string

// Package tiers, lowest to highest.
const (
	TierFree     PackageTier = "free"
	TierStandard PackageTier = "standard"
	TierPremium  PackageTier = "premium"
)

// ParseTier normalizes a tier; unknown values are free.
func ParseTier(raw string) PackageTier {
	switch PackageTier(strings.ToLower(strings.TrimSpace(raw))) {
	case TierPremium:
		return TierPremium
	case TierStandard:
		return TierStandard
	default:
		return TierFree
	}
}

// Contact is the reachable side of a listing.
type Contact struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
	Address string `json:"address,omitempty"`
}

// Rating is an aggregate review score.
type Rating struct {
	Score   float64 `json:"score"`
	Reviews int     `json:"reviews"`
}

// Listing is any browsable catalog entry: accommodation, restaurant, winery,
// offer, story, roadside service, gas station and so on.
//
// Records are authored out of band and immutable at runtime. Fields the
// server does not model are kept in Extra and written back unchanged.
type Listing struct {
	ID          string
	Package     PackageTier
	Title       LocalizedText
	Description LocalizedText
	Images      []string
	Category    string
	Contact     Contact
	Rating      *Rating
	MapEmbed    string
	Extra       map[string]json.RawMessage
}

// IsPremium reports whether the listing is on the premium tier.
func (l Listing) IsPremium() bool {
	return l.Package == TierPremium
}

// Image returns the first image, or "".
func (l Listing) Image() string {
	if len(l.Images) == 0 {
		return ""
	}
	return l.Images[0]
}

var modeledKeys = map[string]bool{
	"id": true, "package": true, "title": true, "description": true,
	"images": true, "image": true, "category": true, "contact": true,
	"rating": true, "mapEmbed": true,
}

// UnmarshalJSON decodes a dataset record. Only a missing id is an error;
// every other malformed field degrades to its zero value.
func (l *Listing) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("listing is not an object: %w", err)
	}

	id, err := decodeID(fields["id"])
	if err != nil {
		return err
	}

	out := Listing{ID: id}

	var tier string
	_ = json.Unmarshal(fields["package"], &tier)
	out.Package = ParseTier(tier)

	// name stands in for title only when title is absent; otherwise it is
	// kept as an extra field.
	titleKey := "title"
	if _, ok := fields["title"]; !ok {
		if _, ok := fields["name"]; ok {
			titleKey = "name"
		}
	}
	if raw, ok := fields[titleKey]; ok {
		_ = out.Title.UnmarshalJSON(raw)
	}
	if out.Title == nil {
		out.Title = LocalizedText{}
	}
	out.Description = LocalizedText{}
	if raw, ok := fields["description"]; ok {
		_ = out.Description.UnmarshalJSON(raw)
	}

	out.Images = decodeImages(fields["images"], fields["image"])

	_ = json.Unmarshal(fields["category"], &out.Category)
	_ = json.Unmarshal(fields["contact"], &out.Contact)
	_ = json.Unmarshal(fields["mapEmbed"], &out.MapEmbed)
	out.Rating = decodeRating(fields["rating"])

	for key, raw := range fields {
		if modeledKeys[key] || key == titleKey {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage)
		}
		out.Extra[key] = raw
	}

	*l = out
	return nil
}

// MarshalJSON writes the modeled fields over the preserved extras.
func (l Listing) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(l.Extra)+10)
	for k, v := range l.Extra {
		out[k] = v
	}

	out["id"] = l.ID
	out["package"] = l.Package
	out["title"] = l.Title
	out["description"] = l.Description
	out["images"] = l.Images
	if l.Images == nil {
		out["images"] = []string{}
	}
	if l.Category != "" {
		out["category"] = l.Category
	}
	if l.Contact != (Contact{}) {
		out["contact"] = l.Contact
	}
	if l.Rating != nil {
		out["rating"] = l.Rating
	}
	if l.MapEmbed != "" {
		out["mapEmbed"] = l.MapEmbed
	}

	return json.Marshal(out)
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", ErrMissingID
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s = strings.TrimSpace(s); s == "" {
			return "", ErrMissingID
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("%w: unsupported id %s", ErrMissingID, raw)
}

func decodeImages(list, single json.RawMessage) []string {
	var images []string
	if len(list) > 0 {
		var items []json.RawMessage
		if json.Unmarshal(list, &items) == nil {
			for _, item := range items {
				var s string
				if json.Unmarshal(item, &s) == nil && s != "" {
					images = append(images, s)
				}
			}
		}
	}
	if len(images) == 0 && len(single) > 0 {
		var s string
		if json.Unmarshal(single, &s) == nil && s != "" {
			images = []string{s}
		}
	}
	return images
}

func decodeRating(raw json.RawMessage) *Rating {
	if len(raw) == 0 {
		return nil
	}
	var r struct {
		Score   json.Number `json:"score"`
		Reviews json.Number `json:"reviews"`
		Count   json.Number `json:"count"`
	}
	if json.Unmarshal(raw, &r) != nil {
		return nil
	}
	score, err := strconv.ParseFloat(r.Score.String(), 64)
	if err != nil {
		return nil
	}
	reviews := r.Reviews
	if reviews == "" {
		reviews = r.Count
	}
	n, _ := strconv.Atoi(reviews.String())
	return &Rating{Score: score, Reviews: n}
}
