package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitgevgelija/guide-server/internal/i18n"
)

func TestListing_UnmarshalFullRecord(t *testing.T) {
	raw := `{
		"id": "hotel-sun",
		"package": "premium",
		"title": {"mk": "Хотел Сонце", "en": "Hotel Sun", "sr": "Hotel Sunce", "el": "Ξενοδοχείο Ήλιος"},
		"description": {"mk": "Во центар", "en": "Downtown", "sr": "U centru", "el": "Στο κέντρο"},
		"images": ["/img/sun-1.jpg", "/img/sun-2.jpg"],
		"category": "hotel",
		"contact": {"phone": "+389 34 000 000", "website": "https://sun.mk"},
		"rating": {"score": 4.6, "reviews": 212},
		"mapEmbed": "https://www.google.com/maps/embed?pb=x",
		"stars": 4,
		"amenities": ["wifi", "parking"]
	}`

	var l Listing
	require.NoError(t, json.Unmarshal([]byte(raw), &l))

	assert.Equal(t, "hotel-sun", l.ID)
	assert.True(t, l.IsPremium())
	assert.Equal(t, "Hotel Sun", l.Title.Get(i18n.English))
	assert.Equal(t, "Во центар", l.Description.Get(i18n.Macedonian))
	assert.Equal(t, "/img/sun-1.jpg", l.Image())
	assert.Equal(t, "hotel", l.Category)
	assert.Equal(t, "https://sun.mk", l.Contact.Website)
	require.NotNil(t, l.Rating)
	assert.InDelta(t, 4.6, l.Rating.Score, 0.001)
	assert.Equal(t, 212, l.Rating.Reviews)
	assert.JSONEq(t, `4`, string(l.Extra["stars"]))
	assert.Contains(t, l.Extra, "amenities")
}

func TestListing_TolerantFields(t *testing.T) {
	raw := `{
		"id": 17,
		"package": "GOLD",
		"name": "Kafana Stara",
		"description": 42,
		"image": "/img/k.jpg",
		"contact": "call us",
		"rating": {"score": "n/a"}
	}`

	var l Listing
	require.NoError(t, json.Unmarshal([]byte(raw), &l))

	assert.Equal(t, "17", l.ID)
	assert.Equal(t, TierFree, l.Package)
	assert.Equal(t, "Kafana Stara", l.Title.Get(i18n.Greek), "plain string applies to every language")
	assert.Equal(t, "", l.Description.Get(i18n.English))
	assert.Equal(t, []string{"/img/k.jpg"}, l.Images)
	assert.Equal(t, Contact{}, l.Contact)
	assert.Nil(t, l.Rating)
}

func TestListing_NameKeptWhenTitlePresent(t *testing.T) {
	var l Listing
	require.NoError(t, json.Unmarshal([]byte(`{"id":"v1","title":{"en":"Vinarija"},"name":"Legal name LLC"}`), &l))
	assert.Equal(t, "Vinarija", l.Title.Get(i18n.English))
	assert.JSONEq(t, `"Legal name LLC"`, string(l.Extra["name"]))

	out, err := json.Marshal(l)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"name":"Legal name LLC"`)

	var named Listing
	require.NoError(t, json.Unmarshal([]byte(`{"id":"v2","name":"Kafana"}`), &named))
	assert.Equal(t, "Kafana", named.Title.Get(i18n.English))
	assert.NotContains(t, named.Extra, "name", "name standing in for title is not duplicated")
}

func TestListing_MissingID(t *testing.T) {
	for _, raw := range []string{`{}`, `{"id": ""}`, `{"id": null}`, `{"id": true}`} {
		var l Listing
		err := json.Unmarshal([]byte(raw), &l)
		assert.ErrorIs(t, err, ErrMissingID, raw)
	}
}

func TestListing_MarshalPreservesExtras(t *testing.T) {
	var l Listing
	require.NoError(t, json.Unmarshal([]byte(`{"id":"w1","title":{"en":"Winery"},"vintage":1998}`), &l))

	out, err := json.Marshal(l)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "w1", decoded["id"])
	assert.Equal(t, "free", decoded["package"])
	assert.EqualValues(t, 1998, decoded["vintage"])
	assert.Equal(t, []any{}, decoded["images"])
}

func TestLocalizedText_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		en   string
		mk   string
	}{
		{"object", `{"en":"Sun","mk":"Сонце"}`, "Sun", "Сонце"},
		{"plain string", `"Sun"`, "Sun", "Sun"},
		{"partial", `{"en":"Sun"}`, "Sun", ""},
		{"wrong value types", `{"en":5,"mk":"Сонце"}`, "", "Сонце"},
		{"unsupported language dropped", `{"de":"Sonne"}`, "", ""},
		{"null", `null`, "", ""},
		{"array", `["Sun"]`, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var text LocalizedText
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &text))
			assert.Equal(t, tt.en, text.Get(i18n.English))
			assert.Equal(t, tt.mk, text.Get(i18n.Macedonian))
		})
	}
}

func TestLocalizedText_Or(t *testing.T) {
	text := Text("en", "Sun", "el", "Ήλιος")

	assert.Equal(t, "Ήλιος", text.Or(i18n.Greek))
	assert.Equal(t, "Sun", text.Or(i18n.Serbian))
	assert.Equal(t, "", LocalizedText{}.Or(i18n.English))
}

func TestParseTier(t *testing.T) {
	assert.Equal(t, TierPremium, ParseTier(" Premium "))
	assert.Equal(t, TierStandard, ParseTier("standard"))
	assert.Equal(t, TierFree, ParseTier("free"))
	assert.Equal(t, TierFree, ParseTier(""))
}
