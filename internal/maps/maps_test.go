package maps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/visitgevgelija/guide-server/internal/errors"
)

const pbEmbed = "https://www.google.com/maps/embed?pb=!1m18!1m12!1m3!1d2985.1!2d22.5102!3d41.1417!2m3!1f0!2f0!3f0"

func TestDirectionsURL(t *testing.T) {
	tests := []struct {
		name  string
		embed string
		want  string
	}{
		{
			name:  "bare pb url",
			embed: pbEmbed,
			want:  "https://www.google.com/maps/search/?api=1&query=41.1417,22.5102",
		},
		{
			name:  "iframe snippet",
			embed: `<iframe src="` + pbEmbed + `" width="600" height="450" style="border:0;" allowfullscreen="" loading="lazy"></iframe>`,
			want:  "https://www.google.com/maps/search/?api=1&query=41.1417,22.5102",
		},
		{
			name:  "html entities in src",
			embed: `<iframe src="https://maps.google.com/maps?q=Hotel%20Sun&amp;output=embed"></iframe>`,
			want:  "https://www.google.com/maps/search/?api=1&query=Hotel+Sun",
		},
		{
			name:  "negative coordinates",
			embed: "https://www.google.com/maps/embed?pb=!2d-73.98!3d-40.75",
			want:  "https://www.google.com/maps/search/?api=1&query=-40.75,-73.98",
		},
		{
			name:  "no coordinates or query",
			embed: "https://www.google.com/maps/embed/v1/place?key=abc",
			want:  "https://www.google.com/maps/v1/place?key=abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DirectionsURL(tt.embed)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDirectionsURL_AcceptsCountryDomains(t *testing.T) {
	for _, embed := range []string{
		"https://www.google.mk/maps/embed?pb=!2d22.51!3d41.14",
		"https://www.google.com.mk/maps/embed?pb=!2d22.51!3d41.14",
		"https://www.google.co.uk/maps/embed?pb=!2d22.51!3d41.14",
		"https://maps.google.gr/maps?q=x&output=embed&pb=!2d22.51!3d41.14",
	} {
		got, err := DirectionsURL(embed)
		require.NoError(t, err, "embed %q", embed)
		assert.Equal(t, searchURL+"41.14,22.51", got)
	}
}

func TestDirectionsURL_Rejects(t *testing.T) {
	for _, embed := range []string{
		"",
		"   ",
		"https://example.com/maps/embed?pb=!2d1!3d2",
		"https://www.google.com/search?q=hotel",
		"https://google.evil.com/maps/embed?pb=!2d1!3d2",
		"https://www.google.mk.attacker.net/maps/embed?q=x",
		"https://maps.google.example/embed?q=x",
		"https://notgoogle.com/maps/embed?q=x",
		`<div>no frame here</div>`,
		`<iframe width="600"></iframe>`,
	} {
		_, err := DirectionsURL(embed)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation), "embed %q", embed)
	}
}
