package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want Language
		ok   bool
	}{
		{"mk", Macedonian, true},
		{"EN", English, true},
		{" el ", Greek, true},
		{"gr", Greek, true},
		{"mkd", Macedonian, true},
		{"en-US", English, true},
		{"sr-RS", Serbian, true},
		{"", DefaultLanguage, false},
		{"xx-garbage-!!", DefaultLanguage, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLanguage(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestLanguageOrDefault(t *testing.T) {
	assert.Equal(t, English, LanguageOrDefault("en"))
	assert.Equal(t, Macedonian, LanguageOrDefault("klingon"))
}

func TestDefaultLabels_CoverEveryLanguage(t *testing.T) {
	labels := DefaultLabels()
	require.NotEmpty(t, labels)

	for category, byLang := range labels {
		for _, lang := range Languages {
			assert.NotEmpty(t, byLang[lang], "category %s missing %s", category, lang)
		}
	}
}

func TestLabels_Label(t *testing.T) {
	labels := DefaultLabels()

	assert.Equal(t, "Winery", labels.Label("winery", English))
	assert.Equal(t, "Винарија", labels.Label("WINERY", Macedonian))
	assert.Equal(t, "spa", labels.Label("spa", English))
}

func TestParseLabels_RejectsUnknownLanguage(t *testing.T) {
	_, err := ParseLabels([]byte("hotel:\n  de: Hotel\n"))
	assert.ErrorContains(t, err, "unsupported language")
}
