package domain

import (
	"encoding/json"

	"github.com/visitgevgelija/guide-server/internal/i18n"
)

// LocalizedText holds one string per guide language.
//
// Decoding never fails: a plain JSON string applies to every language, an
// object keeps its string values for supported languages, and anything else
// (null, numbers, nested garbage) decodes to empty text.
type LocalizedText map[i18n.Language]string

// Text builds LocalizedText from pairs of language and text.
func Text(pairs ...string) LocalizedText {
	t := make(LocalizedText, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		t[i18n.Language(pairs[i])] = pairs[i+1]
	}
	return t
}

// Get returns the text for lang, or "" when missing.
func (t LocalizedText) Get(lang i18n.Language) string {
	return t[lang]
}

// Or returns the text for lang, falling back to the first non-empty language
// in i18n.Languages order.
func (t LocalizedText) Or(lang i18n.Language) string {
	if s := t[lang]; s != "" {
		return s
	}
	for _, l := range i18n.Languages {
		if s := t[l]; s != "" {
			return s
		}
	}
	return ""
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *LocalizedText) UnmarshalJSON(data []byte) error {
	out := LocalizedText{}

	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		if plain != "" {
			for _, lang := range i18n.Languages {
				out[lang] = plain
			}
		}
		*t = out
		return nil
	}

	var byLang map[string]json.RawMessage
	if err := json.Unmarshal(data, &byLang); err == nil {
		for code, raw := range byLang {
			lang := i18n.Language(code)
			if !lang.Valid() {
				continue
			}
			var s string
			if json.Unmarshal(raw, &s) == nil {
				out[lang] = s
			}
		}
	}

	*t = out
	return nil
}
