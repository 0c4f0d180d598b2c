package i18n

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed labels.yaml
var labelsYAML []byte

// Labels maps a category key to its translation per language.
type Labels map[string]map[Language]string

// ParseLabels decodes a YAML label table.
func ParseLabels(data []byte) (Labels, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode labels: %w", err)
	}

	labels := make(Labels, len(raw))
	for category, byLang := range raw {
		entry := make(map[Language]string, len(byLang))
		for code, text := range byLang {
			lang := Language(strings.ToLower(code))
			if !lang.Valid() {
				return nil, fmt.Errorf("category %q: unsupported language %q", category, code)
			}
			entry[lang] = text
		}
		labels[strings.ToLower(category)] = entry
	}
	return labels, nil
}

// DefaultLabels returns the embedded category label table.
func DefaultLabels() Labels {
	labels, err := ParseLabels(labelsYAML)
	if err != nil {
		panic(err)
	}
	return labels
}

// Label returns the localized label for category. Unknown categories and
// missing translations fall back to the raw key.
func (l Labels) Label(category string, lang Language) string {
	if byLang, ok := l[strings.ToLower(category)]; ok {
		if text := byLang[lang]; text != "" {
			return text
		}
	}
	return category
}
