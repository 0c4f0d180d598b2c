// Package shuffle orders category listings so paying listings lead while the
// rest of the page still varies from one load to the next.
package shuffle

import (
	"math/rand/v2"
	"strings"
)

// Source yields uniform integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// System is the unseeded process-wide source, safe for concurrent use.
var System Source = globalSource{}

// Seeded returns a deterministic source for tests and reproducible output.
func Seeded(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// PremiumFirst returns a new slice holding every item of items: the premium
// ones first, then the rest, each group uniformly shuffled with rng.
// items is not modified. A nil rng uses System.
func PremiumFirst[T any](items []T, isPremium func(T) bool, rng Source) []T {
	if rng == nil {
		rng = System
	}

	out := make([]T, 0, len(items))
	var rest []T
	for _, item := range items {
		if isPremium(item) {
			out = append(out, item)
		} else {
			rest = append(rest, item)
		}
	}
	premium := len(out)
	out = append(out, rest...)

	FisherYates(out[:premium], rng)
	FisherYates(out[premium:], rng)
	return out
}

// FisherYates shuffles items in place.
func FisherYates[T any](items []T, rng Source) {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// FilterCategory keeps the items whose category equals category, ignoring
// case. An empty category keeps everything.
func FilterCategory[T any](items []T, categoryOf func(T) string, category string) []T {
	category = strings.TrimSpace(category)
	if category == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if strings.EqualFold(categoryOf(item), category) {
			out = append(out, item)
		}
	}
	return out
}
