package shuffle

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id       string
	tier     string
	category string
}

func isPremium(i item) bool { return i.tier == "premium" }

func ids(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.id
	}
	return out
}

func TestPremiumFirst_GroupsPremiumAhead(t *testing.T) {
	input := []item{
		{id: "A", tier: "premium"},
		{id: "B", tier: "standard"},
		{id: "C", tier: "premium"},
		{id: "D", tier: "free"},
	}

	for seed := range uint64(200) {
		out := ids(PremiumFirst(input, isPremium, Seeded(seed)))

		require.Len(t, out, 4)
		assert.ElementsMatch(t, []string{"A", "C"}, out[:2], "seed %d", seed)
		assert.ElementsMatch(t, []string{"B", "D"}, out[2:], "seed %d", seed)
	}
}

func TestPremiumFirst_IsPermutation(t *testing.T) {
	inputs := [][]item{
		nil,
		{},
		{{id: "solo"}},
		{{id: "1", tier: "premium"}, {id: "2", tier: "premium"}, {id: "3", tier: "premium"}},
		{{id: "1"}, {id: "2"}, {id: "3"}, {id: "4"}, {id: "5"}},
		{{id: "dup"}, {id: "dup", tier: "premium"}, {id: "dup"}},
	}

	for _, input := range inputs {
		out := PremiumFirst(input, isPremium, Seeded(7))
		assert.ElementsMatch(t, ids(input), ids(out))
		assert.NotNil(t, out)
	}
}

func TestPremiumFirst_NeverNonPremiumBeforePremium(t *testing.T) {
	input := make([]item, 0, 30)
	for i := range 30 {
		tier := "free"
		if i%4 == 0 {
			tier = "premium"
		}
		input = append(input, item{id: string(rune('a' + i)), tier: tier})
	}

	for seed := range uint64(50) {
		out := PremiumFirst(input, isPremium, Seeded(seed))
		seenNonPremium := false
		for _, it := range out {
			if !isPremium(it) {
				seenNonPremium = true
			} else {
				assert.False(t, seenNonPremium, "premium %s after a non-premium item", it.id)
			}
		}
	}
}

func TestPremiumFirst_DoesNotMutateInput(t *testing.T) {
	input := []item{{id: "1"}, {id: "2", tier: "premium"}, {id: "3"}}
	before := slices.Clone(input)

	_ = PremiumFirst(input, isPremium, Seeded(1))
	assert.Equal(t, before, input)
}

func TestPremiumFirst_SeededIsDeterministic(t *testing.T) {
	input := []item{{id: "1"}, {id: "2"}, {id: "3"}, {id: "4"}, {id: "5"}, {id: "6"}}

	first := ids(PremiumFirst(input, isPremium, Seeded(42)))
	second := ids(PremiumFirst(input, isPremium, Seeded(42)))
	assert.Equal(t, first, second)
}

func TestPremiumFirst_NilSourceUsesSystem(t *testing.T) {
	input := []item{{id: "1"}, {id: "2", tier: "premium"}}
	out := PremiumFirst(input, isPremium, nil)
	assert.Equal(t, "2", out[0].id)
}

// Each of the 6 orderings of three items should show up roughly equally often.
func TestFisherYates_Uniform(t *testing.T) {
	rng := Seeded(2024)
	counts := map[string]int{}
	const rounds = 6000

	for range rounds {
		s := []string{"x", "y", "z"}
		FisherYates(s, rng)
		counts[s[0]+s[1]+s[2]]++
	}

	require.Len(t, counts, 6)
	for perm, n := range counts {
		assert.InDelta(t, rounds/6, n, rounds/6*0.2, "permutation %s", perm)
	}
}

func TestFilterCategory(t *testing.T) {
	input := []item{{id: "1", category: "Hotel"}, {id: "2", category: "apartment"}, {id: "3", category: "hotel"}}
	categoryOf := func(i item) string { return i.category }

	assert.Equal(t, []string{"1", "3"}, ids(FilterCategory(input, categoryOf, "hotel")))
	assert.Equal(t, []string{"1", "2", "3"}, ids(FilterCategory(input, categoryOf, "  ")))
	assert.Empty(t, FilterCategory(input, categoryOf, "villa"))
}
