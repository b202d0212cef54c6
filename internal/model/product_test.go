package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Gold Standard Whey":     "gold-standard-whey",
		"  C4 Original  ":        "c4-original",
		"Bang & Bucked":          "bang-and-bucked",
		"Pre--Workout!!! 2.0":    "pre-workout-2-0",
		"Ghost® Legend":          "ghost-legend",
		"":                       "",
		"---":                    "",
		"Transparent Labs BULK ": "transparent-labs-bulk",
	}
	for in, want := range cases {
		require.Equal(t, want, Slugify(in), in)
	}
}

func TestCategoryTables(t *testing.T) {
	for _, c := range Categories() {
		table, err := c.DetailTable()
		require.NoError(t, err)
		require.NotEmpty(t, table)
		cols, err := c.DetailColumns()
		require.NoError(t, err)
		require.NotEmpty(t, cols)
		require.IsNonDecreasing(t, cols)
	}

	bcaa, _ := CategoryBCAA.DetailTable()
	eaa, _ := CategoryEAA.DetailTable()
	require.Equal(t, "amino_acid_details", bcaa)
	require.Equal(t, bcaa, eaa)

	fb, _ := CategoryFatBurner.DetailTable()
	as, _ := CategoryAppetiteSuppressant.DetailTable()
	require.Equal(t, "fat_burner_details", fb)
	require.Equal(t, fb, as)

	cr, _ := CategoryCreatine.DetailTable()
	require.Equal(t, "creatine_details", cr)

	_, err := Category("gummies").DetailTable()
	require.ErrorIs(t, err, ErrUnknownCategory)
	_, err = ParseCategory("gummies")
	require.ErrorIs(t, err, ErrUnknownCategory)
	c, err := ParseCategory("pre-workout")
	require.NoError(t, err)
	require.Equal(t, CategoryPreWorkout, c)
}

func TestNormalizeDetails(t *testing.T) {
	out, err := NormalizeDetails(CategoryPreWorkout, map[string]any{
		"caffeine_anhydrous_mg": float64(300),
		"serving_g":             12.5,
		"key_features":          []any{"pump", "focus"},
		"sugar_g":               nil,
	})
	require.NoError(t, err)
	require.Equal(t, int64(300), out["caffeine_anhydrous_mg"])
	require.Equal(t, 12.5, out["serving_g"])
	require.Equal(t, []string{"pump", "focus"}, out["key_features"])
	require.Nil(t, out["sugar_g"])

	out, err = NormalizeDetails(CategoryFatBurner, map[string]any{"stimulant_based": true})
	require.NoError(t, err)
	require.Equal(t, true, out["stimulant_based"])

	_, err = NormalizeDetails(CategoryProtein, map[string]any{"caffeine_mg": 1.0})
	require.ErrorIs(t, err, ErrInvalidDetail)
	_, err = NormalizeDetails(CategoryPreWorkout, map[string]any{"sugar_g": 1.5})
	require.ErrorIs(t, err, ErrInvalidDetail)
	_, err = NormalizeDetails(CategoryPreWorkout, map[string]any{"sugar_g": -1.0})
	require.ErrorIs(t, err, ErrInvalidDetail)
	_, err = NormalizeDetails(CategoryPreWorkout, map[string]any{"key_features": []any{1.0}})
	require.ErrorIs(t, err, ErrInvalidDetail)
	_, err = NormalizeDetails(CategoryFatBurner, map[string]any{"stimulant_based": "yes"})
	require.ErrorIs(t, err, ErrInvalidDetail)
	_, err = NormalizeDetails(CategoryCreatine, map[string]any{"creatine_type": 3.0})
	require.ErrorIs(t, err, ErrInvalidDetail)
	_, err = NormalizeDetails(Category("x"), nil)
	require.ErrorIs(t, err, ErrUnknownCategory)

	out, err = NormalizeDetails(CategoryPreWorkout, map[string]any{
		"caffeine_anhydrous_mg": float64(MaxDetailInt),
		"serving_g":             9999.994,
	})
	require.NoError(t, err)
	require.Equal(t, int64(MaxDetailInt), out["caffeine_anhydrous_mg"])
	require.Equal(t, 9999.99, out["serving_g"])

	tooLarge := []struct {
		category Category
		key      string
		value    any
	}{
		{CategoryPreWorkout, "caffeine_anhydrous_mg", 3e9},
		{CategoryPreWorkout, "caffeine_anhydrous_mg", 1e300},
		{CategoryPreWorkout, "serving_g", 123456.0},
		{CategoryPreWorkout, "serving_g", 9999.996},
		{CategoryProtein, "protein_claim_g", 1e300},
		{CategoryProtein, "protein_claim_g", math.Inf(1)},
		{CategoryProtein, "protein_claim_g", math.NaN()},
	}
	for _, tc := range tooLarge {
		_, err = NormalizeDetails(tc.category, map[string]any{tc.key: tc.value})
		require.ErrorIs(t, err, ErrInvalidDetail, tc.key)
		require.ErrorContains(t, err, tc.key)
	}
}

func TestValidConfidenceLevel(t *testing.T) {
	require.True(t, ValidConfidenceLevel("verified"))
	require.False(t, ValidConfidenceLevel("maybe"))
}
