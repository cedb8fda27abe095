package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryFor_Bands(t *testing.T) {
	cases := []struct {
		score int
		want  Category
	}{
		{1, CategoryLow},
		{4, CategoryLow},
		{5, CategoryMedium},
		{8, CategoryMedium},
		{9, CategoryHigh},
		{12, CategoryHigh},
		{13, CategoryCritical},
		{25, CategoryCritical},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CategoryFor(tc.score), "score %d", tc.score)
	}
}

func TestScore_FullMatrixMonotonic(t *testing.T) {
	rank := map[Category]int{CategoryLow: 0, CategoryMedium: 1, CategoryHigh: 2, CategoryCritical: 3}
	prevRank := 0
	for score := 1; score <= 25; score++ {
		r, ok := rank[CategoryFor(score)]
		assert.True(t, ok, "score %d maps to unknown category", score)
		assert.GreaterOrEqual(t, r, prevRank, "category rank regressed at score %d", score)
		prevRank = r
	}
	for impact := 1; impact <= 5; impact++ {
		for likelihood := 1; likelihood <= 5; likelihood++ {
			s := Score(impact, likelihood)
			assert.Equal(t, impact*likelihood, s)
			assert.GreaterOrEqual(t, s, 1)
			assert.LessOrEqual(t, s, 25)
		}
	}
}

func TestColor_CoversEveryCategory(t *testing.T) {
	assert.Equal(t, "green", Color(CategoryLow))
	assert.Equal(t, "yellow", Color(CategoryMedium))
	assert.Equal(t, "orange", Color(CategoryHigh))
	assert.Equal(t, "red", Color(CategoryCritical))
}
