package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"talentsieve/ats-analyzer/internal/models"
)

func TestValidateScore_ClampsToRange(t *testing.T) {
	tests := []struct {
		name string
		raw  float64
		want int
	}{
		{"above range", 150, 100},
		{"below range", -10, 0},
		{"fractional floors", 85.5, 85},
		{"zero", 0, 0},
		{"upper bound", 100, 100},
		{"in range", 42, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateScore(tt.raw))
		})
	}
}

func TestOverallScore_WeightedFloor(t *testing.T) {
	// floor(100*0.5 + 90*0.3 + 80*0.2) = floor(50 + 27 + 16) = 93
	assert.Equal(t, 93, OverallScore(80, 90, 100))

	// Supplemental never participates; only the three weighted metrics do.
	assert.Equal(t, 0, OverallScore(0, 0, 0))
	assert.Equal(t, 100, OverallScore(100, 100, 100))

	// floor(33*0.5 + 33*0.3 + 33*0.2) = floor(33.0) = 33
	assert.Equal(t, 33, OverallScore(33, 33, 33))

	// floor(1*0.5 + 0*0.3 + 0*0.2) = 0
	assert.Equal(t, 0, OverallScore(0, 0, 1))
}

func TestOverallScore_StaysInRange(t *testing.T) {
	for _, edu := range []int{0, 50, 100} {
		for _, skills := range []int{0, 50, 100} {
			for _, exp := range []int{0, 50, 100} {
				overall := OverallScore(edu, skills, exp)
				assert.GreaterOrEqual(t, overall, 0)
				assert.LessOrEqual(t, overall, 100)
			}
		}
	}
}

func TestCategoryForScore_BandBoundaries(t *testing.T) {
	tests := []struct {
		overall int
		want    models.MatchCategory
	}{
		{0, models.CategoryMismatched},
		{49, models.CategoryMismatched},
		{50, models.CategoryPartialMatch},
		{69, models.CategoryPartialMatch},
		{70, models.CategoryGoodMatch},
		{89, models.CategoryGoodMatch},
		{90, models.CategoryBestMatch},
		{100, models.CategoryBestMatch},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CategoryForScore(tt.overall), "overall=%d", tt.overall)
	}
}
