package services

import (
	"math"

	"talentsieve/ats-analyzer/internal/models"
)

// Weights for the overall score, in percent. Supplemental information is
// tracked as its own metric but excluded from the overall computation.
const (
	experienceWeightPct = 50
	skillsWeightPct     = 30
	educationWeightPct  = 20
)

// ValidateScore clamps a raw model-reported score into [0,100], flooring
// fractional values.
func ValidateScore(raw float64) int {
	if math.IsNaN(raw) || raw < 0 {
		return 0
	}
	if raw > 100 {
		return 100
	}

	return int(math.Floor(raw))
}

// OverallScore computes the weighted overall score from the three metrics
// that participate in it: floor(experience*0.50 + skills*0.30 + education*0.20).
// Integer arithmetic keeps the floor exact.
func OverallScore(education, skills, experience int) int {
	weighted := experience*experienceWeightPct +
		skills*skillsWeightPct +
		education*educationWeightPct

	return weighted / 100
}

// CategoryForScore maps an overall score onto its match band. Band bounds
// are inclusive on the lower end: 90-100 Best, 70-89 Good, 50-69 Partial,
// 0-49 Mismatched.
func CategoryForScore(overall int) models.MatchCategory {
	switch {
	case overall >= 90:
		return models.CategoryBestMatch
	case overall >= 70:
		return models.CategoryGoodMatch
	case overall >= 50:
		return models.CategoryPartialMatch
	default:
		return models.CategoryMismatched
	}
}
