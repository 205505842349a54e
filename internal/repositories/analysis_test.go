package repositories

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"talentsieve/ats-analyzer/internal/models"
)

func validAnalyzedResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		ApplicantID:     uuid.New(),
		JobPostingID:    uuid.New(),
		EducationScore:  80,
		SkillsScore:     90,
		ExperienceScore: 100,
		OverallScore:    93,
		Category:        models.CategoryBestMatch,
		Status:          models.StatusAnalyzed,
	}
}

func TestValidateResult(t *testing.T) {
	t.Run("analyzed result passes", func(t *testing.T) {
		assert.NoError(t, validateResult(validAnalyzedResult()))
	})

	t.Run("unprocessed result passes", func(t *testing.T) {
		msg := "No parsed resume text available"
		res := &models.AnalysisResult{
			ApplicantID:  uuid.New(),
			JobPostingID: uuid.New(),
			Category:     models.CategoryUnprocessed,
			Status:       models.StatusUnprocessed,
			ErrorMessage: &msg,
		}
		assert.NoError(t, validateResult(res))
	})

	t.Run("nil result rejected", func(t *testing.T) {
		assert.Error(t, validateResult(nil))
	})

	t.Run("missing applicant id rejected", func(t *testing.T) {
		res := validAnalyzedResult()
		res.ApplicantID = uuid.Nil
		assert.Error(t, validateResult(res))
	})

	t.Run("missing job posting id rejected", func(t *testing.T) {
		res := validAnalyzedResult()
		res.JobPostingID = uuid.Nil
		assert.Error(t, validateResult(res))
	})

	t.Run("analyzed with unprocessed category rejected", func(t *testing.T) {
		res := validAnalyzedResult()
		res.Category = models.CategoryUnprocessed
		assert.Error(t, validateResult(res))
	})

	t.Run("unprocessed with score category rejected", func(t *testing.T) {
		res := validAnalyzedResult()
		res.Status = models.StatusUnprocessed
		assert.Error(t, validateResult(res))
	})

	t.Run("transient pending status rejected", func(t *testing.T) {
		res := validAnalyzedResult()
		res.Status = models.StatusPending
		assert.Error(t, validateResult(res))
	})
}
