package repositories

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talentsieve/ats-analyzer/internal/models"
)

type AnalysisResultRepository interface {
	BulkUpsert(results []*models.AnalysisResult) error
	FindByJobPostingID(jobID uuid.UUID) ([]models.AnalysisResult, error)
	FindByApplicantID(applicantID uuid.UUID) (*models.AnalysisResult, error)
}

type analysisResultRepository struct {
	db        *gorm.DB
	chunkSize int
}

func NewAnalysisResultRepository(db *gorm.DB, chunkSize int) AnalysisResultRepository {
	if chunkSize <= 0 {
		chunkSize = 50
	}

	return &analysisResultRepository{db: db, chunkSize: chunkSize}
}

// BulkUpsert implements AnalysisResultRepository. Results are written in
// chunks with insert-or-update-on-conflict keyed on applicant_id, so a
// re-analyzed applicant keeps a single row and its original created_at.
// A record that fails validation is logged and dropped; the remaining
// records are still written.
func (r *analysisResultRepository) BulkUpsert(results []*models.AnalysisResult) error {
	records := make([]models.AnalysisResult, 0, len(results))
	now := time.Now()

	for _, res := range results {
		if err := validateResult(res); err != nil {
			log.Printf("⚠️  Skipping malformed analysis result: %v\n", err)
			continue
		}

		record := *res
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
		record.UpdatedAt = now
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "applicant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"job_posting_id",
			"education_score",
			"skills_score",
			"experience_score",
			"supplemental_score",
			"overall_score",
			"category",
			"status",
			"education_justification",
			"skills_justification",
			"experience_justification",
			"supplemental_justification",
			"overall_justification",
			"error_message",
			"updated_at",
		}),
	}).CreateInBatches(&records, r.chunkSize).Error

	if err != nil {
		return fmt.Errorf("failed to bulk upsert analysis results: %w", err)
	}

	return nil
}

// FindByJobPostingID implements AnalysisResultRepository.
func (r *analysisResultRepository) FindByJobPostingID(jobID uuid.UUID) ([]models.AnalysisResult, error) {
	var results []models.AnalysisResult
	err := r.db.
		Where("job_posting_id = ?", jobID).
		Order("overall_score DESC, applicant_id ASC").
		Find(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find analysis results: %w", err)
	}

	return results, nil
}

// FindByApplicantID implements AnalysisResultRepository.
func (r *analysisResultRepository) FindByApplicantID(applicantID uuid.UUID) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	if err := r.db.Where("applicant_id = ?", applicantID).First(&result).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("analysis result not found")
		}
		return nil, fmt.Errorf("failed to find analysis result: %w", err)
	}

	return &result, nil
}

// validateResult guards the upsert against half-built records. Analyzed
// results must carry a category consistent with their overall score;
// unprocessed results must carry the Unprocessed category.
func validateResult(res *models.AnalysisResult) error {
	if res == nil {
		return fmt.Errorf("nil result")
	}
	if res.ApplicantID == uuid.Nil {
		return fmt.Errorf("missing applicant id")
	}
	if res.JobPostingID == uuid.Nil {
		return fmt.Errorf("missing job posting id for applicant %s", res.ApplicantID)
	}

	switch res.Status {
	case models.StatusAnalyzed:
		if res.Category == models.CategoryUnprocessed || res.Category == "" {
			return fmt.Errorf("analyzed result for applicant %s has category %q", res.ApplicantID, res.Category)
		}
	case models.StatusUnprocessed:
		if res.Category != models.CategoryUnprocessed {
			return fmt.Errorf("unprocessed result for applicant %s has category %q", res.ApplicantID, res.Category)
		}
	default:
		return fmt.Errorf("result for applicant %s has transient status %q", res.ApplicantID, res.Status)
	}

	return nil
}
