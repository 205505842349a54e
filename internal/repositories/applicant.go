package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talentsieve/ats-analyzer/internal/models"
)

type ApplicantRepository interface {
	Create(applicant *models.Applicant) error
	FindByID(id uuid.UUID) (*models.Applicant, error)
	FindByJobPostingID(jobID uuid.UUID) ([]models.Applicant, error)
	ExistsByJobAndEmail(jobID uuid.UUID, email string) (bool, error)
}

type applicantRepository struct {
	db *gorm.DB
}

func NewApplicantRepository(db *gorm.DB) ApplicantRepository {
	return &applicantRepository{db: db}
}

// Create implements ApplicantRepository.
func (r *applicantRepository) Create(applicant *models.Applicant) error {
	if err := r.db.Create(applicant).Error; err != nil {
		return fmt.Errorf("failed to create applicant: %w", err)
	}

	return nil
}

// FindByID implements ApplicantRepository.
func (r *applicantRepository) FindByID(id uuid.UUID) (*models.Applicant, error) {
	var applicant models.Applicant
	if err := r.db.Where("id = ?", id).First(&applicant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("applicant not found: %w", err)
		}

		return nil, fmt.Errorf("failed to find applicant: %w", err)
	}

	return &applicant, nil
}

// FindByJobPostingID implements ApplicantRepository. Ordering by creation
// time keeps the orchestrator's batch slicing stable across runs.
func (r *applicantRepository) FindByJobPostingID(jobID uuid.UUID) ([]models.Applicant, error) {
	var applicants []models.Applicant
	err := r.db.
		Where("job_posting_id = ?", jobID).
		Order("created_at ASC").
		Find(&applicants).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find applicants: %w", err)
	}

	return applicants, nil
}

// ExistsByJobAndEmail implements ApplicantRepository.
func (r *applicantRepository) ExistsByJobAndEmail(jobID uuid.UUID, email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Applicant{}).
		Where("job_posting_id = ? AND email = ?", jobID, email).
		Count(&count).Error

	if err != nil {
		return false, fmt.Errorf("failed to check applicant: %w", err)
	}

	return count > 0, nil
}
