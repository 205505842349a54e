package models

import (
	"time"

	"github.com/google/uuid"
)

type AnalysisStatus string

const (
	StatusPending     AnalysisStatus = "pending"
	StatusAnalyzed    AnalysisStatus = "analyzed"
	StatusUnprocessed AnalysisStatus = "unprocessed"
)

type MatchCategory string

const (
	CategoryBestMatch    MatchCategory = "Best Match"
	CategoryGoodMatch    MatchCategory = "Good Match"
	CategoryPartialMatch MatchCategory = "Partial Match"
	CategoryMismatched   MatchCategory = "Mismatched"
	CategoryUnprocessed  MatchCategory = "Unprocessed"
)

// AnalysisResult holds one applicant's scored evaluation against a job
// posting. ApplicantID carries a unique index: re-running an analysis
// overwrites the previous result instead of adding a second row.
type AnalysisResult struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ApplicantID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"applicant_id"`
	JobPostingID uuid.UUID `gorm:"type:uuid;not null" json:"job_posting_id"`

	EducationScore    int `gorm:"not null;default:0" json:"education_score"`
	SkillsScore       int `gorm:"not null;default:0" json:"skills_score"`
	ExperienceScore   int `gorm:"not null;default:0" json:"experience_score"`
	SupplementalScore int `gorm:"not null;default:0" json:"supplemental_score"`
	OverallScore      int `gorm:"not null;default:0" json:"overall_score"`

	Category MatchCategory  `gorm:"type:text;not null;default:'Unprocessed'" json:"category"`
	Status   AnalysisStatus `gorm:"type:text;not null;default:'pending'" json:"status"`

	EducationJustification    string `gorm:"type:text" json:"education_justification,omitempty"`
	SkillsJustification       string `gorm:"type:text" json:"skills_justification,omitempty"`
	ExperienceJustification   string `gorm:"type:text" json:"experience_justification,omitempty"`
	SupplementalJustification string `gorm:"type:text" json:"supplemental_justification,omitempty"`
	OverallJustification      string `gorm:"type:text" json:"overall_justification,omitempty"`

	ErrorMessage *string   `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Applicant Applicant `gorm:"foreignKey:ApplicantID" json:"-"`
}

func (AnalysisResult) TableName() string {
	return "analysis_results"
}
