package models

import (
	"time"

	"github.com/google/uuid"
)

type Applicant struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobPostingID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_applicants_job_email" json:"job_posting_id"`
	Name           string    `gorm:"type:text;not null" json:"name"`
	Email          string    `gorm:"type:text;not null;uniqueIndex:idx_applicants_job_email" json:"email"`
	ResumeFilename string    `gorm:"type:text" json:"resume_filename"`
	ResumeFilePath string    `gorm:"type:text" json:"-"`
	ResumeText     string    `gorm:"type:text" json:"-"`
	CreatedAt      time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt      time.Time `gorm:"type:timestamp;default:now()" json:"updated_at"`

	// Relations
	JobPosting JobPosting `gorm:"foreignKey:JobPostingID" json:"-"`
}

func (Applicant) TableName() string {
	return "applicants"
}
