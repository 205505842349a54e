package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type JobPosting struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title              string    `gorm:"type:text;not null" json:"title"`
	Description        string    `gorm:"type:text" json:"description"`
	RequiredSkills     string    `gorm:"type:text" json:"required_skills"`
	RequiredExperience int       `gorm:"not null;default:0" json:"required_experience"`
	Level              string    `gorm:"type:text" json:"level"`
	CreatedAt          time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt          time.Time `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (JobPosting) TableName() string {
	return "job_postings"
}

// RequiredSkillList splits the comma-joined skills column.
func (j *JobPosting) RequiredSkillList() []string {
	if j.RequiredSkills == "" {
		return nil
	}

	parts := strings.Split(j.RequiredSkills, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			skills = append(skills, s)
		}
	}

	return skills
}

// RequirementText renders the posting the way it is fed to prompts and to
// the vector store at indexing time.
func (j *JobPosting) RequirementText() string {
	return fmt.Sprintf(
		"Job Title: %s\nLevel: %s\nRequired Experience: %d years\nRequired Skills: %s\nDescription: %s",
		j.Title, j.Level, j.RequiredExperience, j.RequiredSkills, j.Description,
	)
}
