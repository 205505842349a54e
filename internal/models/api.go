package models

type CreateJobRequest struct {
	Title              string `json:"title" validate:"required"`
	Description        string `json:"description"`
	RequiredSkills     string `json:"required_skills"`
	RequiredExperience int    `json:"required_experience"`
	Level              string `json:"level"`
}

type ApplicantResponse struct {
	ID             string `json:"id"`
	JobPostingID   string `json:"job_posting_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ResumeFilename string `json:"resume_filename"`
}

type StartAnalysisResponse struct {
	JobPostingID string `json:"job_posting_id"`
	Status       string `json:"status"`
	Total        int    `json:"total_applicants"`
}

type AnalysisProgressResponse struct {
	JobPostingID string `json:"job_posting_id"`
	Processed    int    `json:"processed"`
	Total        int    `json:"total"`
}
