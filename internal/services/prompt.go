package services

import (
	"fmt"
	"strings"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildClassificationPrompt creates the prompt that breaks raw resume text
// into the four categories the scoring stage consumes.
func (pb *PromptBuilder) BuildClassificationPrompt(resumeText string) string {
	return fmt.Sprintf(`You are an expert HR analyst. Break the following resume down into four categories.

RESUME:
%s

Return your response in the following JSON format:
{
  "professional_experience": ["<one entry per role or project, including duration and responsibilities>"],
  "education": ["<one entry per degree, certification or training>"],
  "skills": ["<one entry per technical or professional skill>"],
  "supplemental_info": ["<awards, publications, volunteering, languages, anything else notable>"]
}

Use empty arrays for categories the resume does not cover. Return ONLY the JSON object.`,
		resumeText)
}

// BuildScoringPrompt creates the prompt that scores classified resume data
// against the job posting's requirements.
func (pb *PromptBuilder) BuildScoringPrompt(classified *ClassifiedResume, jobRequirements, scoringContext string) string {
	return fmt.Sprintf(`You are an expert technical recruiter scoring a candidate against a job posting.

JOB REQUIREMENTS:
%s

SCORING CONTEXT:
%s

CANDIDATE PROFESSIONAL EXPERIENCE:
%s

CANDIDATE EDUCATION:
%s

CANDIDATE SKILLS:
%s

CANDIDATE SUPPLEMENTAL INFO:
%s

Score each dimension from 0 to 100 against the job requirements:
1. education_score - relevance and level of education for this role
2. skills_score - overlap between candidate skills and required skills
3. experience_score - years and relevance of experience versus the requirement
4. supplemental_score - strength of supplemental material (awards, publications, etc.)

Return your response in the following JSON format:
{
  "education_score": <0-100>,
  "skills_score": <0-100>,
  "experience_score": <0-100>,
  "supplemental_score": <0-100>
}

Return ONLY the JSON object, no commentary.`,
		jobRequirements,
		scoringContext,
		joinEntries(classified.ProfessionalExperience),
		joinEntries(classified.Education),
		joinEntries(classified.Skills),
		joinEntries(classified.SupplementalInfo),
	)
}

// BuildJustificationPrompt creates the prompt that produces one short
// justification per metric plus an overall one.
func (pb *PromptBuilder) BuildJustificationPrompt(scores MetricScores, overall int, category string, classified *ClassifiedResume, jobTitle string) string {
	return fmt.Sprintf(`You are an expert hiring manager explaining a candidate's scores for a %s position.

SCORES:
- Education: %d/100
- Skills: %d/100
- Experience: %d/100
- Supplemental: %d/100
- Overall: %d/100 (%s)

CANDIDATE SUMMARY:
Experience: %s
Education: %s
Skills: %s

Write one short justification (1-2 sentences) for each score, referencing concrete resume evidence.

Return your response in the following JSON format:
{
  "education_justification": "<1-2 sentences>",
  "skills_justification": "<1-2 sentences>",
  "experience_justification": "<1-2 sentences>",
  "supplemental_justification": "<1-2 sentences>",
  "overall_justification": "<1-2 sentences summarizing the fit>"
}

Return ONLY the JSON object.`,
		jobTitle,
		scores.Education,
		scores.Skills,
		scores.Experience,
		scores.Supplemental,
		overall,
		category,
		joinEntries(classified.ProfessionalExperience),
		joinEntries(classified.Education),
		joinEntries(classified.Skills),
	)
}

// BuildRetrievalQuery creates the query text used to fetch scoring context
// from the vector store.
func (pb *PromptBuilder) BuildRetrievalQuery(jobTitle, level string) string {
	return fmt.Sprintf("Scoring criteria and requirements for a %s %s position", level, jobTitle)
}

// FormatScoringContext renders retrieved context snippets for prompt use.
func FormatScoringContext(results []SearchResult) string {
	if len(results) == 0 {
		return "No additional context available."
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Context %d (Score: %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}

func joinEntries(entries []string) string {
	if len(entries) == 0 {
		return "(none listed)"
	}

	return "- " + strings.Join(entries, "\n- ")
}
