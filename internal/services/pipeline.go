package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"talentsieve/ats-analyzer/internal/models"
)

const (
	errNoResumeText = "No parsed resume text available"

	// Upper bound on a stored error message.
	maxErrorMessageLen = 500
)

// ClassifiedResume is the classification stage's structured breakdown of
// raw resume text.
type ClassifiedResume struct {
	ProfessionalExperience []string `json:"professional_experience"`
	Education              []string `json:"education"`
	Skills                 []string `json:"skills"`
	SupplementalInfo       []string `json:"supplemental_info"`
}

// MetricScores holds the four per-dimension scores, each clamped to [0,100].
type MetricScores struct {
	Education    int
	Skills       int
	Experience   int
	Supplemental int
}

type justificationSet struct {
	Education    string `json:"education_justification"`
	Skills       string `json:"skills_justification"`
	Experience   string `json:"experience_justification"`
	Supplemental string `json:"supplemental_justification"`
	Overall      string `json:"overall_justification"`
}

// ApplicantPipeline turns one (applicant, job) pair into exactly one
// analysis result. It never returns an error: hard failures in any stage
// produce an Unprocessed result carrying the failure message. Each
// invocation touches no shared state, so many can run concurrently.
type ApplicantPipeline interface {
	Evaluate(ctx context.Context, applicant *models.Applicant, job *models.JobPosting) *models.AnalysisResult
}

type applicantPipeline struct {
	geminiService GeminiService
	qdrantService QdrantService
	promptBuilder *PromptBuilder
	maxRetries    int
	llmTimeout    time.Duration
}

// NewApplicantPipeline builds the five-stage evaluation pipeline. The
// vector store is optional: when nil, scoring runs without retrieved
// context.
func NewApplicantPipeline(
	geminiService GeminiService,
	qdrantService QdrantService,
	maxRetries int,
	llmTimeout time.Duration,
) ApplicantPipeline {
	return &applicantPipeline{
		geminiService: geminiService,
		qdrantService: qdrantService,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
		llmTimeout:    llmTimeout,
	}
}

// Evaluate implements ApplicantPipeline. Stages run strictly in order:
// retrieval guard, classification, scoring, categorization, justification.
func (p *applicantPipeline) Evaluate(ctx context.Context, applicant *models.Applicant, job *models.JobPosting) *models.AnalysisResult {
	// Stage 1: retrieval guard.
	resumeText := strings.TrimSpace(applicant.ResumeText)
	if resumeText == "" {
		return p.unprocessed(applicant, job, errNoResumeText)
	}

	// Stage 2: classification. Parse failures degrade to an empty
	// structure; only hard call failures mark the applicant Unprocessed.
	classified, err := p.classify(ctx, resumeText)
	if err != nil {
		return p.unprocessed(applicant, job, err.Error())
	}

	// Stage 3: scoring.
	scores, err := p.score(ctx, classified, job)
	if err != nil {
		return p.unprocessed(applicant, job, err.Error())
	}

	// Stage 4: categorization. Pure computation, no external call.
	overall := OverallScore(scores.Education, scores.Skills, scores.Experience)
	category := CategoryForScore(overall)

	// Stage 5: justification. Only after this stage does the result leave
	// its pending state.
	justifications, err := p.justify(ctx, scores, overall, category, classified, job)
	if err != nil {
		return p.unprocessed(applicant, job, err.Error())
	}

	return &models.AnalysisResult{
		ApplicantID:               applicant.ID,
		JobPostingID:              job.ID,
		EducationScore:            scores.Education,
		SkillsScore:               scores.Skills,
		ExperienceScore:           scores.Experience,
		SupplementalScore:         scores.Supplemental,
		OverallScore:              overall,
		Category:                  category,
		Status:                    models.StatusAnalyzed,
		EducationJustification:    justifications.Education,
		SkillsJustification:       justifications.Skills,
		ExperienceJustification:   justifications.Experience,
		SupplementalJustification: justifications.Supplemental,
		OverallJustification:      justifications.Overall,
	}
}

func (p *applicantPipeline) classify(ctx context.Context, resumeText string) (*ClassifiedResume, error) {
	callCtx, cancel := p.callContext(ctx)
	defer cancel()

	prompt := p.promptBuilder.BuildClassificationPrompt(resumeText)

	response, err := p.geminiService.GenerateJSONWithRetry(callCtx, prompt, 0.2, p.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	var classified ClassifiedResume
	if err := parseJSONResponse(response, &classified); err != nil {
		log.Printf("⚠️  Classification response was not valid JSON, continuing with empty breakdown: %v\n", err)
		return &ClassifiedResume{}, nil
	}

	return &classified, nil
}

func (p *applicantPipeline) score(ctx context.Context, classified *ClassifiedResume, job *models.JobPosting) (MetricScores, error) {
	callCtx, cancel := p.callContext(ctx)
	defer cancel()

	scoringContext := p.retrieveScoringContext(callCtx, job)
	prompt := p.promptBuilder.BuildScoringPrompt(classified, job.RequirementText(), scoringContext)

	response, err := p.geminiService.GenerateJSONWithRetry(callCtx, prompt, 0.2, p.maxRetries)
	if err != nil {
		return MetricScores{}, fmt.Errorf("scoring failed: %w", err)
	}

	// Missing keys default to zero, out-of-range values are clamped.
	var raw struct {
		Education    float64 `json:"education_score"`
		Skills       float64 `json:"skills_score"`
		Experience   float64 `json:"experience_score"`
		Supplemental float64 `json:"supplemental_score"`
	}
	if err := parseJSONResponse(response, &raw); err != nil {
		log.Printf("⚠️  Scoring response was not valid JSON, continuing with zero scores: %v\n", err)
		return MetricScores{}, nil
	}

	return MetricScores{
		Education:    ValidateScore(raw.Education),
		Skills:       ValidateScore(raw.Skills),
		Experience:   ValidateScore(raw.Experience),
		Supplemental: ValidateScore(raw.Supplemental),
	}, nil
}

func (p *applicantPipeline) justify(
	ctx context.Context,
	scores MetricScores,
	overall int,
	category models.MatchCategory,
	classified *ClassifiedResume,
	job *models.JobPosting,
) (*justificationSet, error) {
	callCtx, cancel := p.callContext(ctx)
	defer cancel()

	prompt := p.promptBuilder.BuildJustificationPrompt(scores, overall, string(category), classified, job.Title)

	response, err := p.geminiService.GenerateJSONWithRetry(callCtx, prompt, 0.5, p.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("justification failed: %w", err)
	}

	var justifications justificationSet
	if err := parseJSONResponse(response, &justifications); err != nil {
		log.Printf("⚠️  Justification response was not valid JSON, synthesizing from scores: %v\n", err)
		return synthesizeJustifications(scores, overall, category), nil
	}

	// A partially filled response still gets complete text.
	fallback := synthesizeJustifications(scores, overall, category)
	if justifications.Education == "" {
		justifications.Education = fallback.Education
	}
	if justifications.Skills == "" {
		justifications.Skills = fallback.Skills
	}
	if justifications.Experience == "" {
		justifications.Experience = fallback.Experience
	}
	if justifications.Supplemental == "" {
		justifications.Supplemental = fallback.Supplemental
	}
	if justifications.Overall == "" {
		justifications.Overall = fallback.Overall
	}

	return &justifications, nil
}

// retrieveScoringContext fetches rubric/requirement snippets from the
// vector store. Retrieval is best-effort: on any failure the pipeline
// continues with an empty context.
func (p *applicantPipeline) retrieveScoringContext(ctx context.Context, job *models.JobPosting) string {
	if p.qdrantService == nil {
		return FormatScoringContext(nil)
	}

	query := p.promptBuilder.BuildRetrievalQuery(job.Title, job.Level)
	embedding, err := p.geminiService.GenerateEmbedding(ctx, query)
	if err != nil {
		log.Printf("⚠️  Failed to embed scoring query: %v\n", err)
		return FormatScoringContext(nil)
	}

	var results []SearchResult
	for _, docType := range []string{"scoring_rubric", "job_requirements"} {
		found, err := p.qdrantService.SearchSimilar(ctx, embedding, docType, 3)
		if err != nil {
			log.Printf("⚠️  Failed to search %s context: %v\n", docType, err)
			continue
		}
		results = append(results, found...)
	}

	return FormatScoringContext(results)
}

func (p *applicantPipeline) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.llmTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, p.llmTimeout)
}

func (p *applicantPipeline) unprocessed(applicant *models.Applicant, job *models.JobPosting, message string) *models.AnalysisResult {
	msg := truncateError(message)

	return &models.AnalysisResult{
		ApplicantID:  applicant.ID,
		JobPostingID: job.ID,
		Category:     models.CategoryUnprocessed,
		Status:       models.StatusUnprocessed,
		ErrorMessage: &msg,
	}
}

func synthesizeJustifications(scores MetricScores, overall int, category models.MatchCategory) *justificationSet {
	return &justificationSet{
		Education:    fmt.Sprintf("Education scored %d/100 against the role requirements.", scores.Education),
		Skills:       fmt.Sprintf("Skills scored %d/100 against the role requirements.", scores.Skills),
		Experience:   fmt.Sprintf("Experience scored %d/100 against the role requirements.", scores.Experience),
		Supplemental: fmt.Sprintf("Supplemental material scored %d/100.", scores.Supplemental),
		Overall:      fmt.Sprintf("Overall score %d/100, categorized as %s.", overall, category),
	}
}

func truncateError(message string) string {
	if len(message) > maxErrorMessageLen {
		return message[:maxErrorMessageLen]
	}

	return message
}

func parseJSONResponse(response string, target interface{}) error {
	// LLM output may wrap the JSON in markdown fences or prose.
	jsonStr := extractJSON(response)

	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return nil
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}
