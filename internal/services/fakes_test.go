package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"talentsieve/ats-analyzer/internal/models"
)

// fakeGemini dispatches scripted responses by prompt content, so tests do
// not depend on stage call ordering.
type fakeGemini struct {
	mu             sync.Mutex
	classification string
	scoring        string
	justification  string
	err            error
	calls          []string
}

func (f *fakeGemini) respond(prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}

	switch {
	case strings.Contains(prompt, "Break the following resume"):
		f.calls = append(f.calls, "classification")
		return f.classification, nil
	case strings.Contains(prompt, "Score each dimension"):
		f.calls = append(f.calls, "scoring")
		return f.scoring, nil
	case strings.Contains(prompt, "explaining a candidate's scores"):
		f.calls = append(f.calls, "justification")
		return f.justification, nil
	default:
		return "", fmt.Errorf("unexpected prompt: %s", prompt)
	}
}

func (f *fakeGemini) GenerateText(_ context.Context, prompt string, _ float32) (string, error) {
	return f.respond(prompt)
}

func (f *fakeGemini) GenerateJSON(_ context.Context, prompt string, _ float32) (string, error) {
	return f.respond(prompt)
}

func (f *fakeGemini) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, _ int) (string, error) {
	return f.GenerateText(ctx, prompt, temperature)
}

func (f *fakeGemini) GenerateJSONWithRetry(ctx context.Context, prompt string, temperature float32, _ int) (string, error) {
	return f.GenerateJSON(ctx, prompt, temperature)
}

func (f *fakeGemini) GenerateEmbedding(context.Context, string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

// memoryCoordinator is an in-memory Coordinator with the redis
// implementation's semantics minus TTL expiry.
type memoryCoordinator struct {
	mu        sync.Mutex
	locks     map[string]bool
	cancelled map[string]bool
	progress  map[string]AnalysisProgress
}

func newMemoryCoordinator() *memoryCoordinator {
	return &memoryCoordinator{
		locks:     make(map[string]bool),
		cancelled: make(map[string]bool),
		progress:  make(map[string]AnalysisProgress),
	}
}

func (m *memoryCoordinator) AcquireLock(_ context.Context, jobID string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.locks[jobID] {
		return false, nil
	}
	m.locks[jobID] = true
	return true, nil
}

func (m *memoryCoordinator) ReleaseLock(_ context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.locks, jobID)
	return nil
}

func (m *memoryCoordinator) RequestCancellation(_ context.Context, jobID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancelled[jobID] = true
	return nil
}

func (m *memoryCoordinator) IsCancellationRequested(_ context.Context, jobID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.cancelled[jobID], nil
}

func (m *memoryCoordinator) UpdateProgress(_ context.Context, jobID string, processed, total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.progress[jobID] = AnalysisProgress{Processed: processed, Total: total}
	return nil
}

func (m *memoryCoordinator) GetProgress(_ context.Context, jobID string) (*AnalysisProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.progress[jobID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memoryCoordinator) lockHeld(jobID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.locks[jobID]
}

// cancelAfterChecks flips to cancelled once IsCancellationRequested has
// been polled n times, simulating a cancel request landing mid-run.
type cancelAfterChecks struct {
	*memoryCoordinator
	mu     sync.Mutex
	checks int
	after  int
}

func (c *cancelAfterChecks) IsCancellationRequested(_ context.Context, _ string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checks++
	return c.checks > c.after, nil
}

// fakeJobRepo serves a single job posting.
type fakeJobRepo struct {
	job *models.JobPosting
}

func (f *fakeJobRepo) Create(*models.JobPosting) error { return nil }

func (f *fakeJobRepo) FindByID(id uuid.UUID) (*models.JobPosting, error) {
	if f.job == nil || f.job.ID != id {
		return nil, fmt.Errorf("job posting not found")
	}
	return f.job, nil
}

type fakeApplicantRepo struct {
	applicants []models.Applicant
}

func (f *fakeApplicantRepo) Create(*models.Applicant) error { return nil }

func (f *fakeApplicantRepo) FindByID(id uuid.UUID) (*models.Applicant, error) {
	for i := range f.applicants {
		if f.applicants[i].ID == id {
			return &f.applicants[i], nil
		}
	}
	return nil, fmt.Errorf("applicant not found")
}

func (f *fakeApplicantRepo) FindByJobPostingID(uuid.UUID) ([]models.Applicant, error) {
	return f.applicants, nil
}

func (f *fakeApplicantRepo) ExistsByJobAndEmail(uuid.UUID, string) (bool, error) {
	return false, nil
}

// fakeAnalysisRepo records BulkUpsert calls.
type fakeAnalysisRepo struct {
	mu       sync.Mutex
	upserted [][]*models.AnalysisResult
}

func (f *fakeAnalysisRepo) BulkUpsert(results []*models.AnalysisResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.upserted = append(f.upserted, results)
	return nil
}

func (f *fakeAnalysisRepo) FindByJobPostingID(uuid.UUID) ([]models.AnalysisResult, error) {
	return nil, nil
}

func (f *fakeAnalysisRepo) FindByApplicantID(uuid.UUID) (*models.AnalysisResult, error) {
	return nil, fmt.Errorf("analysis result not found")
}

func (f *fakeAnalysisRepo) persistCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.upserted)
}

func (f *fakeAnalysisRepo) persistedResults() []*models.AnalysisResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []*models.AnalysisResult
	for _, batch := range f.upserted {
		all = append(all, batch...)
	}
	return all
}

// stubPipeline marks every applicant analyzed with a fixed score.
type stubPipeline struct {
	mu        sync.Mutex
	evaluated int
}

func (s *stubPipeline) Evaluate(_ context.Context, applicant *models.Applicant, job *models.JobPosting) *models.AnalysisResult {
	s.mu.Lock()
	s.evaluated++
	s.mu.Unlock()

	overall := OverallScore(80, 90, 100)
	return &models.AnalysisResult{
		ApplicantID:       applicant.ID,
		JobPostingID:      job.ID,
		EducationScore:    80,
		SkillsScore:       90,
		ExperienceScore:   100,
		SupplementalScore: 50,
		OverallScore:      overall,
		Category:          CategoryForScore(overall),
		Status:            models.StatusAnalyzed,
	}
}

func makeApplicants(jobID uuid.UUID, n int) []models.Applicant {
	applicants := make([]models.Applicant, n)
	for i := range applicants {
		applicants[i] = models.Applicant{
			ID:           uuid.New(),
			JobPostingID: jobID,
			Name:         fmt.Sprintf("Applicant %d", i+1),
			Email:        fmt.Sprintf("applicant%d@example.com", i+1),
			ResumeText:   "Ten years of backend engineering experience with Go and Postgres.",
		}
	}
	return applicants
}
