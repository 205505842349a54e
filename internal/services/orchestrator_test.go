package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentsieve/ats-analyzer/internal/config"
	"talentsieve/ats-analyzer/internal/models"
)

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		BatchSize:        10,
		MaxWorkers:       32,
		LockTTL:          5 * time.Minute,
		CancelTTL:        time.Minute,
		PersistChunkSize: 50,
	}
}

func newTestOrchestrator(
	job *models.JobPosting,
	applicants []models.Applicant,
	pipeline ApplicantPipeline,
	coordinator Coordinator,
) (AnalysisOrchestrator, *fakeAnalysisRepo) {
	analysisRepo := &fakeAnalysisRepo{}
	orch := NewAnalysisOrchestrator(
		&fakeJobRepo{job: job},
		&fakeApplicantRepo{applicants: applicants},
		analysisRepo,
		pipeline,
		coordinator,
		testAnalysisConfig(),
	)
	return orch, analysisRepo
}

func TestStart_ZeroApplicants(t *testing.T) {
	job := testJob()
	coordinator := newMemoryCoordinator()
	orch, analysisRepo := newTestOrchestrator(job, nil, &stubPipeline{}, coordinator)

	resp, err := orch.Start(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Total)

	orch.Wait()

	assert.Equal(t, 0, analysisRepo.persistCalls(), "no persistence call for an empty run")
	assert.False(t, coordinator.lockHeld(job.ID.String()), "lock released after empty run")

	progress, err := coordinator.GetProgress(context.Background(), job.ID.String())
	require.NoError(t, err)
	require.NotNil(t, progress)
	assert.Equal(t, 0, progress.Processed)
	assert.Equal(t, 0, progress.Total)
}

func TestStart_UnknownJob(t *testing.T) {
	orch, _ := newTestOrchestrator(testJob(), nil, &stubPipeline{}, newMemoryCoordinator())

	_, err := orch.Start(context.Background(), uuid.New())
	require.Error(t, err)
}

func TestStart_AlreadyRunning(t *testing.T) {
	job := testJob()
	coordinator := newMemoryCoordinator()

	acquired, err := coordinator.AcquireLock(context.Background(), job.ID.String(), time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	orch, analysisRepo := newTestOrchestrator(job, makeApplicants(job.ID, 3), &stubPipeline{}, coordinator)

	_, err = orch.Start(context.Background(), job.ID)
	assert.ErrorIs(t, err, ErrAnalysisAlreadyRunning)

	orch.Wait()
	assert.Equal(t, 0, analysisRepo.persistCalls(), "rejected start performs no work")
	assert.True(t, coordinator.lockHeld(job.ID.String()), "foreign lock is not released")
}

func TestRun_PersistsAllResultsAndReleasesLock(t *testing.T) {
	job := testJob()
	coordinator := newMemoryCoordinator()
	pipeline := &stubPipeline{}
	orch, analysisRepo := newTestOrchestrator(job, makeApplicants(job.ID, 25), pipeline, coordinator)

	_, err := orch.Start(context.Background(), job.ID)
	require.NoError(t, err)
	orch.Wait()

	results := analysisRepo.persistedResults()
	assert.Len(t, results, 25)
	assert.Equal(t, 25, pipeline.evaluated)
	assert.False(t, coordinator.lockHeld(job.ID.String()))

	progress, err := coordinator.GetProgress(context.Background(), job.ID.String())
	require.NoError(t, err)
	require.NotNil(t, progress)
	assert.Equal(t, 25, progress.Processed)
	assert.Equal(t, 25, progress.Total)

	for _, res := range results {
		assert.Equal(t, models.StatusAnalyzed, res.Status)
		assert.Equal(t, models.CategoryBestMatch, res.Category)
		assert.Equal(t, 93, res.OverallScore)
	}
}

// Cancellation observed after the first batch boundary keeps that batch's
// results: 25 applicants at batch size 10 persist exactly 10.
func TestRun_CancellationPreservesPartialResults(t *testing.T) {
	job := testJob()
	coordinator := &cancelAfterChecks{memoryCoordinator: newMemoryCoordinator(), after: 1}
	pipeline := &stubPipeline{}
	orch, analysisRepo := newTestOrchestrator(job, makeApplicants(job.ID, 25), pipeline, coordinator)

	_, err := orch.Start(context.Background(), job.ID)
	require.NoError(t, err)
	orch.Wait()

	assert.Len(t, analysisRepo.persistedResults(), 10)
	assert.Equal(t, 10, pipeline.evaluated)
	assert.False(t, coordinator.lockHeld(job.ID.String()), "lock released after cancelled run")
}

// One panicking worker becomes an Unprocessed result for that applicant
// without aborting its batch siblings.
func TestRun_WorkerPanicIsolated(t *testing.T) {
	job := testJob()
	applicants := makeApplicants(job.ID, 5)
	panicOn := applicants[2].ID

	pipeline := &panicOnPipeline{inner: &stubPipeline{}, target: panicOn}
	coordinator := newMemoryCoordinator()
	orch, analysisRepo := newTestOrchestrator(job, applicants, pipeline, coordinator)

	_, err := orch.Start(context.Background(), job.ID)
	require.NoError(t, err)
	orch.Wait()

	results := analysisRepo.persistedResults()
	require.Len(t, results, 5)

	var unprocessed int
	for _, res := range results {
		if res.Status == models.StatusUnprocessed {
			unprocessed++
			assert.Equal(t, panicOn, res.ApplicantID)
			require.NotNil(t, res.ErrorMessage)
			assert.Contains(t, *res.ErrorMessage, "pipeline panic")
		}
	}
	assert.Equal(t, 1, unprocessed)
}

// Exactly one of two concurrent acquisitions wins; releasing an absent
// lock is a no-op; the lock is reacquirable after release.
func TestCoordinator_LockContract(t *testing.T) {
	coordinator := newMemoryCoordinator()
	ctx := context.Background()

	var wg sync.WaitGroup
	wins := make(chan bool, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := coordinator.AcquireLock(ctx, "job-1", time.Minute)
			assert.NoError(t, err)
			wins <- ok
		}()
	}
	wg.Wait()
	close(wins)

	var winners int
	for ok := range wins {
		if ok {
			winners++
		}
	}
	assert.Equal(t, 1, winners)

	// Held lock is not reacquirable
	ok, err := coordinator.AcquireLock(ctx, "job-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// Release is idempotent, even for keys that never existed
	require.NoError(t, coordinator.ReleaseLock(ctx, "job-1"))
	require.NoError(t, coordinator.ReleaseLock(ctx, "job-1"))
	require.NoError(t, coordinator.ReleaseLock(ctx, "never-locked"))

	ok, err = coordinator.AcquireLock(ctx, "job-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "lock reacquirable after release")
}

// End-to-end through the real pipeline with a scripted model: three
// applicants, all stages succeed.
func TestRun_EndToEndWithPipeline(t *testing.T) {
	job := testJob()
	gemini := &fakeGemini{
		classification: validClassification,
		scoring:        `{"education_score": 80, "skills_score": 90, "experience_score": 100, "supplemental_score": 50}`,
		justification:  `{"overall_justification": "Great fit."}`,
	}

	coordinator := newMemoryCoordinator()
	orch, analysisRepo := newTestOrchestrator(job, makeApplicants(job.ID, 3), newTestPipeline(gemini), coordinator)

	_, err := orch.Start(context.Background(), job.ID)
	require.NoError(t, err)
	orch.Wait()

	results := analysisRepo.persistedResults()
	require.Len(t, results, 3)
	for _, res := range results {
		assert.Equal(t, models.StatusAnalyzed, res.Status)
		assert.Equal(t, models.CategoryBestMatch, res.Category)
		assert.Equal(t, 93, res.OverallScore)
		assert.Equal(t, "Great fit.", res.OverallJustification)
	}
}

// panicOnPipeline panics for one applicant and delegates otherwise.
type panicOnPipeline struct {
	inner  ApplicantPipeline
	target uuid.UUID
}

func (p *panicOnPipeline) Evaluate(ctx context.Context, applicant *models.Applicant, job *models.JobPosting) *models.AnalysisResult {
	if applicant.ID == p.target {
		panic("boom")
	}
	return p.inner.Evaluate(ctx, applicant, job)
}
