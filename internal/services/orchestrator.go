package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"talentsieve/ats-analyzer/internal/config"
	"talentsieve/ats-analyzer/internal/models"
	"talentsieve/ats-analyzer/internal/repositories"
)

// ErrAnalysisAlreadyRunning is returned when the per-job lock is held by
// another run. Callers surface it as a conflict, not a failure.
var ErrAnalysisAlreadyRunning = errors.New("analysis already running for this job")

// AnalysisOrchestrator drives the per-applicant pipeline over a job's full
// applicant set: bounded concurrent batches, cooperative cancellation at
// batch boundaries, one bulk persist at the end.
type AnalysisOrchestrator interface {
	// Start acquires the per-job lock and launches the batch loop in the
	// background. Returns ErrAnalysisAlreadyRunning when the lock is held.
	Start(ctx context.Context, jobID uuid.UUID) (*models.StartAnalysisResponse, error)
	// Cancel sets the cooperative cancellation flag. The run converges at
	// its next batch boundary; completed results are kept.
	Cancel(ctx context.Context, jobID uuid.UUID) error
	// Wait blocks until all in-flight runs finish. Used during shutdown.
	Wait()
}

type analysisOrchestrator struct {
	jobRepo       repositories.JobPostingRepository
	applicantRepo repositories.ApplicantRepository
	analysisRepo  repositories.AnalysisResultRepository
	pipeline      ApplicantPipeline
	coordinator   Coordinator
	cfg           config.AnalysisConfig
	wg            sync.WaitGroup
}

func NewAnalysisOrchestrator(
	jobRepo repositories.JobPostingRepository,
	applicantRepo repositories.ApplicantRepository,
	analysisRepo repositories.AnalysisResultRepository,
	pipeline ApplicantPipeline,
	coordinator Coordinator,
	cfg config.AnalysisConfig,
) AnalysisOrchestrator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 32
	}

	return &analysisOrchestrator{
		jobRepo:       jobRepo,
		applicantRepo: applicantRepo,
		analysisRepo:  analysisRepo,
		pipeline:      pipeline,
		coordinator:   coordinator,
		cfg:           cfg,
	}
}

// Start implements AnalysisOrchestrator. The lock is taken synchronously
// so the caller can report "already running" before any work happens.
func (o *analysisOrchestrator) Start(ctx context.Context, jobID uuid.UUID) (*models.StartAnalysisResponse, error) {
	job, err := o.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, err
	}

	acquired, err := o.coordinator.AcquireLock(ctx, jobID.String(), o.cfg.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("coordination store unavailable: %w", err)
	}
	if !acquired {
		return nil, ErrAnalysisAlreadyRunning
	}

	applicants, err := o.applicantRepo.FindByJobPostingID(jobID)
	if err != nil {
		if relErr := o.coordinator.ReleaseLock(ctx, jobID.String()); relErr != nil {
			log.Printf("⚠️  Failed to release lock after load error: %v\n", relErr)
		}
		return nil, err
	}

	log.Printf("🚀 Starting analysis for job %s with %d applicants\n", jobID, len(applicants))

	// The run outlives the HTTP request that triggered it.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.run(context.Background(), job, applicants)
	}()

	return &models.StartAnalysisResponse{
		JobPostingID: jobID.String(),
		Status:       "started",
		Total:        len(applicants),
	}, nil
}

// Cancel implements AnalysisOrchestrator.
func (o *analysisOrchestrator) Cancel(ctx context.Context, jobID uuid.UUID) error {
	return o.coordinator.RequestCancellation(ctx, jobID.String(), o.cfg.CancelTTL)
}

// Wait implements AnalysisOrchestrator.
func (o *analysisOrchestrator) Wait() {
	o.wg.Wait()
}

func (o *analysisOrchestrator) run(ctx context.Context, job *models.JobPosting, applicants []models.Applicant) {
	jobID := job.ID.String()

	// The lock is released on every exit path; a crash leaves it to expire
	// via its TTL.
	defer func() {
		if err := o.coordinator.ReleaseLock(ctx, jobID); err != nil {
			log.Printf("⚠️  Failed to release analysis lock for job %s: %v\n", jobID, err)
		}
	}()

	total := len(applicants)
	if err := o.coordinator.UpdateProgress(ctx, jobID, 0, total); err != nil {
		log.Printf("⚠️  Failed to update progress for job %s: %v\n", jobID, err)
	}

	if total == 0 {
		log.Printf("✅ Analysis for job %s finished: no applicants to process\n", jobID)
		return
	}

	results := make([]*models.AnalysisResult, 0, total)
	processed := 0

	for index := 0; index < total; {
		// Cancellation is polled only at batch boundaries; an in-flight
		// batch always runs to completion.
		cancelled, err := o.coordinator.IsCancellationRequested(ctx, jobID)
		if err != nil {
			log.Printf("⚠️  Failed to check cancellation for job %s: %v\n", jobID, err)
		}
		if cancelled {
			log.Printf("🛑 Analysis for job %s cancelled after %d/%d applicants\n", jobID, processed, total)
			break
		}

		end := index + o.cfg.BatchSize
		if end > total {
			end = total
		}
		batch := applicants[index:end]

		results = append(results, o.processBatch(ctx, job, batch)...)
		processed += len(batch)
		index = end

		if err := o.coordinator.UpdateProgress(ctx, jobID, processed, total); err != nil {
			log.Printf("⚠️  Failed to update progress for job %s: %v\n", jobID, err)
		}

		log.Printf("📊 Analysis for job %s progressed: %d/%d\n", jobID, processed, total)
	}

	// Partial progress is never thrown away: whatever completed before a
	// cancellation is persisted.
	if len(results) > 0 {
		if err := o.analysisRepo.BulkUpsert(results); err != nil {
			log.Printf("❌ Failed to persist analysis results for job %s: %v\n", jobID, err)
			return
		}
	}

	log.Printf("✅ Analysis for job %s completed: %d results persisted\n", jobID, len(results))
}

// processBatch fans the batch out over a bounded worker group. One
// applicant's failure never aborts its siblings; a panicking worker is
// converted into an Unprocessed result.
func (o *analysisOrchestrator) processBatch(ctx context.Context, job *models.JobPosting, batch []models.Applicant) []*models.AnalysisResult {
	out := make([]*models.AnalysisResult, len(batch))

	width := 2 * len(batch)
	if width > o.cfg.MaxWorkers {
		width = o.cfg.MaxWorkers
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(width)

	for i := range batch {
		applicant := batch[i]
		slot := i

		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("❌ Pipeline panic for applicant %s: %v\n", applicant.ID, r)
					msg := truncateError(fmt.Sprintf("pipeline panic: %v", r))
					out[slot] = &models.AnalysisResult{
						ApplicantID:  applicant.ID,
						JobPostingID: job.ID,
						Category:     models.CategoryUnprocessed,
						Status:       models.StatusUnprocessed,
						ErrorMessage: &msg,
					}
				}
			}()

			out[slot] = o.pipeline.Evaluate(gCtx, &applicant, job)
			return nil
		})
	}

	// Workers never return errors; Wait is just the batch barrier.
	_ = g.Wait()

	results := make([]*models.AnalysisResult, 0, len(batch))
	for _, res := range out {
		if res != nil {
			results = append(results, res)
		}
	}

	return results
}
