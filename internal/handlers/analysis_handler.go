package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"talentsieve/ats-analyzer/internal/models"
	"talentsieve/ats-analyzer/internal/repositories"
	"talentsieve/ats-analyzer/internal/services"
)

type AnalysisHandler struct {
	orchestrator services.AnalysisOrchestrator
	coordinator  services.Coordinator
	analysisRepo repositories.AnalysisResultRepository
}

func NewAnalysisHandler(
	orchestrator services.AnalysisOrchestrator,
	coordinator services.Coordinator,
	analysisRepo repositories.AnalysisResultRepository,
) *AnalysisHandler {
	return &AnalysisHandler{
		orchestrator: orchestrator,
		coordinator:  coordinator,
		analysisRepo: analysisRepo,
	}
}

// HandleStartAnalysis handles POST /jobs/:id/analysis. A second start
// while a run holds the lock answers 409 instead of queuing.
func (h *AnalysisHandler) HandleStartAnalysis(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job id format",
		})
	}

	resp, err := h.orchestrator.Start(c.Context(), jobID)
	if err != nil {
		if errors.Is(err, services.ErrAnalysisAlreadyRunning) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "ANALYSIS_ALREADY_RUNNING",
			})
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Job posting not found",
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(resp)
}

// HandleGetProgress handles GET /jobs/:id/analysis/progress
func (h *AnalysisHandler) HandleGetProgress(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job id format",
		})
	}

	progress, err := h.coordinator.GetProgress(c.Context(), jobID.String())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read analysis progress",
		})
	}

	if progress == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No analysis progress recorded for this job",
		})
	}

	return c.JSON(models.AnalysisProgressResponse{
		JobPostingID: jobID.String(),
		Processed:    progress.Processed,
		Total:        progress.Total,
	})
}

// HandleCancelAnalysis handles DELETE /jobs/:id/analysis. Fire-and-forget:
// the caller polls progress to observe convergence.
func (h *AnalysisHandler) HandleCancelAnalysis(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job id format",
		})
	}

	if err := h.orchestrator.Cancel(c.Context(), jobID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to request cancellation",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"job_posting_id": jobID.String(),
		"status":         "cancellation_requested",
	})
}

// HandleGetResults handles GET /jobs/:id/analysis/results
func (h *AnalysisHandler) HandleGetResults(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job id format",
		})
	}

	results, err := h.analysisRepo.FindByJobPostingID(jobID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load analysis results",
		})
	}

	return c.JSON(fiber.Map{
		"results": results,
		"count":   len(results),
	})
}
