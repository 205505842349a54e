package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"talentsieve/ats-analyzer/internal/models"
	"talentsieve/ats-analyzer/internal/repositories"
	"talentsieve/ats-analyzer/internal/services"
)

type JobHandler struct {
	jobRepo       repositories.JobPostingRepository
	geminiService services.GeminiService
	qdrantService services.QdrantService
}

func NewJobHandler(
	jobRepo repositories.JobPostingRepository,
	geminiService services.GeminiService,
	qdrantService services.QdrantService,
) *JobHandler {
	return &JobHandler{
		jobRepo:       jobRepo,
		geminiService: geminiService,
		qdrantService: qdrantService,
	}
}

// HandleCreateJob handles POST /jobs
func (h *JobHandler) HandleCreateJob(c *fiber.Ctx) error {
	var req models.CreateJobRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "title is required",
		})
	}

	job := &models.JobPosting{
		ID:                 uuid.New(),
		Title:              req.Title,
		Description:        req.Description,
		RequiredSkills:     req.RequiredSkills,
		RequiredExperience: req.RequiredExperience,
		Level:              req.Level,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}

	if err := h.jobRepo.Create(job); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create job posting",
		})
	}

	// Index requirement text for scoring-stage retrieval. Best-effort: a
	// missing vector store never blocks job creation.
	h.indexJobContext(c, job)

	return c.Status(fiber.StatusCreated).JSON(job)
}

// HandleGetJob handles GET /jobs/:id
func (h *JobHandler) HandleGetJob(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job id format",
		})
	}

	job, err := h.jobRepo.FindByID(jobID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Job posting not found",
		})
	}

	return c.JSON(job)
}

func (h *JobHandler) indexJobContext(c *fiber.Ctx, job *models.JobPosting) {
	if h.qdrantService == nil {
		return
	}

	text := job.RequirementText()
	embedding, err := h.geminiService.GenerateEmbedding(c.Context(), text)
	if err != nil {
		log.Printf("⚠️  Failed to embed job requirements for %s: %v\n", job.ID, err)
		return
	}

	docID := fmt.Sprintf("job_%s", job.ID)
	if err := h.qdrantService.UpsertContext(c.Context(), docID, "job_requirements", text, embedding); err != nil {
		log.Printf("⚠️  Failed to index job requirements for %s: %v\n", job.ID, err)
	}
}
