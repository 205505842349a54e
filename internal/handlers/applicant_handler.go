package handlers

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"talentsieve/ats-analyzer/internal/models"
	"talentsieve/ats-analyzer/internal/repositories"
	"talentsieve/ats-analyzer/internal/services"
)

type ApplicantHandler struct {
	applicantRepo  repositories.ApplicantRepository
	jobRepo        repositories.JobPostingRepository
	storageService services.StorageService
	resumeParser   services.ResumeParserService
	maxFileSize    int64
}

func NewApplicantHandler(
	applicantRepo repositories.ApplicantRepository,
	jobRepo repositories.JobPostingRepository,
	storageService services.StorageService,
	resumeParser services.ResumeParserService,
	maxFileSize int64,
) *ApplicantHandler {
	return &ApplicantHandler{
		applicantRepo:  applicantRepo,
		jobRepo:        jobRepo,
		storageService: storageService,
		resumeParser:   resumeParser,
		maxFileSize:    maxFileSize,
	}
}

// HandleUploadApplicant handles POST /jobs/:id/applicants. Expects a
// multipart form with name, email and a "resume" PDF. The resume text is
// extracted at upload time so the analysis pipeline reads it straight from
// the applicant record.
func (h *ApplicantHandler) HandleUploadApplicant(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job id format",
		})
	}

	if _, err := h.jobRepo.FindByID(jobID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Job posting not found",
		})
	}

	name := strings.TrimSpace(c.FormValue("name"))
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	if name == "" || email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name and email are required",
		})
	}

	exists, err := h.applicantRepo.ExistsByJobAndEmail(jobID, email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to check existing applicants",
		})
	}
	if exists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "An application with this email already exists for this job",
		})
	}

	resumeFile, err := c.FormFile("resume")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume file is required",
		})
	}

	if resumeFile.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Resume file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	filename, filePath, err := h.storageService.SaveResume(resumeFile)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to save resume file: %v", err),
		})
	}

	// Extraction failure is not fatal at upload time; the pipeline marks
	// text-less applicants Unprocessed during analysis.
	resumeText, err := h.resumeParser.ExtractText(filePath)
	if err != nil {
		log.Printf("⚠️  Failed to extract resume text for %s: %v\n", email, err)
		resumeText = ""
	}

	applicant := &models.Applicant{
		ID:             uuid.New(),
		JobPostingID:   jobID,
		Name:           name,
		Email:          email,
		ResumeFilename: filename,
		ResumeFilePath: filePath,
		ResumeText:     resumeText,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := h.applicantRepo.Create(applicant); err != nil {
		// Cleanup uploaded file if database insert fails
		h.storageService.DeleteFile(filename)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save applicant record",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.ApplicantResponse{
		ID:             applicant.ID.String(),
		JobPostingID:   jobID.String(),
		Name:           applicant.Name,
		Email:          applicant.Email,
		ResumeFilename: applicant.ResumeFilename,
	})
}

// HandleListApplicants handles GET /jobs/:id/applicants
func (h *ApplicantHandler) HandleListApplicants(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job id format",
		})
	}

	applicants, err := h.applicantRepo.FindByJobPostingID(jobID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list applicants",
		})
	}

	responses := make([]models.ApplicantResponse, 0, len(applicants))
	for _, a := range applicants {
		responses = append(responses, models.ApplicantResponse{
			ID:             a.ID.String(),
			JobPostingID:   a.JobPostingID.String(),
			Name:           a.Name,
			Email:          a.Email,
			ResumeFilename: a.ResumeFilename,
		})
	}

	return c.JSON(fiber.Map{
		"applicants": responses,
		"count":      len(responses),
	})
}
