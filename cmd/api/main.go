package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"talentsieve/ats-analyzer/internal/config"
	"talentsieve/ats-analyzer/internal/handlers"
	"talentsieve/ats-analyzer/internal/repositories"
	"talentsieve/ats-analyzer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize redis (coordination store). The per-job analysis lock
	// lives here, so startup fails when the store is unreachable.
	redisClient, err := config.InitRedis(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize redis: %v", err)
	}

	// Initialize repositories
	jobRepo := repositories.NewJobPostingRepository(db)
	applicantRepo := repositories.NewApplicantRepository(db)
	analysisRepo := repositories.NewAnalysisResultRepository(db, cfg.Analysis.PersistChunkSize)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	resumeParser := services.NewResumeParserService()
	coordinator := services.NewRedisCoordinator(redisClient)
	log.Println("✅ Services initialized successfully")

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Initialize Qdrant
	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := qdrantService.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
	}
	log.Println("✅ Qdrant initialized successfully")

	// Initialize analysis pipeline and orchestrator
	pipeline := services.NewApplicantPipeline(
		geminiService,
		qdrantService,
		cfg.Analysis.RetryMaxAttempts,
		cfg.Analysis.LLMTimeout,
	)

	orchestrator := services.NewAnalysisOrchestrator(
		jobRepo,
		applicantRepo,
		analysisRepo,
		pipeline,
		coordinator,
		cfg.Analysis,
	)
	log.Println("✅ Analysis orchestrator initialized")

	// Initialize Handlers
	jobHandler := handlers.NewJobHandler(jobRepo, geminiService, qdrantService)
	applicantHandler := handlers.NewApplicantHandler(
		applicantRepo,
		jobRepo,
		storageService,
		resumeParser,
		cfg.Storage.MaxFileSize,
	)
	analysisHandler := handlers.NewAnalysisHandler(orchestrator, coordinator, analysisRepo)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "AI Applicant Screening API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/jobs", jobHandler.HandleCreateJob)
	api.Get("/jobs/:id", jobHandler.HandleGetJob)
	api.Post("/jobs/:id/applicants", applicantHandler.HandleUploadApplicant)
	api.Get("/jobs/:id/applicants", applicantHandler.HandleListApplicants)
	api.Post("/jobs/:id/analysis", analysisHandler.HandleStartAnalysis)
	api.Get("/jobs/:id/analysis/progress", analysisHandler.HandleGetProgress)
	api.Delete("/jobs/:id/analysis", analysisHandler.HandleCancelAnalysis)
	api.Get("/jobs/:id/analysis/results", analysisHandler.HandleGetResults)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "AI Applicant Screening API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/jobs",
				"POST /api/v1/jobs/:id/applicants",
				"POST /api/v1/jobs/:id/analysis",
				"GET /api/v1/jobs/:id/analysis/progress",
				"DELETE /api/v1/jobs/:id/analysis",
				"GET /api/v1/jobs/:id/analysis/results",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		orchestrator.Wait()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
