package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"annotation-service/internal/cache"
	"annotation-service/internal/config"
	"annotation-service/internal/handlers"
	"annotation-service/internal/imaging"
	"annotation-service/internal/repository"
	"annotation-service/internal/services"
	"annotation-service/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the annotation API server",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Config error: %v", err)
		}
		db, err := config.ConnectDatabase(cfg)
		if err != nil {
			log.Fatalf("Database connection failed: %v", err)
		}
		if err := MigrateDatabase(db); err != nil {
			log.Fatalf("Database migration failed: %v", err)
		}

		var minioClient *minio.Client
		if cfg.ExportEnabled() {
			minioClient, err = storage.NewMinioClient(cfg)
			if err != nil {
				log.Fatalf("MinIO client initialization failed: %v", err)
			}
		}

		var cacheManager *cache.Manager
		if cfg.ImageCache {
			cacheManager, err = cache.NewManager(cfg.ImageCachePath, cfg.ImageCacheDuration,
				cfg.ImageCacheConcurrency, imaging.DefaultUpstreamTimeout)
			if err != nil {
				log.Fatalf("Cache initialization failed: %v", err)
			}
			log.Printf("Image cache enabled at %s (ttl=%s, concurrency=%d)",
				cfg.ImageCachePath, cfg.ImageCacheDuration, cfg.ImageCacheConcurrency)
		}

		resolver := &imaging.Resolver{
			Client:      imaging.NewImageClient(imaging.DefaultUpstreamTimeout),
			LocalPrefix: cfg.LocalFilePrefix,
		}

		projectRepo := repository.NewProjectRepository(db)
		labelRepo := repository.NewLabelRepository(db)
		objectRepo := repository.NewObjectRepository(db)

		projectService := services.NewProjectService(projectRepo, labelRepo, objectRepo)
		objectService := services.NewObjectService(objectRepo, resolver, cacheManager)
		lockService := services.NewLockService(objectRepo)
		importService := services.NewImportService(objectRepo, projectRepo, cfg.LocalFilePath)
		exportService := services.NewExportService(projectRepo, labelRepo, objectRepo, minioClient, cfg.MinioBucket)

		app := fiber.New(fiber.Config{
			BodyLimit: 512 * 1024 * 1024, // archive uploads
		})
		if cfg.CORSOrigins != "" {
			app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))
		}

		// Register Prometheus metrics endpoint
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

		ph := handlers.NewProjectHandler(projectService)
		oh := handlers.NewObjectHandler(objectService, lockService)
		ih := handlers.NewImageHandler(objectService)
		imh := handlers.NewImportHandler(importService)
		eh := handlers.NewExportHandler(exportService)

		api := app.Group("/api/annotation")

		api.Get("/projects", ph.ListProjects)
		api.Post("/projects", ph.CreateProject)
		api.Get("/projects/:id", ph.GetProject)
		api.Put("/projects/:id", ph.UpdateProject)
		api.Delete("/projects/:id", ph.DeleteProject)

		api.Get("/labels/of/:projectId", ph.ListLabels)
		api.Post("/labels", ph.CreateLabel)
		api.Post("/labels/import/:projectId", ph.ImportLabels)
		api.Put("/labels/:id", ph.UpdateLabel)
		api.Delete("/labels/:id", ph.DeleteLabel)

		api.Get("/objects/of/:projectId", oh.ListObjects)
		api.Get("/objects/of/:projectId/at/:offset", oh.ObjectAt)
		api.Get("/objects/random-of/:projectId", oh.RandomObject)
		api.Get("/objects/navigate/:id", oh.Navigate)
		api.Get("/objects/id/:id", oh.GetObject)
		api.Delete("/objects/id/:id", oh.DeleteObject)
		api.Get("/objects/annotations/:id", oh.GetAnnotations)
		api.Post("/objects/annotations/:id", oh.StoreAnnotations)
		api.Post("/objects/finish/:id", oh.FinishObject)
		api.Post("/objects/lock/:id", oh.Lock)
		api.Get("/objects/lock/:id", oh.LockStatus)
		api.Delete("/objects/lock/:id", oh.Unlock)

		api.Post("/images/uri/:id", ih.GetImageURI)
		api.Get("/images/cached/:token", ih.GetCachedImage)

		api.Post("/import/objects/:projectId", imh.ImportObjects)
		api.Post("/import/archive/:projectId", imh.ImportArchive)
		api.Post("/import/filesystem/:projectId", imh.ImportDirectory)

		api.Get("/export/yaml/:projectId", eh.ExportYAML)
		api.Post("/export/push/:projectId", eh.Push)

		// Serve filesystem-imported images under the local prefix
		if cfg.LocalFilePrefix != "" && cfg.LocalFilePath != "" {
			app.Static(cfg.LocalFilePrefix, cfg.LocalFilePath)
		}

		api.Get("/swagger/*", swagger.HandlerDefault)

		// Add Health check endpoint
		api.Get("/health", func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})

		port := cfg.AppPort
		if port == "" {
			port = "8080"
			log.Printf("Defaulting to port %s", port)
		}
		log.Printf("Server listening on port %s", port)
		log.Fatal(app.Listen(":" + port))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
