package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"dbassist/ai"
	"dbassist/cache"
	"dbassist/config"
	"dbassist/db"
	_ "dbassist/docs" // Swagger docs
	"dbassist/handlers"
	"dbassist/service"
)

func main() {
	cfg := config.GetConfig()

	// Mirror logs to a file so model/SQL round-trips can be audited later
	if logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err != nil {
		log.Printf("Warning: failed to open log file %s: %v", cfg.LogFile, err)
	} else {
		defer logFile.Close()
		log.SetOutput(io.MultiWriter(os.Stdout, logFile))
	}

	// Initialize database
	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize cache
	appCache := cache.New()

	// Initialize DashScope AI client
	aiService, err := ai.New(cfg.APIKey, cfg.ModelName)
	if err != nil {
		log.Fatalf("Failed to initialize AI client: %v", err)
	}

	// Static context files back up live schema discovery
	contexts := service.NewContextProvider(cfg.ContextDir, appCache)

	// Connect to SQL Server. Discovery failures fall back to static context;
	// the server still starts either way.
	sqlServer := service.NewSQLServer(cfg.DBConnectionString)
	if err := sqlServer.Start(context.Background(), cfg.DefaultDatabase, contexts.StaticContext); err != nil {
		log.Printf("Warning: failed to connect to SQL Server: %v", err)
		log.Println("Database chat will report errors until the connection recovers")
	}
	defer sqlServer.Close()

	// In-memory conversation sessions, evicted after cfg.SessionTTL idle
	sessions := service.NewSessionStore(func(instruction string, temperature float64) service.Conversation {
		return aiService.NewChat(instruction, temperature)
	}, cfg.SessionTTL)
	defer sessions.Stop()

	orchestrator := service.NewOrchestrator(sessions, sqlServer)

	files, err := service.NewFileService(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}

	// Initialize handlers
	h := handlers.New(&cfg, database, orchestrator, files, contexts)

	// Setup Gin router
	r := gin.Default()

	// CORS - allow all origins, the frontend runs on a separate host
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "Cache-Control", "X-Requested-With"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS", "HEAD"}
	r.Use(cors.New(corsConfig))

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Routes
	r.GET("/", h.RootHandler)
	r.GET("/health", h.HealthHandler)

	r.POST("/db/chat", h.DBChatHandler)
	r.POST("/db/clear", h.DBClearHandler)
	r.GET("/db/status", h.DBStatusHandler)
	r.POST("/db/switch-database", h.DBSwitchHandler)
	r.GET("/db/current-database", h.DBCurrentHandler)
	r.GET("/db/history/:session_id", h.DBHistoryHandler)

	r.POST("/files/upload", h.FileUploadHandler)
	r.POST("/files/chat", h.FileChatHandler)
	r.POST("/files/clear", h.FileClearHandler)
	r.GET("/files/uploads", h.FileUploadsHandler)

	r.GET("/debug/schema", h.DebugSchemaHandler)
	r.GET("/debug/sessions", h.DebugSessionsHandler)
	r.POST("/debug/refresh-context", h.DebugRefreshContextHandler)

	log.Printf("Server starting on port %s (database: %s)", cfg.Port, orchestrator.CurrentDatabase())
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
